package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:               ":8199",
		RosterFile:         "config/roster.json",
		AccessKey:          "reader-secret",
		JWTSecret:          "admin-secret",
		StorageBackend:     BackendFile,
		DebounceWindow:     time.Minute,
		SwipeBuffer:        3 * time.Minute,
		TargetShiftMinutes: 300,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8199" {
		t.Fatalf("Addr: got %q", cfg.Addr)
	}
	if cfg.StorageBackend != BackendFile {
		t.Fatalf("StorageBackend: got %q", cfg.StorageBackend)
	}
	if cfg.DebounceWindow != time.Minute {
		t.Fatalf("DebounceWindow: got %v", cfg.DebounceWindow)
	}
	if cfg.SwipeBuffer != 3*time.Minute {
		t.Fatalf("SwipeBuffer: got %v", cfg.SwipeBuffer)
	}
	if cfg.TargetShiftMinutes != 300 {
		t.Fatalf("TargetShiftMinutes: got %d", cfg.TargetShiftMinutes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sheet")
	t.Setenv("SWIPE_DEBOUNCE", "30s")
	t.Setenv("TARGET_SHIFT_MINUTES", "480")
	t.Setenv("NOTIFICATION_EMAILS", "a@example.com, b@example.com,")

	cfg := Load()
	if cfg.StorageBackend != BackendSheet {
		t.Fatalf("StorageBackend: got %q", cfg.StorageBackend)
	}
	if cfg.DebounceWindow != 30*time.Second {
		t.Fatalf("DebounceWindow: got %v", cfg.DebounceWindow)
	}
	if cfg.TargetShiftMinutes != 480 {
		t.Fatalf("TargetShiftMinutes: got %d", cfg.TargetShiftMinutes)
	}
	if len(cfg.NotificationEmails) != 2 || cfg.NotificationEmails[1] != "b@example.com" {
		t.Fatalf("NotificationEmails: got %v", cfg.NotificationEmails)
	}
}

func TestLoadIgnoresBadValues(t *testing.T) {
	t.Setenv("SWIPE_DEBOUNCE", "soon")
	t.Setenv("TARGET_SHIFT_MINUTES", "lots")

	cfg := Load()
	if cfg.DebounceWindow != time.Minute {
		t.Fatalf("DebounceWindow fallback: got %v", cfg.DebounceWindow)
	}
	if cfg.TargetShiftMinutes != 300 {
		t.Fatalf("TargetShiftMinutes fallback: got %d", cfg.TargetShiftMinutes)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.AccessKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing access key accepted")
	}
	cfg.AccessKeyHash = "$2a$10$hash"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("hash-only credential rejected: %v", err)
	}

	cfg = validConfig()
	cfg.StorageBackend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend accepted")
	}

	cfg = validConfig()
	cfg.StorageBackend = BackendPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatal("postgres backend without DATABASE_URL accepted")
	}
	cfg.DatabaseURL = "postgres://localhost/badges"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("postgres backend with DATABASE_URL rejected: %v", err)
	}

	cfg = validConfig()
	cfg.TargetShiftMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero target accepted")
	}

	cfg = validConfig()
	cfg.EmailEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("email without SMTP host accepted")
	}
	cfg.SMTPHost = "smtp.example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("email with SMTP host rejected: %v", err)
	}
}

// An empty JWT secret would let anyone mint a valid admin token, so
// startup must refuse it before the admin API is ever mounted.
func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty JWT secret accepted")
	}
	cfg.JWTSecret = "   "
	if err := cfg.Validate(); err == nil {
		t.Fatal("blank JWT secret accepted")
	}
}
