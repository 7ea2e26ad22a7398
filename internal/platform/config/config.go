package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile     = "file"
	BackendSheet    = "sheet"
	BackendPostgres = "postgres"
)

type Config struct {
	Addr               string
	RosterFile         string
	AccessKey          string
	AccessKeyHash      string
	JWTSecret          string
	ShareDir           string
	StorageBackend     string
	SwipeLogFile       string
	SwipeLogSheet      string
	DatabaseURL        string
	DebounceWindow     time.Duration
	SwipeBuffer        time.Duration
	TargetShiftMinutes int
	ReportDir          string
	ReportInterval     time.Duration
	DataEncryptionKey  string
	EmailEnabled       bool
	EmailFrom          string
	NotificationEmails []string
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	SMTPUseTLS         bool
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8199"),
		RosterFile:         getEnv("ROSTER_FILE", "config/roster.json"),
		AccessKey:          getEnv("ACCESS_KEY", ""),
		AccessKeyHash:      getEnv("ACCESS_KEY_HASH", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		ShareDir:           getEnv("SHARE_DIR", "/share/badge-reader-mount"),
		StorageBackend:     getEnv("STORAGE_BACKEND", BackendFile),
		SwipeLogFile:       getEnv("SWIPE_LOG_FILE", "swipe_log.jsonl"),
		SwipeLogSheet:      getEnv("SWIPE_LOG_SHEET", "swipe_log.xlsx"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DebounceWindow:     getEnvDuration("SWIPE_DEBOUNCE", time.Minute),
		SwipeBuffer:        getEnvDuration("SWIPE_TIME_BUFFER", 3*time.Minute),
		TargetShiftMinutes: getEnvInt("TARGET_SHIFT_MINUTES", 300),
		ReportDir:          getEnv("REPORT_DIR", "storage/reports"),
		ReportInterval:     getEnvDuration("REPORT_INTERVAL", 24*time.Hour),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		EmailEnabled:       getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:          getEnv("EMAIL_FROM", "no-reply@example.com"),
		NotificationEmails: getEnvList("NOTIFICATION_EMAILS"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:         getEnvBool("SMTP_USE_TLS", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.RosterFile) == "" {
		return fmt.Errorf("ROSTER_FILE is required")
	}
	if c.AccessKey == "" && c.AccessKeyHash == "" {
		return fmt.Errorf("ACCESS_KEY or ACCESS_KEY_HASH is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.StorageBackend {
	case BackendFile, BackendSheet:
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("SWIPE_DEBOUNCE must be positive")
	}
	if c.SwipeBuffer < 0 {
		return fmt.Errorf("SWIPE_TIME_BUFFER must not be negative")
	}
	if c.TargetShiftMinutes <= 0 {
		return fmt.Errorf("TARGET_SHIFT_MINUTES must be positive")
	}
	if c.EmailEnabled && strings.TrimSpace(c.SMTPHost) == "" {
		return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is set")
	}
	return nil
}
