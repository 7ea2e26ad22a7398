package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"badgereader/internal/auth"
	"badgereader/internal/platform/config"
)

// AccessKey guards the reader-facing webhook. The reader sends the key
// as a query parameter or form field; a configured bcrypt hash takes
// precedence over the plain key.
func AccessKey(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Query().Get("accessKey")
			if key == "" {
				if err := r.ParseForm(); err == nil {
					key = r.PostFormValue("accessKey")
				}
			}

			if !keyValid(cfg, key) {
				slog.Warn("unauthorized swipe request", "remote", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func keyValid(cfg config.Config, key string) bool {
	if key == "" {
		return false
	}
	if cfg.AccessKeyHash != "" {
		return auth.CheckAccessKey(cfg.AccessKeyHash, key) == nil
	}
	return subtle.ConstantTimeCompare([]byte(cfg.AccessKey), []byte(key)) == 1
}

// AdminAuth requires a valid bearer token on the admin API.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			if _, err := auth.ParseToken(secret, parts[1]); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
