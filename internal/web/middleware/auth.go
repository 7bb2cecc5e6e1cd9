package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/colstats/internal/config"
	"github.com/JonMunkholm/colstats/internal/logging"
)

// APIKeyAuth guards the JSON API when cfg.RequireAPIKey is set.
// The key is read from X-API-Key or an "Authorization: Bearer" header.
// With RequireAPIKey set and no keys configured, every request is refused.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, []byte(k))
	}

	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			if key == "" {
				deny(w, r, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			}
			if !validKey([]byte(key), keys) {
				deny(w, r, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// validKey compares against every key so timing does not reveal a match.
func validKey(key []byte, keys [][]byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(key, k)
	}
	return match == 1
}

func deny(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	logging.FromContext(r.Context()).Warn("auth: request rejected",
		slog.String("reason", message),
		slog.String("path", r.URL.Path),
		slog.String("ip", r.RemoteAddr),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
