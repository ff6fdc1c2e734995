package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/bakeryimport/internal/config"
	"github.com/JonMunkholm/bakeryimport/internal/logging"
)

// APIKeyHeader carries the key on guarded requests.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests without a configured X-API-Key.
// It passes everything through when cfg.RequireAPIKey is off.
func RequireAPIKey(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)

			status, code := 0, ""
			switch {
			case key == "":
				status, code = http.StatusUnauthorized, "AUTH001"
			case !validKey(key, cfg.APIKeys):
				status, code = http.StatusForbidden, "AUTH002"
			}
			if status != 0 {
				logging.FromContext(r.Context()).Warn("import trigger rejected",
					"path", r.URL.Path,
					"ip", r.RemoteAddr,
					"code", code,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   http.StatusText(status),
					"message": "A valid API key is required to start an import",
					"code":    code,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validKey compares against every key in constant time.
func validKey(key string, keys []string) bool {
	valid := 0
	for _, k := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
