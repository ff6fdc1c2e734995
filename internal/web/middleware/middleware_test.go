package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/bakeryimport/internal/config"
)

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		header  map[string]string
		want    string
	}{
		{"port stripped", nil, "203.0.113.5:51234", nil, "203.0.113.5"},
		{"untrusted header ignored", nil, "203.0.113.5:51234", map[string]string{"X-Real-IP": "10.1.1.1"}, "203.0.113.5"},
		{"trusted proxy real ip", []string{"10.0.0.0/8"}, "10.0.0.2:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted single host", []string{"127.0.0.1"}, "127.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "198.51.100.7"},
		{"invalid forwarded value", []string{"10.0.0.0/8"}, "10.0.0.2:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.0.0.2"},
		{"ipv6", nil, "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"invalid cidr skipped", []string{"bogus"}, "10.0.0.2:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAPIKey_Disabled(t *testing.T) {
	called := false
	h := RequireAPIKey(config.SecurityConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/import", nil))

	if !called {
		t.Error("handler not called with auth disabled")
	}
}

func TestRequireAPIKey_Codes(t *testing.T) {
	h := RequireAPIKey(config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"a", "b"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		key      string
		want     int
		wantCode string
	}{
		{"", http.StatusUnauthorized, "AUTH001"},
		{"c", http.StatusForbidden, "AUTH002"},
		{"b", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
		if tt.key != "" {
			req.Header.Set(APIKeyHeader, tt.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("key %q: status = %d, want %d", tt.key, rec.Code, tt.want)
		}
		if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
			t.Errorf("key %q: body %s missing %s", tt.key, rec.Body, tt.wantCode)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK) // ignored
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/import/x/events", nil))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status=500", "path=/api/import/x/events", "stream=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestResponseWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	if err := http.NewResponseController(ww).Flush(); err != nil {
		t.Errorf("Flush through wrapper: %v", err)
	}
	if !rec.Flushed {
		t.Error("underlying recorder not flushed")
	}
}
