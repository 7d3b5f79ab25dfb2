package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	srv := newTestServer(t, okProvider("x"), nil)

	t.Run("generates request ID when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-ID")
		if got == "" {
			t.Fatal("expected X-Request-ID in response header, got empty")
		}
		// Validate UUID format (8-4-4-4-12 hex digits)
		if len(got) != 36 {
			t.Errorf("expected UUID (36 chars), got %q (%d chars)", got, len(got))
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "my-custom-id")
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if respID := rec.Header().Get("X-Request-ID"); respID != "my-custom-id" {
			t.Errorf("expected response header X-Request-ID to be %q, got %q", "my-custom-id", respID)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		requestPath    string
		expectedStatus int
	}{
		{
			name:           "metrics disabled",
			config:         &Config{MetricsEnabled: false},
			requestPath:    "/metrics",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "metrics enabled on default path",
			config:         &Config{MetricsEnabled: true},
			requestPath:    "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics enabled on custom path",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "/internal/metrics"},
			requestPath:    "/internal/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "custom path is normalized",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "stats/../prom"},
			requestPath:    "/prom",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, okProvider("x"), tt.config)

			req := httptest.NewRequest(http.MethodGet, tt.requestPath, nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, okProvider("x"), &Config{BodySizeLimit: "1K"})

	big := `{"message": "` + strings.Repeat("a", 4096) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestBodyLimit_Chunked(t *testing.T) {
	for _, path := range []string{"/api/chat", "/api/chat/fallback"} {
		t.Run(path, func(t *testing.T) {
			provider := okProvider("x")
			srv := newTestServer(t, provider, &Config{BodySizeLimit: "1K"})

			big := `{"message": "` + strings.Repeat("a", 4096) + `"}`
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(big))
			req.Header.Set("Content-Type", "application/json")
			// unknown length: the limit is enforced while reading
			req.ContentLength = -1
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("expected 413, got %d: %s", rec.Code, rec.Body.String())
			}
			if provider.calls != 0 {
				t.Errorf("expected no upstream calls, got %d", provider.calls)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, okProvider("x"), &Config{CORSAllowedOrigins: []string{"https://sreeshanth.dev"}})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://sreeshanth.dev")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://sreeshanth.dev" {
			t.Errorf("expected allowed origin header, got %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow-origin header, got %q", got)
		}
	})
}

func TestRequestLogIncludesClient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	srv := New(newChatService(t, okProvider("x")), nil, &Config{Logger: logger})

	postJSON(srv, "/api/chat", `{"message": "hi"}`, map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"})
	if !strings.Contains(buf.String(), "client=198.51.100.4") {
		t.Errorf("expected client in request log, got %q", buf.String())
	}

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.ServeHTTP(httptest.NewRecorder(), req)
	if strings.Contains(buf.String(), "client=") {
		t.Errorf("expected no client on unkeyed routes, got %q", buf.String())
	}
}
