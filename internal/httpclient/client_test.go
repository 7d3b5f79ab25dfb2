package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	// timeouts come from the caller's config, never the environment
	t.Setenv("UPSTREAM_TIMEOUT", "45")

	cfg := DefaultConfig()
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", cfg.Timeout)
	}
	if cfg.ResponseHeaderTimeout != 120*time.Second {
		t.Errorf("ResponseHeaderTimeout = %v, want 120s", cfg.ResponseHeaderTimeout)
	}
}

func TestNewHTTPClient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 45 * time.Second
	cfg.ResponseHeaderTimeout = 20 * time.Second

	client := NewHTTPClient(&cfg)
	if client.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.ResponseHeaderTimeout != 20*time.Second {
		t.Errorf("ResponseHeaderTimeout = %v, want 20s", transport.ResponseHeaderTimeout)
	}
	if transport.MaxIdleConnsPerHost != 20 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 20", transport.MaxIdleConnsPerHost)
	}
}

func TestNewHTTPClient_NilUsesDefaults(t *testing.T) {
	client := NewHTTPClient(nil)
	if client.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", client.Timeout)
	}
}
