package core

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetClientKey(ctx) != "" {
		t.Fatal("expected empty values on a bare context")
	}

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientKey(ctx, "203.0.113.7")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-1")
	}
	if got := GetClientKey(ctx); got != "203.0.113.7" {
		t.Errorf("GetClientKey() = %q, want %q", got, "203.0.113.7")
	}
}
