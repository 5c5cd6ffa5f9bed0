package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("Expected empty request id, got %q", got)
	}
	if got := GetAccessToken(ctx); got != "" {
		t.Errorf("Expected empty access token, got %q", got)
	}
	if got := GetDuration(ctx); got != 0 {
		t.Errorf("Expected zero duration, got %v", got)
	}
}

func TestSessionAndToken(t *testing.T) {
	ctx := WithSessionID(context.Background(), "s-1")
	ctx = WithAccessToken(ctx, "Bearer abc")

	if got := GetSessionID(ctx); got != "s-1" {
		t.Errorf("Expected s-1, got %q", got)
	}
	if got := GetAccessToken(ctx); got != "Bearer abc" {
		t.Errorf("Expected token, got %q", got)
	}
}

func TestNewContextWithRequest(t *testing.T) {
	start := time.Now().Add(-time.Second)
	base := WithValue(context.Background(), StartTimeKey, start)

	ctx := NewContextWithRequest(base, "catalog", "ListProducts")
	if GetModule(ctx) != "catalog" || GetFunction(ctx) != "ListProducts" {
		t.Errorf("Expected module and function to be set, got %q/%q", GetModule(ctx), GetFunction(ctx))
	}
	if !GetStartTime(ctx).Equal(start) {
		t.Errorf("Expected existing start time to be kept")
	}
	if GetDuration(ctx) < time.Second {
		t.Errorf("Expected duration of at least 1s, got %v", GetDuration(ctx))
	}

	fresh := NewContextWithRequest(nil, "auth", "Login") //nolint:staticcheck
	if GetStartTime(fresh).IsZero() {
		t.Errorf("Expected start time to be stamped")
	}
}
