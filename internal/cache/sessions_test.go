package cache

import (
	"context"
	"testing"

	"github.com/chaladshare/client-go/pkg/config"
)

func TestNewDisabled(t *testing.T) {
	store, err := New(&config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("disabled store should not error: %v", err)
	}
	if store != nil {
		t.Error("disabled store should be nil")
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Sessions
	ctx := context.Background()

	value, err := store.LoadSession(ctx)
	if err != nil || value != "" {
		t.Errorf("nil store LoadSession = (%q, %v), want (\"\", nil)", value, err)
	}

	if err := store.SaveSession(ctx, "tok"); err != ErrDisabled {
		t.Errorf("nil store SaveSession = %v, want ErrDisabled", err)
	}

	if err := store.ClearSession(ctx); err != ErrDisabled {
		t.Errorf("nil store ClearSession = %v, want ErrDisabled", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("nil store Close = %v, want nil", err)
	}
}

func TestNewBadURL(t *testing.T) {
	_, err := New(&config.RedisConfig{URL: "://not-a-url", Enabled: true})
	if err == nil {
		t.Error("expected error for malformed Redis URL")
	}
}
