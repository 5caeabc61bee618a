package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/orbit/pkg/cache"
)

func newTestRedis(t *testing.T) cache.Cache {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return cache.NewRedisCacheFromClient(client)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Round trip
	if err := c.Set(ctx, "layout:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != "payload" {
		t.Errorf("Get returned %q, want %q", data, "payload")
	}
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)
	defer c.Close()

	if err := c.Set(ctx, "snapshot:1", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Delete(ctx, "snapshot:1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ := c.Get(ctx, "snapshot:1")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is fine
	if err := c.Delete(ctx, "snapshot:1"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
}
