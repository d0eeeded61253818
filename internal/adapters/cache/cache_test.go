package cache_test

import (
	"testing"
	"time"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/cache"
)

func TestGetSet(t *testing.T) {
	t.Parallel()

	c := cache.New(8, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get(k) = miss, want hit")
	}
	if got != "v" {
		t.Errorf("Get(k) = %v, want %q", got, "v")
	}
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()

	c := cache.New(8, 30*time.Millisecond)

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Get(k) = miss immediately after Set, want hit")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get(k) = hit after TTL, want expired miss")
	}
}

func TestSizeBound(t *testing.T) {
	t.Parallel()

	c := cache.New(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// The least recently used entry was evicted to stay within the bound.
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) = hit, want eviction once capacity is exceeded")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("Get(c) = miss, want the newest entry retained")
	}
}

func TestOverwrite(t *testing.T) {
	t.Parallel()

	c := cache.New(8, time.Minute)

	c.Set("k", "old")
	c.Set("k", "new")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get(k) = miss, want hit")
	}
	if got != "new" {
		t.Errorf("Get(k) = %v, want %q", got, "new")
	}
}
