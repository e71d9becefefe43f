// internal/identity/cache_test.go
package identity

import (
	"fmt"
	"testing"
	"time"
)

func TestSessionCacheGetPut(t *testing.T) {
	cache := newSessionCache(10*time.Minute, 16)

	if _, ok := cache.get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	ident := &Identity{Subject: "user-1"}
	cache.put("k1", ident)

	got, ok := cache.get("k1")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Subject != "user-1" {
		t.Errorf("got subject %q, want %q", got.Subject, "user-1")
	}
}

func TestSessionCacheTTLExpiry(t *testing.T) {
	cache := newSessionCache(10*time.Minute, 16)

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.put("k1", &Identity{Subject: "user-1"})

	// Just inside the freshness window
	current = current.Add(10 * time.Minute)
	if _, ok := cache.get("k1"); !ok {
		t.Fatal("entry expired before TTL elapsed")
	}

	// Past the window the entry is treated as absent and evicted
	current = current.Add(time.Second)
	if _, ok := cache.get("k1"); ok {
		t.Fatal("expected stale entry to miss")
	}
	if cache.len() != 0 {
		t.Errorf("stale entry not evicted, len = %d", cache.len())
	}
}

func TestSessionCacheOverwriteRefreshesTTL(t *testing.T) {
	cache := newSessionCache(10*time.Minute, 16)

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.put("k1", &Identity{Subject: "user-1"})

	current = current.Add(9 * time.Minute)
	cache.put("k1", &Identity{Subject: "user-1b"})

	// 9 + 5 minutes after the first put, but only 5 after the refresh
	current = current.Add(5 * time.Minute)
	got, ok := cache.get("k1")
	if !ok {
		t.Fatal("refreshed entry expired too early")
	}
	if got.Subject != "user-1b" {
		t.Errorf("got subject %q, want refreshed value", got.Subject)
	}
	if cache.len() != 1 {
		t.Errorf("overwrite grew the cache, len = %d", cache.len())
	}
}

func TestSessionCacheCapacityEviction(t *testing.T) {
	cache := newSessionCache(10*time.Minute, 3)

	for i := 0; i < 3; i++ {
		cache.put(fmt.Sprintf("k%d", i), &Identity{Subject: fmt.Sprintf("user-%d", i)})
	}

	// Touch k0 so k1 becomes the least recently used
	if _, ok := cache.get("k0"); !ok {
		t.Fatal("expected hit for k0")
	}

	cache.put("k3", &Identity{Subject: "user-3"})

	if cache.len() != 3 {
		t.Fatalf("cache exceeded capacity, len = %d", cache.len())
	}
	if _, ok := cache.get("k1"); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := cache.get(key); !ok {
			t.Errorf("expected %s to survive eviction", key)
		}
	}
}

func TestSessionCacheInvalidate(t *testing.T) {
	cache := newSessionCache(10*time.Minute, 16)

	cache.put("k1", &Identity{Subject: "user-1"})
	cache.invalidate("k1")

	if _, ok := cache.get("k1"); ok {
		t.Fatal("expected miss after invalidate")
	}

	// Invalidating an absent key is a no-op
	cache.invalidate("k1")
}
