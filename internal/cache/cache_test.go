// Rupiya Pulse - Product Analytics and Performance Alerting
// Copyright 2026 Rupiya
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rupiya-app/pulse

package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("analytics:distribution", map[string]int{"page_view": 3})
	value, exists := c.Get("analytics:distribution")
	if !exists {
		t.Fatal("expected key to exist")
	}
	dist, ok := value.(map[string]int)
	if !ok || dist["page_view"] != 3 {
		t.Errorf("cached value = %v", value)
	}

	if _, exists := c.Get("missing"); exists {
		t.Error("expected missing key to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("key", "value")
	if _, exists := c.Get("key"); !exists {
		t.Error("expected key to exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key"); exists {
		t.Error("expected key to be expired")
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := New(1 * time.Minute)

	c.SetWithTTL("short", "value", 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("short"); exists {
		t.Error("expected custom-TTL entry to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key", "value")
	c.Delete("key")

	if _, exists := c.Get("key"); exists {
		t.Error("expected key to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	c.Clear()

	for _, key := range []string{"key1", "key2"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("expected %s to be cleared", key)
		}
	}
	if stats := c.GetStats(); stats.TotalKeys != 0 {
		t.Errorf("TotalKeys after clear = %d, want 0", stats.TotalKeys)
	}
}

func TestCacheStats(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key", "value")
	c.Get("key")    // hit
	c.Get("other")  // miss
	c.Get("key")    // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.TotalKeys != 1 {
		t.Errorf("TotalKeys = %d, want 1", stats.TotalKeys)
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New(1 * time.Minute)

	// No lookups yet.
	if rate := c.HitRate(); rate != 0 {
		t.Errorf("HitRate = %v, want 0 before any lookups", rate)
	}

	c.Set("key", "value")
	c.Get("key")
	c.Get("missing")

	if rate := c.HitRate(); rate != 50 {
		t.Errorf("HitRate = %v, want 50", rate)
	}
}

func TestGenerateKeyStable(t *testing.T) {
	params := map[string]interface{}{"limit": 10}

	key1 := GenerateKey("analytics:top-users", params)
	key2 := GenerateKey("analytics:top-users", params)
	if key1 != key2 {
		t.Errorf("keys differ for identical params: %q vs %q", key1, key2)
	}

	other := GenerateKey("analytics:top-users", map[string]interface{}{"limit": 20})
	if key1 == other {
		t.Error("keys collide for different params")
	}
}

func TestGenerateKeyHasMethodPrefix(t *testing.T) {
	key := GenerateKey("analytics:journey", "user-1")
	if key[:len("analytics:journey:")] != "analytics:journey:" {
		t.Errorf("key = %q, want analytics:journey: prefix", key)
	}
}
