package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("text", "graph algorithms")
		k2 := CacheKey("text", "graph algorithms")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("text", "graph algorithms")
		k2 := CacheKey("video", "graph algorithms")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:4] != "edu:" {
			t.Errorf("expected edu: prefix, got %q", k[:4])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	_, ok := CacheGet(ctx, key)
	if ok {
		t.Error("expected cache miss on empty cache")
	}

	val := SearchOutput{
		Query: "graph algorithms",
		Mode:  ModeText,
		Count: 1,
		Results: []EnrichedResult{
			{Title: "Graphs 101", Link: "https://example.com/graphs", Source: SourceSerper},
		},
	}
	CacheSet(ctx, key, val)

	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got.Count != 1 || len(got.Results) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.Results[0].Link != "https://example.com/graphs" {
		t.Errorf("link = %q", got.Results[0].Link)
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", 1*time.Millisecond, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSet(ctx, key, SearchOutput{Query: "temp"})
	time.Sleep(5 * time.Millisecond)

	_, ok := CacheGet(ctx, key)
	if ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", 1*time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := CacheKey("evict", fmt.Sprintf("item-%d", i))
		CacheSet(ctx, key, SearchOutput{Query: fmt.Sprintf("q%d", i)})
	}

	count := 0
	searchCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	_, misses := CacheStats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSet(ctx, key, SearchOutput{Query: "x"})
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
