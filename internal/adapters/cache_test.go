package adapters

import (
	"testing"
	"time"
)

func testQuote(ticker, source string) Quote {
	return Quote{
		Ticker:      ticker,
		DisplayName: ticker,
		Price:       123.45,
		ChangePct:   1.2,
		Volume:      "1.0M",
		Source:      source,
		ResolvedAt:  time.Now(),
	}
}

func TestQuoteCacheHitWithinTTL(t *testing.T) {
	cache := NewQuoteCache()
	q := testQuote("AAPL", SourceSimulated)

	cache.Put(CacheKey(CachePathSim, "AAPL"), q, time.Minute)

	got, ok := cache.Get(CacheKey(CachePathSim, "AAPL"))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.ResolvedAt.Equal(q.ResolvedAt) {
		t.Error("cached quote timestamp changed")
	}
}

func TestQuoteCacheLazyExpiry(t *testing.T) {
	cache := NewQuoteCache()
	cache.Put(CacheKey(CachePathSim, "AAPL"), testQuote("AAPL", SourceSimulated), 20*time.Millisecond)

	if _, ok := cache.Get(CacheKey(CachePathSim, "AAPL")); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get(CacheKey(CachePathSim, "AAPL")); ok {
		t.Error("expected miss after TTL elapsed")
	}
	// Lazy expiry: entry still occupies the map until Cleanup.
	if stats := cache.Stats(); stats.Size != 1 {
		t.Errorf("size = %d, want 1 before cleanup", stats.Size)
	}
	if evicted := cache.Cleanup(); evicted != 1 {
		t.Errorf("Cleanup() = %d, want 1", evicted)
	}
	if stats := cache.Stats(); stats.Size != 0 {
		t.Errorf("size = %d, want 0 after cleanup", stats.Size)
	}
}

func TestQuoteCachePathsAreIndependent(t *testing.T) {
	cache := NewQuoteCache()
	live := testQuote("BTC", SourceLive)
	sim := testQuote("BTC", SourceSimulated)
	sim.Price = 99.99

	cache.Put(CacheKey(CachePathLive, "BTC"), live, time.Minute)
	cache.Put(CacheKey(CachePathSim, "BTC"), sim, time.Minute)

	gotLive, ok := cache.Get(CacheKey(CachePathLive, "BTC"))
	if !ok || gotLive.Source != SourceLive {
		t.Errorf("live entry = (%+v, %v)", gotLive, ok)
	}
	gotSim, ok := cache.Get(CacheKey(CachePathSim, "BTC"))
	if !ok || gotSim.Price != 99.99 {
		t.Errorf("sim entry = (%+v, %v)", gotSim, ok)
	}
}

func TestQuoteCacheOverwrite(t *testing.T) {
	cache := NewQuoteCache()
	key := CacheKey(CachePathSim, "MSFT")

	first := testQuote("MSFT", SourceSimulated)
	cache.Put(key, first, time.Minute)

	second := testQuote("MSFT", SourceSimulated)
	second.Price = 500
	cache.Put(key, second, time.Minute)

	got, _ := cache.Get(key)
	if got.Price != 500 {
		t.Errorf("price = %v, want superseding entry", got.Price)
	}
}

func TestQuoteCacheClearAndStats(t *testing.T) {
	cache := NewQuoteCache()
	cache.Put(CacheKey(CachePathSim, "AAPL"), testQuote("AAPL", SourceSimulated), time.Minute)
	cache.Put(CacheKey(CachePathLive, "BTC"), testQuote("BTC", SourceLive), time.Minute)

	cache.Get(CacheKey(CachePathSim, "AAPL"))
	cache.Get(CacheKey(CachePathSim, "MISSING"))

	stats := cache.Stats()
	if stats.Size != 2 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}

	cache.Clear()
	if stats := cache.Stats(); stats.Size != 0 {
		t.Errorf("size after clear = %d", stats.Size)
	}
}
