package adapters

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wisewallet/marketdata/internal/observ"
)

// QuoteCache is a thread-safe TTL cache for resolved quotes. Keys are
// namespaced by resolution path ("live:BTC" vs "sim:BTC") since the two
// paths may legitimately disagree and both should be independently
// cacheable. Expiry is lazy: a Get on an expired entry is a miss, and
// entries are only swept when Cleanup is called.
//
// The cache is purely a best-effort optimization. It may be cleared at any
// time with no correctness impact.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]cachedQuote
	hits    int64
	misses  int64
}

type cachedQuote struct {
	quote    Quote
	cachedAt time.Time
	ttl      time.Duration
}

// CacheKey builds the namespaced cache key for a ticker and path.
func CacheKey(path, ticker string) string {
	return path + ":" + ticker
}

const (
	CachePathLive = "live"
	CachePathSim  = "sim"
)

// CacheStats is a point-in-time snapshot of cache contents and counters.
type CacheStats struct {
	Size   int      `json:"size"`
	Hits   int64    `json:"hits"`
	Misses int64    `json:"misses"`
	Keys   []string `json:"keys"`
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{entries: make(map[string]cachedQuote)}
}

// Get returns the cached quote for key if present and younger than its TTL.
func (qc *QuoteCache) Get(key string) (Quote, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	cached, exists := qc.entries[key]
	if !exists || time.Since(cached.cachedAt) > cached.ttl {
		qc.misses++
		observ.IncCounter("quote_cache_miss_total", map[string]string{"key": key})
		return Quote{}, false
	}

	qc.hits++
	observ.IncCounter("quote_cache_hit_total", map[string]string{"key": key})
	return cached.quote, true
}

// Put stores a quote under key with the given TTL, superseding any
// previous entry.
func (qc *QuoteCache) Put(key string, quote Quote, ttl time.Duration) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	qc.entries[key] = cachedQuote{quote: quote, cachedAt: time.Now(), ttl: ttl}
	observ.IncCounter("quote_cache_set_total", map[string]string{"key": key})
}

// Clear drops all entries.
func (qc *QuoteCache) Clear() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.entries = make(map[string]cachedQuote)
	observ.Log("quote_cache_cleared", nil)
}

// Stats returns a snapshot of cache size, counters and keys.
func (qc *QuoteCache) Stats() CacheStats {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	keys := make([]string, 0, len(qc.entries))
	for k := range qc.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	observ.RecordGauge("quote_cache_size", float64(len(qc.entries)), nil)
	return CacheStats{Size: len(qc.entries), Hits: qc.hits, Misses: qc.misses, Keys: keys}
}

// Cleanup removes expired entries. Optional at the intended scale (a
// handful of tickers per session); the daemon runs it on a timer to keep
// the map from accumulating one-off tickers.
func (qc *QuoteCache) Cleanup() int {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	now := time.Now()
	evicted := 0
	for key, cached := range qc.entries {
		if now.Sub(cached.cachedAt) > cached.ttl {
			delete(qc.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		observ.IncCounterBy("quote_cache_evictions_total", nil, float64(evicted))
		observ.Log("quote_cache_cleanup", map[string]any{"evicted": evicted, "remaining": len(qc.entries)})
	}
	return evicted
}

// String implements fmt.Stringer for debug logging.
func (s CacheStats) String() string {
	return fmt.Sprintf("size=%d hits=%d misses=%d", s.Size, s.Hits, s.Misses)
}
