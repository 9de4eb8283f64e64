package adapters

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wisewallet/marketdata/internal/observ"
)

// LiveFetcher abstracts the external live price provider so the resolver
// can be tested without network access.
type LiveFetcher interface {
	FetchQuote(ctx context.Context, ticker, providerID string) (Quote, error)
}

// ResolverConfig holds resolver tuning knobs.
type ResolverConfig struct {
	// LiveIDs maps live-enabled crypto tickers to the provider's own coin
	// id. Tickers outside this map are never fetched live, even when
	// categorized as crypto.
	LiveIDs map[string]string

	LiveTTL time.Duration // cache TTL for live quotes
	SimTTL  time.Duration // cache TTL for simulated quotes
}

// Resolver is the single entry point for quote resolution. It never
// returns an error: any upstream problem degrades to simulated output, so
// consumers never crash or show an error state because a provider
// hiccupped.
type Resolver struct {
	catalog *Catalog
	sim     *Simulator
	live    LiveFetcher
	cache   *QuoteCache

	liveIDs map[string]string
	liveTTL time.Duration
	simTTL  time.Duration

	group singleflight.Group

	now func() time.Time // overridable in tests
}

func NewResolver(catalog *Catalog, sim *Simulator, live LiveFetcher, cache *QuoteCache, config ResolverConfig) *Resolver {
	if config.LiveTTL <= 0 {
		config.LiveTTL = 60 * time.Second
	}
	if config.SimTTL <= 0 {
		config.SimTTL = 30 * time.Second
	}
	liveIDs := make(map[string]string, len(config.LiveIDs))
	for ticker, id := range config.LiveIDs {
		liveIDs[strings.ToUpper(strings.TrimSpace(ticker))] = id
	}

	return &Resolver{
		catalog: catalog,
		sim:     sim,
		live:    live,
		cache:   cache,
		liveIDs: liveIDs,
		liveTTL: config.LiveTTL,
		simTTL:  config.SimTTL,
		now:     time.Now,
	}
}

// Resolve returns a usable quote for ticker, consulting the cache, the
// live provider (crypto allow-list only) and the simulator in that order.
// categoryHint is optional; when absent or unrecognized the catalog's
// classification is used. A ticker in the live allow-list is treated as
// crypto regardless of hint or catalog.
func (r *Resolver) Resolve(ctx context.Context, ticker, categoryHint string) Quote {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	desc := r.catalog.Lookup(ticker)

	category := desc.Category
	if hinted, ok := ParseCategory(categoryHint); ok {
		category = hinted
	}

	providerID, liveEnabled := r.liveIDs[ticker]
	if liveEnabled {
		// Allow-listed tickers are crypto regardless of hint or catalog.
		category = CategoryCrypto
	}
	useLive := category == CategoryCrypto && liveEnabled

	path := CachePathSim
	if useLive {
		path = CachePathLive
	}
	key := CacheKey(path, ticker)

	if quote, ok := r.cache.Get(key); ok {
		return quote
	}

	// Concurrent resolutions for the same key share one in-flight
	// computation instead of issuing duplicate fetches.
	result, _, _ := r.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing call may have populated
		// the cache between the miss and the singleflight slot.
		if quote, ok := r.cache.Get(key); ok {
			return quote, nil
		}

		var quote Quote
		if useLive {
			quote = r.resolveLive(ctx, ticker, desc, providerID)
		} else {
			quote = r.resolveSimulated(ticker, desc)
		}

		observ.IncCounter("quote_resolve_total", map[string]string{
			"ticker": ticker,
			"source": quote.Source,
		})
		return quote, nil
	})
	return result.(Quote)
}

// resolveLive attempts the live path and silently degrades to simulation.
// Fetch failures are logged for diagnostics but never surfaced.
func (r *Resolver) resolveLive(ctx context.Context, ticker string, desc Descriptor, providerID string) Quote {
	quote, err := r.live.FetchQuote(ctx, ticker, providerID)
	if err == nil {
		quote.DisplayName = desc.DisplayName
		if err = ValidateQuote(&quote); err == nil {
			r.cache.Put(CacheKey(CachePathLive, ticker), quote, r.liveTTL)
			return quote
		}
	}

	observ.Log("quote_live_fallback", map[string]any{
		"ticker": ticker,
		"error":  errString(err),
	})
	observ.IncCounter("quote_live_fallback_total", map[string]string{
		"ticker": ticker,
		"type":   errorType(err),
	})

	// The fallback is cached only under the sim key: the next resolution
	// for this ticker retries the live provider.
	if cached, ok := r.cache.Get(CacheKey(CachePathSim, ticker)); ok {
		return cached
	}
	return r.resolveSimulated(ticker, desc)
}

func (r *Resolver) resolveSimulated(ticker string, desc Descriptor) Quote {
	quote := r.sim.simulate(desc, r.now())
	r.cache.Put(CacheKey(CachePathSim, ticker), quote, r.simTTL)
	return quote
}

// ResolveAll resolves many tickers concurrently, e.g. for a dashboard
// rendering a list of holdings. Resolutions for distinct tickers are
// independent; same-ticker requests coalesce through Resolve.
func (r *Resolver) ResolveAll(ctx context.Context, tickers []string, categoryHint string) map[string]Quote {
	var mu sync.Mutex
	results := make(map[string]Quote, len(tickers))

	g, ctx := errgroup.WithContext(ctx)
	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			quote := r.Resolve(ctx, ticker, categoryHint)
			mu.Lock()
			results[quote.Ticker] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Resolve never fails
	return results
}

// ClearCache drops all cached quotes.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// CacheStats exposes cache counters for the operational endpoint.
func (r *Resolver) CacheStats() CacheStats {
	return r.cache.Stats()
}

// CleanupCache sweeps expired entries and returns how many were evicted.
func (r *Resolver) CleanupCache() int {
	return r.cache.Cleanup()
}

// Catalog returns the resolver's reference catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
