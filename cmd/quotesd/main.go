package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wisewallet/marketdata/internal/adapters"
	"github.com/wisewallet/marketdata/internal/config"
	"github.com/wisewallet/marketdata/internal/observ"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults applied when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	catalog := adapters.NewCatalog()
	if cfg.Catalog.OverlayPath != "" {
		if err := catalog.LoadOverlay(cfg.Catalog.OverlayPath); err != nil {
			log.Fatalf("load catalog overlay: %v", err)
		}
	}

	resolver := adapters.NewResolver(
		catalog,
		adapters.NewSimulator(catalog),
		adapters.NewCoinGeckoClient(adapters.CoinGeckoConfig{
			BaseURL:            cfg.CoinGecko.BaseURL,
			TimeoutSeconds:     cfg.CoinGecko.TimeoutSeconds,
			RateLimitPerMinute: cfg.CoinGecko.RateLimitPerMinute,
			RetryBackoffMs:     cfg.CoinGecko.RetryBackoffMs,
		}),
		adapters.NewQuoteCache(),
		adapters.ResolverConfig{
			LiveIDs: cfg.CoinGecko.LiveIDs,
			LiveTTL: time.Duration(cfg.Cache.LiveTTLSeconds) * time.Second,
			SimTTL:  time.Duration(cfg.Cache.SimTTLSeconds) * time.Second,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupLoop(ctx, resolver, time.Duration(cfg.Cache.CleanupIntervalSeconds)*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/quote", handleQuote(resolver))
	mux.HandleFunc("/v1/quotes", handleQuotes(resolver))
	mux.HandleFunc("/v1/cache/stats", handleCacheStats(resolver))
	mux.HandleFunc("/v1/cache/clear", handleCacheClear(resolver))
	mux.Handle("/metrics", observ.Handler())
	mux.Handle("/healthz", observ.Health())

	server := &http.Server{Addr: cfg.Server.Listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	observ.Log("quotesd_started", map[string]any{
		"listen":     cfg.Server.Listen,
		"live_ids":   cfg.CoinGecko.LiveIDs,
		"catalog":    len(catalog.Tickers()),
		"live_ttl_s": cfg.Cache.LiveTTLSeconds,
		"sim_ttl_s":  cfg.Cache.SimTTLSeconds,
	})

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
	observ.Log("quotesd_stopped", nil)
}

func cleanupLoop(ctx context.Context, resolver *adapters.Resolver, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resolver.CleanupCache()
		}
	}
}

func handleQuote(resolver *adapters.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
		if ticker == "" {
			http.Error(w, `{"error":"missing ticker parameter"}`, http.StatusBadRequest)
			return
		}
		quote := resolver.Resolve(r.Context(), ticker, r.URL.Query().Get("category"))
		writeJSON(w, quote)
	}
}

func handleQuotes(resolver *adapters.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("tickers"))
		if raw == "" {
			http.Error(w, `{"error":"missing tickers parameter"}`, http.StatusBadRequest)
			return
		}
		var tickers []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		quotes := resolver.ResolveAll(r.Context(), tickers, r.URL.Query().Get("category"))
		writeJSON(w, quotes)
	}
}

func handleCacheStats(resolver *adapters.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, resolver.CacheStats())
	}
}

func handleCacheClear(resolver *adapters.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, `{"error":"use POST or DELETE"}`, http.StatusMethodNotAllowed)
			return
		}
		resolver.ClearCache()
		writeJSON(w, map[string]string{"status": "cleared"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
