package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Server.Listen != ":8085" {
		t.Errorf("Listen = %q", c.Server.Listen)
	}
	if c.CoinGecko.TimeoutSeconds != 8 {
		t.Errorf("TimeoutSeconds = %d, want 8", c.CoinGecko.TimeoutSeconds)
	}
	if c.CoinGecko.LiveIDs["BTC"] != "bitcoin" || c.CoinGecko.LiveIDs["ETH"] != "ethereum" {
		t.Errorf("LiveIDs = %v, want default BTC/ETH mapping", c.CoinGecko.LiveIDs)
	}
	if c.Cache.LiveTTLSeconds != 60 || c.Cache.SimTTLSeconds != 30 {
		t.Errorf("cache TTLs = %d/%d, want 60/30", c.Cache.LiveTTLSeconds, c.Cache.SimTTLSeconds)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotesd.yaml")
	body := `server:
  listen: ":9000"
coingecko:
  timeout_seconds: 3
  live_ids:
    BTC: bitcoin
    SOL: solana
cache:
  sim_ttl_seconds: 10
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Server.Listen != ":9000" {
		t.Errorf("Listen = %q", c.Server.Listen)
	}
	if c.CoinGecko.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d", c.CoinGecko.TimeoutSeconds)
	}
	if c.CoinGecko.LiveIDs["SOL"] != "solana" {
		t.Errorf("LiveIDs = %v", c.CoinGecko.LiveIDs)
	}
	// Unset fields still get defaults.
	if c.Cache.LiveTTLSeconds != 60 {
		t.Errorf("LiveTTLSeconds = %d, want default 60", c.Cache.LiveTTLSeconds)
	}
	if c.Cache.SimTTLSeconds != 10 {
		t.Errorf("SimTTLSeconds = %d", c.Cache.SimTTLSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/quotesd.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
