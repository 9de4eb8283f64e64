package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Listen string `yaml:"listen"`
}

type CoinGecko struct {
	BaseURL            string            `yaml:"base_url"`
	TimeoutSeconds     int               `yaml:"timeout_seconds"`
	RateLimitPerMinute int               `yaml:"rate_limit_per_minute"`
	RetryBackoffMs     int               `yaml:"retry_backoff_ms"`
	LiveIDs            map[string]string `yaml:"live_ids"` // ticker -> coingecko coin id
}

type Cache struct {
	LiveTTLSeconds         int `yaml:"live_ttl_seconds"`
	SimTTLSeconds          int `yaml:"sim_ttl_seconds"`
	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds"`
}

type Catalog struct {
	OverlayPath string `yaml:"overlay_path"` // optional extra instruments
}

type Root struct {
	Server    Server    `yaml:"server"`
	CoinGecko CoinGecko `yaml:"coingecko"`
	Cache     Cache     `yaml:"cache"`
	Catalog   Catalog   `yaml:"catalog"`
}

// Load reads the YAML config at path, applying defaults for anything left
// unset. An empty path returns pure defaults.
func Load(path string) (Root, error) {
	var c Root
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, err
		}
	}

	if c.Server.Listen == "" {
		c.Server.Listen = ":8085"
	}

	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.CoinGecko.TimeoutSeconds == 0 {
		c.CoinGecko.TimeoutSeconds = 8
	}
	if c.CoinGecko.RateLimitPerMinute == 0 {
		c.CoinGecko.RateLimitPerMinute = 30
	}
	if c.CoinGecko.RetryBackoffMs == 0 {
		c.CoinGecko.RetryBackoffMs = 1000
	}
	if len(c.CoinGecko.LiveIDs) == 0 {
		c.CoinGecko.LiveIDs = map[string]string{
			"BTC": "bitcoin",
			"ETH": "ethereum",
		}
	}

	if c.Cache.LiveTTLSeconds == 0 {
		c.Cache.LiveTTLSeconds = 60
	}
	if c.Cache.SimTTLSeconds == 0 {
		c.Cache.SimTTLSeconds = 30
	}
	if c.Cache.CleanupIntervalSeconds == 0 {
		c.Cache.CleanupIntervalSeconds = 60
	}

	return c, nil
}
