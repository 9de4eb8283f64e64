package adapters

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category classifies an instrument for resolution routing. Only crypto
// instruments are eligible for live fetching.
type Category string

const (
	CategoryEquity Category = "equity"
	CategoryETF    Category = "etf"
	CategoryBond   Category = "bond"
	CategoryREIT   Category = "reit"
	CategoryCrypto Category = "crypto"
)

// ParseCategory maps a caller-supplied category hint to a known Category.
// Unrecognized hints return false so the catalog's own classification wins.
func ParseCategory(hint string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "equity", "stock", "stocks":
		return CategoryEquity, true
	case "etf", "etfs":
		return CategoryETF, true
	case "bond", "bonds":
		return CategoryBond, true
	case "reit", "reits":
		return CategoryREIT, true
	case "crypto":
		return CategoryCrypto, true
	}
	return "", false
}

// Descriptor is the static per-instrument metadata driving simulation.
type Descriptor struct {
	Ticker        string   `yaml:"ticker"`
	DisplayName   string   `yaml:"name"`
	BasePrice     float64  `yaml:"base_price"`
	VolatilityPct float64  `yaml:"volatility_pct"`
	TrendPct      float64  `yaml:"trend_pct"`
	Category      Category `yaml:"category"`
}

// Catalog is the static ticker -> descriptor table. Immutable after
// construction; lookups never fail.
type Catalog struct {
	entries map[string]Descriptor
}

// NewCatalog builds the catalog from the builtin instrument table.
func NewCatalog() *Catalog {
	c := &Catalog{entries: make(map[string]Descriptor, len(builtinInstruments))}
	for _, d := range builtinInstruments {
		c.entries[d.Ticker] = d
	}
	return c
}

// LoadOverlay merges instruments from a YAML file into the catalog,
// overriding builtin entries with the same ticker. The overlay is
// configuration data so new instruments can be added without code changes.
func (c *Catalog) LoadOverlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var overlay struct {
		Instruments []Descriptor `yaml:"instruments"`
	}
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return fmt.Errorf("parse catalog overlay: %w", err)
	}
	for _, d := range overlay.Instruments {
		d.Ticker = strings.ToUpper(strings.TrimSpace(d.Ticker))
		if d.Ticker == "" || d.BasePrice <= 0 {
			return fmt.Errorf("invalid overlay instrument %q: base price must be positive", d.Ticker)
		}
		if d.DisplayName == "" {
			d.DisplayName = d.Ticker
		}
		if d.Category == "" {
			d.Category = CategoryEquity
		}
		c.entries[d.Ticker] = d
	}
	return nil
}

// Lookup returns the descriptor for a ticker. Unknown tickers get a
// generic descriptor so they degrade to plausible synthetic quotes
// instead of failing.
func (c *Catalog) Lookup(ticker string) Descriptor {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if d, ok := c.entries[ticker]; ok {
		return d
	}
	return Descriptor{
		Ticker:        ticker,
		DisplayName:   ticker,
		BasePrice:     100,
		VolatilityPct: 2.0,
		TrendPct:      0,
		Category:      CategoryEquity,
	}
}

// Has reports whether a ticker has a builtin or overlaid entry.
func (c *Catalog) Has(ticker string) bool {
	_, ok := c.entries[strings.ToUpper(strings.TrimSpace(ticker))]
	return ok
}

// Tickers returns all cataloged tickers.
func (c *Catalog) Tickers() []string {
	out := make([]string, 0, len(c.entries))
	for t := range c.entries {
		out = append(out, t)
	}
	return out
}

var builtinInstruments = []Descriptor{
	// Stocks
	{Ticker: "AAPL", DisplayName: "Apple Inc.", BasePrice: 185, VolatilityPct: 2.5, TrendPct: 0.1, Category: CategoryEquity},
	{Ticker: "MSFT", DisplayName: "Microsoft Corp.", BasePrice: 410, VolatilityPct: 2.0, TrendPct: 0.15, Category: CategoryEquity},
	{Ticker: "GOOGL", DisplayName: "Alphabet Inc.", BasePrice: 170, VolatilityPct: 2.8, TrendPct: 0.12, Category: CategoryEquity},
	{Ticker: "AMZN", DisplayName: "Amazon.com Inc.", BasePrice: 180, VolatilityPct: 3.0, TrendPct: 0.2, Category: CategoryEquity},
	{Ticker: "META", DisplayName: "Meta Platforms", BasePrice: 480, VolatilityPct: 3.5, TrendPct: 0.18, Category: CategoryEquity},
	{Ticker: "NVDA", DisplayName: "NVIDIA Corp.", BasePrice: 900, VolatilityPct: 4.5, TrendPct: 0.25, Category: CategoryEquity},
	{Ticker: "TSLA", DisplayName: "Tesla Inc.", BasePrice: 240, VolatilityPct: 5.5, TrendPct: -0.1, Category: CategoryEquity},
	{Ticker: "NFLX", DisplayName: "Netflix Inc.", BasePrice: 620, VolatilityPct: 3.0, TrendPct: 0.05, Category: CategoryEquity},
	{Ticker: "AMD", DisplayName: "Adv. Micro Devices", BasePrice: 160, VolatilityPct: 4.0, TrendPct: 0.22, Category: CategoryEquity},
	{Ticker: "PLTR", DisplayName: "Palantir Tech", BasePrice: 24, VolatilityPct: 6.0, TrendPct: 0.3, Category: CategoryEquity},
	{Ticker: "COIN", DisplayName: "Coinbase Global", BasePrice: 250, VolatilityPct: 7.0, TrendPct: 0.15, Category: CategoryEquity},
	{Ticker: "UBER", DisplayName: "Uber Tech", BasePrice: 75, VolatilityPct: 3.0, TrendPct: 0.08, Category: CategoryEquity},
	{Ticker: "JPM", DisplayName: "JPMorgan Chase", BasePrice: 195, VolatilityPct: 1.8, TrendPct: 0.05, Category: CategoryEquity},
	{Ticker: "V", DisplayName: "Visa Inc.", BasePrice: 280, VolatilityPct: 1.5, TrendPct: 0.06, Category: CategoryEquity},
	{Ticker: "DIS", DisplayName: "Walt Disney Co.", BasePrice: 115, VolatilityPct: 2.5, TrendPct: 0.03, Category: CategoryEquity},
	{Ticker: "KO", DisplayName: "Coca-Cola Co.", BasePrice: 60, VolatilityPct: 0.8, TrendPct: 0.02, Category: CategoryEquity},
	{Ticker: "PEP", DisplayName: "PepsiCo Inc.", BasePrice: 170, VolatilityPct: 0.9, TrendPct: 0.02, Category: CategoryEquity},
	{Ticker: "MCD", DisplayName: "McDonald's Corp.", BasePrice: 270, VolatilityPct: 1.2, TrendPct: 0.04, Category: CategoryEquity},

	// ETFs
	{Ticker: "SPY", DisplayName: "S&P 500 Index Fund", BasePrice: 510, VolatilityPct: 1.0, TrendPct: 0.08, Category: CategoryETF},
	{Ticker: "VOO", DisplayName: "Vanguard S&P 500", BasePrice: 470, VolatilityPct: 1.0, TrendPct: 0.08, Category: CategoryETF},
	{Ticker: "QQQ", DisplayName: "Invesco QQQ", BasePrice: 440, VolatilityPct: 1.5, TrendPct: 0.12, Category: CategoryETF},
	{Ticker: "TECH", DisplayName: "Tech Growth ETF", BasePrice: 350, VolatilityPct: 2.0, TrendPct: 0.15, Category: CategoryETF},
	{Ticker: "EM", DisplayName: "Emerging Markets", BasePrice: 98, VolatilityPct: 2.5, TrendPct: 0.06, Category: CategoryETF},
	{Ticker: "VNQ", DisplayName: "Vanguard Real Estate ETF", BasePrice: 87, VolatilityPct: 1.5, TrendPct: 0.04, Category: CategoryETF},

	// Bonds & REITs
	{Ticker: "BOND", DisplayName: "Bond Fund", BasePrice: 98, VolatilityPct: 0.5, TrendPct: 0.01, Category: CategoryBond},
	{Ticker: "AGG", DisplayName: "iShares Core US Bond ETF", BasePrice: 99, VolatilityPct: 0.3, TrendPct: 0.01, Category: CategoryBond},
	{Ticker: "REIT", DisplayName: "Real Estate REIT", BasePrice: 65, VolatilityPct: 1.8, TrendPct: 0.05, Category: CategoryREIT},

	// Crypto
	{Ticker: "BTC", DisplayName: "Bitcoin", BasePrice: 43521, VolatilityPct: 8.0, TrendPct: 0.2, Category: CategoryCrypto},
	{Ticker: "ETH", DisplayName: "Ethereum", BasePrice: 2284, VolatilityPct: 7.0, TrendPct: 0.18, Category: CategoryCrypto},
}
