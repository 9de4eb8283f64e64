package adapters

import (
	"math"
	"strings"
	"time"
)

// Simulator produces reproducible synthetic quotes. The price path for a
// ticker is a pure function of the ticker string and the calendar date, so
// a user sees consistent prices throughout a session without persistent
// storage, while still observing day-over-day movement.
type Simulator struct {
	catalog *Catalog
}

func NewSimulator(catalog *Catalog) *Simulator {
	return &Simulator{catalog: catalog}
}

// DaySeed derives the deterministic seed for a ticker on the calendar date
// of now: the sum of the ticker's character codes plus a date term. Exposed
// as a pure function so the within-a-day determinism can be verified
// directly.
func DaySeed(ticker string, now time.Time) int64 {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	var seed int64
	for _, c := range ticker {
		seed += int64(c)
	}
	year, month, day := now.Date()
	seed += int64(year)*365 + int64(month-1)*30 + int64(day)
	return seed
}

// lcg is the linear-congruential generator driving the simulator. Draws are
// uniformly distributed in [-0.5, 0.5).
type lcg struct {
	seed int64
}

func (g *lcg) draw() float64 {
	g.seed = (g.seed*9301 + 49297) % 233280
	return float64(g.seed)/233280 - 0.5
}

// Simulate produces a synthetic quote for a ticker at the given wall-clock
// time. It cannot fail: unknown tickers use the catalog's generic
// descriptor, and degenerate arithmetic is clamped rather than propagated.
func (s *Simulator) Simulate(ticker string, now time.Time) Quote {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	desc := s.catalog.Lookup(ticker)
	return s.simulate(desc, now)
}

func (s *Simulator) simulate(desc Descriptor, now time.Time) Quote {
	gen := lcg{seed: DaySeed(desc.Ticker, now)}

	hoursElapsed := float64(now.Hour()) + float64(now.Minute())/60

	// Trend accumulates over the course of the day; volatility follows a
	// smooth intraday sinusoid modulated by one deterministic draw. Trend
	// is applied as a raw daily fraction, volatility as a percentage.
	trendAdjustment := desc.TrendPct * (hoursElapsed / 24)
	dailyVolatility := desc.VolatilityPct * (1 + math.Sin(hoursElapsed*math.Pi/12)*0.3)
	randomChange := gen.draw() * desc.BasePrice * (dailyVolatility / 100)

	price := desc.BasePrice*(1+trendAdjustment) + randomChange
	floor := desc.BasePrice * 0.1
	if !isFinite(price) || price < floor {
		price = floor
	}

	// Day change relative to a synthetic previous close derived from the
	// same drift and volatility parameters with a smaller multiplier.
	baseWithTrend := desc.BasePrice * (1 + trendAdjustment)
	prevClose := baseWithTrend * (1 - (dailyVolatility/100)*0.3)
	changePct := 0.0
	if prevClose > 0 {
		changePct = (price - prevClose) / prevClose * 100
	}
	if !isFinite(changePct) {
		changePct = 0
	}

	// Volume scales with the magnitude of the draw and a size multiplier
	// tied to the base price.
	volumeMultiplier := 100.0
	if desc.BasePrice > 1000 {
		volumeMultiplier = 1
	} else if desc.BasePrice > 100 {
		volumeMultiplier = 10
	}
	volumeValue := math.Abs(randomChange) * volumeMultiplier * 1e6

	return Quote{
		Ticker:      desc.Ticker,
		DisplayName: desc.DisplayName,
		Price:       Round2(price),
		ChangePct:   Round2(changePct),
		Volume:      FormatVolume(volumeValue),
		Source:      SourceSimulated,
		ResolvedAt:  now,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
