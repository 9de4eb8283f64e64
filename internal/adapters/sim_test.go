package adapters

import (
	"strings"
	"testing"
	"time"
)

func TestDaySeed(t *testing.T) {
	morning := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 15, 21, 45, 0, 0, time.UTC)
	nextDay := time.Date(2024, time.March, 16, 9, 30, 0, 0, time.UTC)

	t.Run("stable within a calendar day", func(t *testing.T) {
		if DaySeed("AAPL", morning) != DaySeed("AAPL", evening) {
			t.Error("seed changed within the same calendar day")
		}
	})

	t.Run("changes day to day", func(t *testing.T) {
		if DaySeed("AAPL", morning) == DaySeed("AAPL", nextDay) {
			t.Error("seed did not change across days")
		}
	})

	t.Run("depends on ticker", func(t *testing.T) {
		if DaySeed("AAPL", morning) == DaySeed("MSFT", morning) {
			t.Error("different tickers produced the same seed")
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		if DaySeed(" aapl ", morning) != DaySeed("AAPL", morning) {
			t.Error("seed not stable under ticker normalization")
		}
	})
}

func TestSimulateDeterministicAtSameInstant(t *testing.T) {
	sim := NewSimulator(NewCatalog())
	now := time.Date(2024, time.March, 15, 14, 20, 0, 0, time.UTC)

	q1 := sim.Simulate("NVDA", now)
	q2 := sim.Simulate("NVDA", now)
	if q1 != q2 {
		t.Errorf("two simulations at the same instant differ:\n%+v\n%+v", q1, q2)
	}
}

func TestSimulatePositivityInvariant(t *testing.T) {
	catalog := NewCatalog()
	sim := NewSimulator(catalog)

	tickers := append(catalog.Tickers(), "ZZZZ", "X", "UNKNOWN123")
	for _, ticker := range tickers {
		for hour := 0; hour < 24; hour++ {
			now := time.Date(2024, time.July, 3, hour, 17, 0, 0, time.UTC)
			q := sim.Simulate(ticker, now)
			if q.Price <= 0 {
				t.Fatalf("simulate(%s, hour=%d) price = %v, want > 0", ticker, hour, q.Price)
			}
			if q.Source != SourceSimulated {
				t.Fatalf("simulate(%s) source = %v", ticker, q.Source)
			}
			if err := ValidateQuote(&q); err != nil {
				t.Fatalf("invalid simulated quote for %s: %v", ticker, err)
			}
		}
	}
}

func TestSimulatePriceFloor(t *testing.T) {
	catalog := NewCatalog()
	sim := NewSimulator(catalog)

	// Whatever the draw, price never drops below 10% of base.
	for day := 1; day <= 28; day++ {
		now := time.Date(2024, time.February, day, 11, 0, 0, 0, time.UTC)
		q := sim.Simulate("BTC", now)
		if q.Price < 43521*0.1 {
			t.Errorf("day %d: price %v below floor", day, q.Price)
		}
	}
}

func TestSimulateKnownInstrumentBounds(t *testing.T) {
	// AAPL: base 185, volatility 2.5, trend 0.1. The drift, volatility and
	// floor rules bound the price well inside [0.9*base, 1.3*base].
	sim := NewSimulator(NewCatalog())

	for day := 1; day <= 28; day++ {
		for hour := 0; hour < 24; hour += 3 {
			now := time.Date(2024, time.May, day, hour, 30, 0, 0, time.UTC)
			q := sim.Simulate("AAPL", now)
			if q.Price < 185*0.9 || q.Price > 185*1.3 {
				t.Errorf("AAPL at %v: price %v outside [%.1f, %.1f]", now, q.Price, 185*0.9, 185*1.3)
			}
			if q.DisplayName != "Apple Inc." {
				t.Errorf("DisplayName = %v", q.DisplayName)
			}
		}
	}
}

func TestSimulateUnknownTickerUsesGenericBase(t *testing.T) {
	sim := NewSimulator(NewCatalog())
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	q := sim.Simulate("ZZZZ", now)
	// Generic descriptor: base 100, volatility 2, trend 0. Price stays
	// within the volatility envelope around 100.
	if q.Price < 90 || q.Price > 110 {
		t.Errorf("unknown ticker price = %v, want near generic base 100", q.Price)
	}
	if q.DisplayName != "ZZZZ" {
		t.Errorf("DisplayName = %v, want ticker echoed", q.DisplayName)
	}
}

func TestSimulateVolumeFormat(t *testing.T) {
	sim := NewSimulator(NewCatalog())
	now := time.Date(2024, time.March, 15, 15, 0, 0, 0, time.UTC)

	for _, ticker := range []string{"AAPL", "BTC", "KO", "ZZZZ"} {
		q := sim.Simulate(ticker, now)
		if !strings.HasSuffix(q.Volume, "K") && !strings.HasSuffix(q.Volume, "M") && !strings.HasSuffix(q.Volume, "B") {
			t.Errorf("volume %q for %s lacks K/M/B suffix", q.Volume, ticker)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12_300_000, "12.3M"},
		{2_500_000_000, "2.5B"},
		{450_000, "450.0K"},
		{0, "0.0K"},
	}
	for _, tt := range tests {
		if got := FormatVolume(tt.in); got != tt.want {
			t.Errorf("FormatVolume(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{43521.4567, 43521.46},
		{-0.125, -0.13},
		{100, 100},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
