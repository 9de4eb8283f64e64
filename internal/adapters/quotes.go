package adapters

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the normalized price record returned for any ticker,
// regardless of whether it came from the live provider or the simulator.
// Callers cannot distinguish sources except via the Source field.
type Quote struct {
	Ticker      string    `json:"ticker"`       // Normalized uppercase symbol
	DisplayName string    `json:"display_name"` // Human-readable instrument name
	Price       float64   `json:"price"`        // Current price, 2 decimals, always > 0
	ChangePct   float64   `json:"change_pct"`   // Signed day change, 2 decimals
	Volume      string    `json:"volume"`       // Magnitude string, e.g. "12.3M"
	Source      string    `json:"source"`       // "live" | "simulated"
	ResolvedAt  time.Time `json:"resolved_at"`  // When this quote was produced
}

const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// ValidateQuote checks the invariants every resolved quote must satisfy.
func ValidateQuote(q *Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}
	q.Ticker = strings.ToUpper(strings.TrimSpace(q.Ticker))
	if q.Ticker == "" {
		return fmt.Errorf("empty ticker")
	}
	if q.Price <= 0 {
		return fmt.Errorf("non-positive price: %.4f", q.Price)
	}
	if q.Source != SourceLive && q.Source != SourceSimulated {
		return fmt.Errorf("invalid source: %s", q.Source)
	}
	if q.ResolvedAt.IsZero() {
		return fmt.Errorf("missing resolved_at timestamp")
	}
	return nil
}

// Round2 rounds a value to 2 decimal places for currency display.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatVolume buckets a raw volume figure into K/M/B suffix notation.
func FormatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	default:
		return fmt.Sprintf("%.1fK", v/1e3)
	}
}

// QuoteError represents different types of live-fetch failures. These are
// internal to the resolution pipeline: the resolver absorbs all of them by
// falling back to simulated data and never surfaces them to callers.
type QuoteError struct {
	Type    string // "upstream_timeout", "upstream_malformed", "upstream_unavailable", "rate_limit", "bad_ticker"
	Ticker  string
	Message string
	Cause   error
}

func (e *QuoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error for %s: %s (%v)", e.Type, e.Ticker, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error for %s: %s", e.Type, e.Ticker, e.Message)
}

func (e *QuoteError) Unwrap() error { return e.Cause }

func NewTimeoutError(ticker string, cause error) *QuoteError {
	return &QuoteError{Type: "upstream_timeout", Ticker: ticker, Message: "request exceeded timeout", Cause: cause}
}

func NewMalformedError(ticker, message string, cause error) *QuoteError {
	return &QuoteError{Type: "upstream_malformed", Ticker: ticker, Message: message, Cause: cause}
}

func NewUnavailableError(ticker, message string, cause error) *QuoteError {
	return &QuoteError{Type: "upstream_unavailable", Ticker: ticker, Message: message, Cause: cause}
}

func NewRateLimitError(ticker, message string) *QuoteError {
	return &QuoteError{Type: "rate_limit", Ticker: ticker, Message: message}
}

func NewBadTickerError(ticker, message string) *QuoteError {
	return &QuoteError{Type: "bad_ticker", Ticker: ticker, Message: message}
}

// IsTransient reports whether a fetch error is worth one retry.
// Server-side and network failures are transient; malformed payloads and
// unknown tickers are not.
func IsTransient(err error) bool {
	if qe, ok := err.(*QuoteError); ok {
		return qe.Type == "upstream_unavailable" || qe.Type == "upstream_timeout"
	}
	return false
}
