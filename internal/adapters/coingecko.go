package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wisewallet/marketdata/internal/observ"
)

// CoinGeckoConfig holds configuration for the live crypto price client.
type CoinGeckoConfig struct {
	BaseURL            string
	TimeoutSeconds     int
	RateLimitPerMinute int
	RetryBackoffMs     int
}

// CoinGeckoClient fetches live crypto prices from the CoinGecko simple
// price endpoint. Instruments are addressed by CoinGecko's own coin id
// (e.g. "bitcoin"), not the application ticker; the resolver owns that
// translation via its allow-list.
type CoinGeckoClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	backoff     time.Duration
}

func NewCoinGeckoClient(config CoinGeckoConfig) *CoinGeckoClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 8
	}
	if config.RateLimitPerMinute <= 0 {
		config.RateLimitPerMinute = 30 // CoinGecko free tier
	}
	if config.RetryBackoffMs <= 0 {
		config.RetryBackoffMs = 1000
	}

	return &CoinGeckoClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(config.RateLimitPerMinute)/60), 1),
		backoff:     time.Duration(config.RetryBackoffMs) * time.Millisecond,
	}
}

type coinData struct {
	USD       *float64 `json:"usd"`
	Change24h *float64 `json:"usd_24h_change"`
	Volume24h *float64 `json:"usd_24h_vol"`
}

// FetchQuote retrieves the current price for one coin. At most one retry is
// made, and only on a 5xx or network/timeout error; 4xx responses and
// malformed payloads are not transient and fail immediately.
func (cg *CoinGeckoClient) FetchQuote(ctx context.Context, ticker, coinID string) (Quote, error) {
	if coinID == "" {
		return Quote{}, NewBadTickerError(ticker, "no provider id mapping")
	}

	if err := cg.rateLimiter.Wait(ctx); err != nil {
		return Quote{}, NewRateLimitError(ticker, "rate limit wait cancelled")
	}

	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_24hr_vol", "true")
	requestURL := cg.baseURL + "/simple/price?" + params.Encode()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Quote{}, NewTimeoutError(ticker, ctx.Err())
			case <-time.After(cg.backoff):
			}
		}

		quote, err := cg.fetchOnce(ctx, requestURL, ticker, coinID)
		if err == nil {
			observ.RecordDuration("quote_fetch_latency", time.Since(start), map[string]string{"provider": "coingecko"})
			return quote, nil
		}
		lastErr = err
		if !IsTransient(err) {
			break
		}
		observ.IncCounter("quote_fetch_retry_total", map[string]string{"provider": "coingecko", "ticker": ticker})
	}

	observ.IncCounter("quote_fetch_error_total", map[string]string{
		"provider": "coingecko",
		"type":     errorType(lastErr),
	})
	return Quote{}, lastErr
}

func (cg *CoinGeckoClient) fetchOnce(ctx context.Context, requestURL, ticker, coinID string) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Quote{}, NewUnavailableError(ticker, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cg.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Quote{}, NewTimeoutError(ticker, err)
		}
		return Quote{}, NewUnavailableError(ticker, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Quote{}, NewRateLimitError(ticker, "provider rate limit exceeded")
	case resp.StatusCode >= 500:
		return Quote{}, NewUnavailableError(ticker, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return Quote{}, NewMalformedError(ticker, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	// The payload schema is provider-controlled; decode defensively so a
	// missing or oddly-typed field falls back instead of breaking callers.
	var payload map[string]coinData
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, NewMalformedError(ticker, "failed to decode response", err)
	}

	data, ok := payload[coinID]
	if !ok || data.USD == nil || *data.USD <= 0 {
		return Quote{}, NewMalformedError(ticker, "missing or non-positive price field", nil)
	}

	changePct := 0.0
	if data.Change24h != nil {
		changePct = *data.Change24h
	}
	volume := "0B"
	if data.Volume24h != nil && *data.Volume24h > 0 {
		volume = FormatVolume(*data.Volume24h)
	}

	return Quote{
		Ticker:     strings.ToUpper(strings.TrimSpace(ticker)),
		Price:      Round2(*data.USD),
		ChangePct:  Round2(changePct),
		Volume:     volume,
		Source:     SourceLive,
		ResolvedAt: time.Now(),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func errorType(err error) string {
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe.Type
	}
	return "unknown"
}
