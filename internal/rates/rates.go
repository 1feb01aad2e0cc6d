// Package rates fetches the ILS exchange-rate pair consumed at order
// creation. Rates are never re-fetched for existing orders; the pair stored
// on the order row is authoritative from then on.
package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "rates").Logger()

// Static fallback pair used when the upstream is unreachable. Order creation
// must not block on a rates outage.
const (
	FallbackUSD = 3.65
	FallbackCNY = 0.51
)

const cacheKey = "importdesk:rates:ils"
const cacheTTL = time.Hour

// Rates is one home-currency-per-unit pair. IsLive is false when the static
// fallback was served.
type Rates struct {
	USD    float64 `json:"usd"`
	CNY    float64 `json:"cny"`
	IsLive bool    `json:"is_live"`
}

// Provider returns the current rate pair, falling back internally on error.
type Provider interface {
	GetRates(ctx context.Context) Rates
}

// Static always returns a fixed pair. Used in tests and as the zero-config
// default.
type Static struct {
	USD, CNY float64
}

func (s Static) GetRates(context.Context) Rates {
	return Rates{USD: s.USD, CNY: s.CNY, IsLive: false}
}

// Client fetches rates over HTTP with an optional redis cache in front.
// A nil redis client disables caching.
type Client struct {
	url  string
	http *http.Client
	rdb  *redis.Client
}

func NewClient(url string, rdb *redis.Client) *Client {
	return &Client{url: url, http: &http.Client{Timeout: 5 * time.Second}, rdb: rdb}
}

// GetRates never fails: any error along the way degrades to the fallback
// pair with IsLive=false.
func (c *Client) GetRates(ctx context.Context) Rates {
	if r, ok := c.cached(ctx); ok {
		return r
	}
	r, err := c.fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("rates fetch failed, using static fallback")
		return Rates{USD: FallbackUSD, CNY: FallbackCNY, IsLive: false}
	}
	c.cache(ctx, r)
	return r
}

func (c *Client) fetch(ctx context.Context) (Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Rates{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Rates{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Rates{}, &statusError{resp.StatusCode}
	}
	var body struct {
		USD float64 `json:"usd"`
		CNY float64 `json:"cny"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Rates{}, err
	}
	if body.USD <= 0 || body.CNY <= 0 {
		return Rates{}, &statusError{http.StatusUnprocessableEntity}
	}
	return Rates{USD: body.USD, CNY: body.CNY, IsLive: true}, nil
}

func (c *Client) cached(ctx context.Context) (Rates, bool) {
	if c.rdb == nil {
		return Rates{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return Rates{}, false
	}
	var r Rates
	if err := json.Unmarshal(raw, &r); err != nil {
		return Rates{}, false
	}
	return r, true
}

func (c *Client) cache(ctx context.Context, r Rates) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
		logger.Warn().Err(err).Msg("rates cache write failed")
	}
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "rates upstream status " + http.StatusText(e.code) }
