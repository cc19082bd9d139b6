// Package rates fetches exchange rates for currency re-denomination.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownCurrency is returned when the provider has no rate for a code.
var ErrUnknownCurrency = errors.New("rates: unknown currency")

// latest is the provider payload. Both the open and the keyed endpoints
// are accepted.
type latest struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	BaseCode        string                     `json:"base_code"`
	Rates           map[string]decimal.Decimal `json:"rates"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

type entry struct {
	rates   map[string]decimal.Decimal
	fetched time.Time
}

// Client fetches base-currency rate tables and caches them for TTL.
type Client struct {
	baseURL string
	ttl     time.Duration
	http    *http.Client
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]entry
	group singleflight.Group
}

// New returns a client for baseURL; the base currency code is appended to it.
func New(baseURL string, ttl time.Duration, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		ttl:     ttl,
		http:    hc,
		now:     time.Now,
		cache:   make(map[string]entry),
	}
}

// Rate returns how many units of to one unit of from is worth.
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	table, err := c.table(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	r, ok := table[to]
	if !ok || !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	return r, nil
}

func (c *Client) table(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	c.mu.Lock()
	e, ok := c.cache[base]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetched) < c.ttl {
		return e.rates, nil
	}

	v, err, _ := c.group.Do(base, func() (any, error) {
		rates, err := c.fetch(ctx, base)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[base] = entry{rates: rates, fetched: c.now()}
		c.mu.Unlock()
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]decimal.Decimal), nil
}

func (c *Client) fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+base, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: fetch %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates: fetch %s: status %d", base, resp.StatusCode)
	}
	var body latest
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("rates: decode %s: %w", base, err)
	}
	if body.Result != "" && body.Result != "success" {
		if body.ErrorType == "unsupported-code" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
		}
		return nil, fmt.Errorf("rates: provider error %q", body.ErrorType)
	}
	rates := body.ConversionRates
	if len(rates) == 0 {
		rates = body.Rates
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rates: empty table for %s", base)
	}
	return rates, nil
}
