// Package pricefeed fetches historical token prices from a Birdeye-style
// public API.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dexsignal/internal/domain"
	"dexsignal/internal/timeseries"
	logx "dexsignal/pkg/logx"
)

// maxLookbackDays caps the chart window regardless of token age.
const maxLookbackDays = 30

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger

	now func() time.Time
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://public-api.birdeye.so"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
		now:  time.Now,
	}
}

// History fetches the price series for a token. The window reaches back
// min(launchedDays, 30) days from now; granularity follows the token's
// age (5m under one day, hourly otherwise).
func (c *Client) History(ctx context.Context, chain, address string, launchedDays float64) ([]domain.PricePoint, error) {
	step := timeseries.StepFor(launchedDays)
	from, to := c.timeRange(launchedDays)

	q := url.Values{}
	q.Set("address", address)
	q.Set("address_type", "token")
	q.Set("type", step.APIType())
	q.Set("time_from", strconv.FormatInt(from, 10))
	q.Set("time_to", strconv.FormatInt(to, 10))

	u := c.cfg.BaseURL + "/defi/history_price?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-chain", chain)
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-KEY", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricefeed: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("pricefeed: http %d for %s on %s", resp.StatusCode, address, chain)
	}

	var out struct {
		Data struct {
			Items []struct {
				UnixTime int64   `json:"unixTime"`
				Value    float64 `json:"value"`
			} `json:"items"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pricefeed: decode: %w", err)
	}
	if !out.Success {
		return nil, errors.New("pricefeed: provider reported failure")
	}

	series := make([]domain.PricePoint, 0, len(out.Data.Items))
	for _, it := range out.Data.Items {
		series = append(series, domain.PricePoint{Unix: it.UnixTime, Price: it.Value})
	}
	return series, nil
}

func (c *Client) timeRange(launchedDays float64) (from, to int64) {
	days := launchedDays
	if days > maxLookbackDays {
		days = maxLookbackDays
	}
	now := c.now().Unix()
	return now - int64(days*24*60*60), now
}
