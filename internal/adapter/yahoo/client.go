package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// DefaultHost is the RapidAPI host of the Yahoo Finance API
const DefaultHost = "apidojo-yahoo-finance-v1.p.rapidapi.com"

const (
	quotePath = "/market/v2/get-quotes"
	chartPath = "/stock/v3/get-chart"
)

// Config holds the RapidAPI credentials and endpoint
type Config struct {
	APIKey  string
	Host    string        // Sent as X-RapidAPI-Host, defaults to DefaultHost
	BaseURL string        // Defaults to https://<Host>
	Timeout time.Duration // Defaults to 15s
}

// Client is a Yahoo Finance client going through RapidAPI
type Client struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// Quote fetches the live quote of a symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	params := url.Values{}
	params.Set("region", "US")
	params.Set("symbols", symbol)

	jobj, err := c.get(ctx, quotePath, params)
	if err != nil {
		return nil, err
	}
	if jobj == nil {
		return nil, fmt.Errorf("%w: no quote for %s", domain.ErrProvider, symbol)
	}

	const result = "$.quoteResponse.result[0]"
	price, err := decimalAt(jobj, result+".regularMarketPrice")
	if err != nil {
		return nil, fmt.Errorf("%w: quote for %s: %v", domain.ErrProvider, symbol, err)
	}

	q := &domain.Quote{Symbol: symbol, Price: price}
	// Change fields are informative, a quote without them is still usable
	if change, err := decimalAt(jobj, result+".regularMarketChange"); err == nil {
		q.Change = change
	}
	if pct, err := decimalAt(jobj, result+".regularMarketChangePercent"); err == nil {
		q.ChangePercent = pct
	}
	if ts, err := int64At(jobj, result+".regularMarketTime"); err == nil {
		q.Timestamp = time.Unix(ts, 0).UTC()
	}

	c.log.Debug().Str("symbol", symbol).Str("price", price.String()).Msg("Quote fetched")

	return q, nil
}

// DailyCloses returns the daily closes of a symbol over a chart range such as
// "1mo" or "3mo", oldest first. Days without a close are skipped.
func (c *Client) DailyCloses(ctx context.Context, symbol, rangeValue string) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("region", "US")
	params.Set("range", rangeValue)
	params.Set("interval", "1d")

	jobj, err := c.get(ctx, chartPath, params)
	if err != nil {
		return nil, err
	}
	points := make([]domain.PricePoint, 0)
	if jobj == nil {
		return points, nil
	}

	const result = "$.chart.result[0]"
	timestamps, err := listAt(jobj, result+".timestamp")
	if err != nil {
		// Yahoo answers unknown symbols and empty ranges without a result
		return points, nil
	}
	closes, _ := listAt(jobj, result+".indicators.quote[0].close")

	// Dates are exchange-local, like the chart itself
	loc := time.UTC
	if offset, err := int64At(jobj, result+".meta.gmtoffset"); err == nil {
		loc = time.FixedZone("exchange", int(offset))
	}

	for i, raw := range timestamps {
		if i >= len(closes) || raw == nil || closes[i] == nil {
			continue
		}
		ts, err := toInt64(raw)
		if err != nil {
			continue
		}
		value, err := toDecimal(closes[i])
		if err != nil {
			continue
		}
		local := time.Unix(ts, 0).In(loc)
		points = append(points, domain.PricePoint{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Value: value,
		})
	}

	return points, nil
}

// PriceOn returns the close of the first trading day in [day, day+3 days],
// looked up in a three month chart. Zero means no trading day matched.
func (c *Client) PriceOn(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	points, err := c.DailyCloses(ctx, symbol, "3mo")
	if err != nil {
		return decimal.Zero, err
	}

	start := domain.StartOfDay(day)
	end := start.AddDate(0, 0, 3)
	for _, p := range points {
		if !p.Date.Before(start) && !p.Date.After(end) {
			return p.Value, nil
		}
	}
	return decimal.Zero, nil
}

// Series returns up to the last 30 daily closes of a symbol
func (c *Client) Series(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	points, err := c.DailyCloses(ctx, symbol, "1mo")
	if err != nil {
		return nil, err
	}
	if len(points) > 30 {
		points = points[len(points)-30:]
	}
	return points, nil
}

// get calls the API and decodes the JSON body, keeping numbers exact.
// A 204 response yields a nil document.
func (c *Client) get(ctx context.Context, path string, params url.Values) (any, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: RapidAPI key is not configured", domain.ErrProvider)
	}

	reqURL := c.cfg.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.cfg.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %v", domain.ErrProvider, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", domain.ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Yahoo Finance API returned status %d: %s", domain.ErrProvider, resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrProvider, err)
	}
	return jobj, nil
}

// valueAt evaluates a JSONPath expression without wildcards.
// Missing keys and out of range indexes are errors.
func valueAt(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	if jval == nil {
		return nil, fmt.Errorf("null value at %q", path)
	}
	return jval, nil
}

func decimalAt(jobj any, path string) (decimal.Decimal, error) {
	jval, err := valueAt(jobj, path)
	if err != nil {
		return decimal.Zero, err
	}
	return toDecimal(jval)
}

func int64At(jobj any, path string) (int64, error) {
	jval, err := valueAt(jobj, path)
	if err != nil {
		return 0, err
	}
	return toInt64(jval)
}

func listAt(jobj any, path string) ([]any, error) {
	jval, err := valueAt(jobj, path)
	if err != nil {
		return nil, err
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%q is not a list", path)
	}
	return list, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}
