// Package binance talks to the Binance public market data API. Only
// unauthenticated endpoints are used; the engine never places real
// orders anywhere.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/montyhq/monty/market"
)

const DefaultBaseURL = "https://api.binance.com"

// Client fetches quotes and candles over REST. It satisfies
// market.QuoteSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// GetQuote fetches the 24hr ticker for one symbol. Any transport or
// decode failure surfaces as market.ErrQuoteUnavailable so callers can
// treat a flaky feed uniformly.
func (c *Client) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, strings.ToUpper(symbol))

	var t ticker24h
	if err := c.getJSON(ctx, url, &t); err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s: %v", market.ErrQuoteUnavailable, symbol, err)
	}

	price, err := strconv.ParseFloat(t.LastPrice, 64)
	if err != nil || price <= 0 {
		return market.Quote{}, fmt.Errorf("%w: %s: bad price %q", market.ErrQuoteUnavailable, symbol, t.LastPrice)
	}
	change, _ := strconv.ParseFloat(t.PriceChangePercent, 64)
	volume, _ := strconv.ParseFloat(t.QuoteVolume, 64)

	return market.Quote{
		Symbol:    t.Symbol,
		Price:     price,
		Change24h: change,
		Volume24h: volume,
		Time:      time.Now(),
	}, nil
}

// GetCandles fetches up to limit klines at the given interval, oldest
// first, e.g. interval "1h".
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.baseURL, strings.ToUpper(symbol), interval, limit)

	// Klines come back as positional arrays of mixed types.
	var rows [][]json.RawMessage
	if err := c.getJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			continue
		}
		c := market.Candle{Time: time.UnixMilli(openMs)}
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				return nil, fmt.Errorf("klines %s: field %d: %w", symbol, i+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("klines %s: field %d: %w", symbol, i+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// GetPrices fetches spot prices for the given symbols in one request.
func (c *Client) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	var tickers []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/v3/ticker/price", &tickers); err != nil {
		return nil, fmt.Errorf("ticker prices: %w", err)
	}

	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[strings.ToUpper(s)] = true
	}

	prices := make(map[string]float64, len(symbols))
	for _, t := range tickers {
		if !want[t.Symbol] {
			continue
		}
		if p, err := strconv.ParseFloat(t.Price, 64); err == nil {
			prices[t.Symbol] = p
		}
	}
	return prices, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
