package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montyhq/monty/market"
)

func TestGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"60100.50","priceChangePercent":"2.5","quoteVolume":"12345678.9"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	q, err := c.GetQuote(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.Equal(t, 60100.50, q.Price)
	assert.Equal(t, 2.5, q.Change24h)
	assert.Equal(t, 12345678.9, q.Volume24h)
}

func TestGetQuoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, market.ErrQuoteUnavailable)
}

func TestGetQuoteBadPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"0.00000000"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GetQuote(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, market.ErrQuoteUnavailable)
}

func TestGetCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		w.Write([]byte(`[
			[1700000000000,"100.0","110.0","95.0","105.0","5000.0",1700003599999,"0","0","0","0","0"],
			[1700003600000,"105.0","120.0","104.0","118.0","6200.0",1700007199999,"0","0","0","0","0"]
		]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	candles, err := c.GetCandles(context.Background(), "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 105.0, candles[0].Close)
	assert.Equal(t, 118.0, candles[1].Close)
	assert.Equal(t, 104.0, candles[1].Low)
	assert.Equal(t, int64(1700000000), candles[0].Time.Unix())
}

func TestGetPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","price":"60000.00"},
			{"symbol":"ETHUSDT","price":"2500.00"},
			{"symbol":"DOGEUSDT","price":"0.10"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	prices, err := c.GetPrices(context.Background(), []string{"btcusdt", "ETHUSDT"})
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, 60000.0, prices["BTCUSDT"])
	assert.Equal(t, 2500.0, prices["ETHUSDT"])
}

func TestStreamHandleMiniTicker(t *testing.T) {
	store := market.NewQuoteStore()
	s := NewStream("", nil, store, nil)

	s.handle([]byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"61500.00","o":"60000.00","q":"987654.3"}`))

	q, err := store.Get("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 61500.0, q.Price)
	assert.InDelta(t, 2.5, q.Change24h, 1e-9)
	assert.Equal(t, 987654.3, q.Volume24h)

	// Subscription acks and malformed frames are ignored.
	s.handle([]byte(`{"result":null,"id":1}`))
	s.handle([]byte(`not json`))
	_, err = store.Get("ETHUSDT")
	assert.ErrorIs(t, err, market.ErrQuoteUnavailable)
}
