package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/montyhq/monty/market"
)

const DefaultStreamURL = "wss://stream.binance.com:9443/ws"

// Stream keeps a QuoteStore warm from the combined miniTicker
// websocket feed. It reconnects with backoff until the context ends.
type Stream struct {
	url     string
	symbols []string
	store   *market.QuoteStore
	log     *zap.Logger
}

func NewStream(url string, symbols []string, store *market.QuoteStore, log *zap.Logger) *Stream {
	if url == "" {
		url = DefaultStreamURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{url: url, symbols: symbols, store: store, log: log}
}

// Run blocks until ctx is done, maintaining the subscription across
// reconnects.
func (s *Stream) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := s.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("stream disconnected", zap.Error(err), zap.Duration("retry_in", backoff))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *Stream) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, strings.ToLower(sym)+"@miniTicker")
	}
	sub := map[string]any{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     time.Now().Unix(),
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handle(raw)
	}
}

type miniTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Open   string `json:"o"`
	Volume string `json:"q"` // quote asset volume
}

func (s *Stream) handle(raw []byte) {
	var t miniTicker
	if err := json.Unmarshal(raw, &t); err != nil || t.Event != "24hrMiniTicker" {
		return
	}
	price, err := strconv.ParseFloat(t.Close, 64)
	if err != nil || price <= 0 {
		return
	}

	q := market.Quote{Symbol: t.Symbol, Price: price, Time: time.Now()}
	if open, err := strconv.ParseFloat(t.Open, 64); err == nil && open > 0 {
		q.Change24h = (price - open) / open * 100
	}
	if vol, err := strconv.ParseFloat(t.Volume, 64); err == nil {
		q.Volume24h = vol
	}
	s.store.Set(q)
}
