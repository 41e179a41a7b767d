package market

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQuoteUnavailable is returned when a quote source cannot produce a
// quote for a symbol. During trigger scans the caller skips the symbol
// for the cycle instead of failing the scan.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Quote is the last traded price for a symbol plus its 24h change.
type Quote struct {
	Symbol    string
	Price     float64
	Change24h float64 // percent
	Volume24h float64
	Time      time.Time
}

// QuoteSource supplies quotes from an exchange or a replayed feed.
// Implementations are expected to block on network I/O; callers must
// fetch before taking any book or cash locks.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// QuoteStore caches the latest quote per symbol.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]Quote)}
}

func (qs *QuoteStore) Set(q Quote) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.quotes[q.Symbol] = q
}

func (qs *QuoteStore) Get(symbol string) (Quote, error) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	q, ok := qs.quotes[symbol]
	if !ok {
		return Quote{}, ErrQuoteUnavailable
	}
	return q, nil
}

// Snapshot returns a copy of all cached quotes keyed by symbol.
func (qs *QuoteStore) Snapshot() map[string]Quote {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	out := make(map[string]Quote, len(qs.quotes))
	for sym, q := range qs.quotes {
		out[sym] = q
	}
	return out
}
