package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/pkg/id"
)

// Tick runs one housekeeping cycle: stale proposals expire, open
// positions are checked against their exit levels, and an equity
// snapshot is recorded when every held symbol has a price. The caller
// owns the schedule; the engine never sleeps.
func (e *Engine) Tick(ctx context.Context, now time.Time, prices map[string]float64) error {
	expired, err := e.ledger.ExpireStale(now)
	if err != nil {
		e.log.Warn("expiry sweep", zap.Error(err))
	}
	if expired > 0 {
		e.log.Info("expired stale proposals", zap.Int("count", expired))
	}

	for _, pos := range e.book.List() {
		price, ok := prices[pos.Symbol]
		if !ok {
			// No quote this cycle. The position stays open.
			continue
		}
		trig := pos.CheckExit(price)
		if trig == "" {
			continue
		}
		rec, err := e.closeAtTrigger(pos.Symbol, pos.TriggerPrice(trig), string(trig))
		if err != nil {
			e.log.Error("auto-close failed",
				zap.String("symbol", pos.Symbol),
				zap.String("trigger", string(trig)),
				zap.Error(err),
			)
			continue
		}
		e.log.Info("exit trigger fired",
			zap.String("symbol", pos.Symbol),
			zap.String("trigger", string(trig)),
			zap.Float64("price", rec.Price),
			zap.Float64("realized_pl", *rec.RealizedPL),
		)
		e.notifyClosed(pos.Symbol, rec.TradeID, string(trig))
	}

	e.markEquity(prices)
	return ctx.Err()
}

// Close liquidates a position at the current quote on operator request.
func (e *Engine) Close(ctx context.Context, symbol string) (journal.TradeRecord, error) {
	q, err := e.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return journal.TradeRecord{}, err
	}
	rec, err := e.closeAtTrigger(symbol, q.Price, "ManualClose")
	if err != nil {
		return journal.TradeRecord{}, err
	}
	e.notifyClosed(symbol, rec.TradeID, "ManualClose")
	return rec, nil
}

// closeAtTrigger fully closes a position at the given price. Stop and
// take exits fill at the trigger level itself, not the observed quote.
func (e *Engine) closeAtTrigger(symbol string, price float64, reason string) (journal.TradeRecord, error) {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()
	e.cashMu.Lock()
	defer e.cashMu.Unlock()

	prev, err := e.book.Get(symbol)
	if err != nil {
		return journal.TradeRecord{}, err
	}

	realized, _, err := e.book.ApplyFill(symbol, prev.Quantity, price)
	if err != nil {
		return journal.TradeRecord{}, err
	}
	undoBook := func() error { return e.book.Restore(prev) }

	proceeds := prev.Quantity * price
	rec := journal.TradeRecord{
		TradeID:    id.New(),
		Symbol:     symbol,
		Action:     "SELL",
		Price:      price,
		Quantity:   prev.Quantity,
		Value:      proceeds,
		RealizedPL: &realized,
		Reason:     reason,
		Time:       e.Now(),
	}

	if err := e.commitLocked(rec, proceeds, undoBook); err != nil {
		return journal.TradeRecord{}, err
	}
	return rec, nil
}

func (e *Engine) markEquity(prices map[string]float64) {
	positions := e.book.List()
	for _, pos := range positions {
		if _, ok := prices[pos.Symbol]; !ok {
			return
		}
	}
	if _, err := e.acct.Equity(positions, prices); err != nil {
		e.log.Warn("equity snapshot", zap.Error(err))
	}
}

func (e *Engine) notifyClosed(symbol, tradeID, reason string) {
	e.mu.Lock()
	l := e.listener
	e.mu.Unlock()
	if l != nil {
		l.OnTradeClosed(symbol, tradeID, reason)
	}
}
