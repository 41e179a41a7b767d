// Package engine turns approved proposals into fills against the
// position book and drives exit triggers on quote refreshes. It is the
// sole writer of positions, cash, and trade history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/pkg/id"
	"github.com/montyhq/monty/portfolio"
	"github.com/montyhq/monty/proposal"
	"github.com/montyhq/monty/risk"
)

// ErrInsufficientFunds is returned when a BUY costs more than the
// available cash.
var ErrInsufficientFunds = errors.New("insufficient funds")

// cashEpsilon tolerates float residue in the cash-sufficiency check.
const cashEpsilon = 1e-9

// TradeClosedListener is notified after the engine auto-closes a
// position on an exit trigger. Called with no locks held.
type TradeClosedListener interface {
	OnTradeClosed(symbol, tradeID, reason string)
}

// Engine coordinates the ledger, book, accountant, and history store.
// Mutations touching one symbol or the cash balance never interleave:
// each execution holds the symbol lock, then the cash lock, for the
// deterministic bookkeeping step only. Quote fetches happen before any
// lock is taken.
type Engine struct {
	ledger *proposal.Ledger
	book   *book.Book
	acct   *portfolio.Accountant
	store  journal.Store
	quotes market.QuoteSource
	log    *zap.Logger

	mu       sync.Mutex // guards locks map and listener
	locks    map[string]*sync.Mutex
	cashMu   sync.Mutex
	listener TradeClosedListener

	Now func() time.Time
}

func New(ledger *proposal.Ledger, b *book.Book, acct *portfolio.Accountant, store journal.Store, quotes market.QuoteSource, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		ledger: ledger,
		book:   b,
		acct:   acct,
		store:  store,
		quotes: quotes,
		log:    log,
		locks:  make(map[string]*sync.Mutex),
		Now:    time.Now,
	}
}

// SetTradeClosedListener installs an optional callback for auto-closes.
func (e *Engine) SetTradeClosedListener(l TradeClosedListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		e.locks[symbol] = l
	}
	return l
}

// Approve approves a pending proposal and executes it synchronously.
func (e *Engine) Approve(ctx context.Context, proposalID string) (journal.TradeRecord, error) {
	p, err := e.ledger.Approve(proposalID)
	if err != nil {
		return journal.TradeRecord{}, err
	}
	return e.Execute(ctx, p)
}

// Execute fills an approved proposal at the current quote. The four
// mutations (position, cash, history, proposal status) commit together
// or not at all; a failure after approval marks the proposal REJECTED.
func (e *Engine) Execute(ctx context.Context, p proposal.Proposal) (journal.TradeRecord, error) {
	// External call first: never hold a lock across network I/O.
	q, err := e.quotes.GetQuote(ctx, p.Symbol)
	if err != nil {
		e.failProposal(p.ID)
		return journal.TradeRecord{}, fmt.Errorf("execute %s: %w", p.ID, err)
	}

	lock := e.symbolLock(p.Symbol)
	lock.Lock()
	defer lock.Unlock()
	e.cashMu.Lock()
	defer e.cashMu.Unlock()

	var rec journal.TradeRecord
	if p.Side == proposal.Buy {
		rec, err = e.executeBuyLocked(p, q.Price)
	} else {
		rec, err = e.executeSellLocked(p, q.Price)
	}
	if err != nil {
		e.failProposal(p.ID)
		return journal.TradeRecord{}, err
	}

	e.log.Info("executed proposal",
		zap.String("proposal_id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("action", rec.Action),
		zap.Float64("price", rec.Price),
		zap.Float64("quantity", rec.Quantity),
	)
	return rec, nil
}

func (e *Engine) executeBuyLocked(p proposal.Proposal, fillPrice float64) (journal.TradeRecord, error) {
	cash := e.acct.Cash()

	quantity := p.Quantity
	if quantity <= 0 {
		quantity = risk.QuantityForAllocation(cash, p.AllocationPct, fillPrice)
	}
	if quantity <= 0 {
		return journal.TradeRecord{}, fmt.Errorf("execute %s: resolved quantity is zero", p.ID)
	}

	cost := quantity * fillPrice
	if cost > cash+cashEpsilon {
		return journal.TradeRecord{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, cash)
	}

	// Position first: averaged in if the symbol is already long,
	// otherwise opened fresh at the fill price.
	var undoBook func() error
	if prev, err := e.book.Get(p.Symbol); err == nil {
		if prev.Side != book.Long {
			return journal.TradeRecord{}, fmt.Errorf("%w: %s is held short", book.ErrPositionExists, p.Symbol)
		}
		if _, err := e.book.Add(p.Symbol, quantity, fillPrice, p.StopLoss, p.TakeProfit); err != nil {
			return journal.TradeRecord{}, err
		}
		undoBook = func() error { return e.book.Restore(prev) }
	} else {
		pos := book.Position{
			Symbol:     p.Symbol,
			Side:       book.Long,
			EntryPrice: fillPrice,
			Quantity:   quantity,
			StopLoss:   p.StopLoss,
			TakeProfit: p.TakeProfit,
			OpenedAt:   e.Now(),
		}
		if err := e.book.Open(pos); err != nil {
			return journal.TradeRecord{}, err
		}
		undoBook = func() error { return e.book.Remove(p.Symbol) }
	}

	rec := journal.TradeRecord{
		TradeID:    id.New(),
		ProposalID: p.ID,
		Symbol:     p.Symbol,
		Action:     string(proposal.Buy),
		Price:      fillPrice,
		Quantity:   quantity,
		Value:      cost,
		Reason:     "Proposal",
		Time:       e.Now(),
	}

	if err := e.commitLocked(rec, -cost, undoBook); err != nil {
		return journal.TradeRecord{}, err
	}
	if err := e.ledger.MarkExecuted(p.ID, rec.TradeID, quantity); err != nil {
		e.rollbackLocked(rec, -cost, undoBook)
		return journal.TradeRecord{}, err
	}
	return rec, nil
}

func (e *Engine) executeSellLocked(p proposal.Proposal, fillPrice float64) (journal.TradeRecord, error) {
	prev, err := e.book.Get(p.Symbol)
	if err != nil {
		return journal.TradeRecord{}, err
	}

	// A SELL without an explicit quantity closes the allocated fraction
	// of the position, or all of it.
	quantity := p.Quantity
	if quantity <= 0 {
		quantity = prev.Quantity
		if p.AllocationPct > 0 {
			quantity = prev.Quantity * p.AllocationPct / 100
		}
	}

	realized, _, err := e.book.ApplyFill(p.Symbol, quantity, fillPrice)
	if err != nil {
		return journal.TradeRecord{}, err
	}
	undoBook := func() error { return e.book.Restore(prev) }

	proceeds := quantity * fillPrice
	rec := journal.TradeRecord{
		TradeID:    id.New(),
		ProposalID: p.ID,
		Symbol:     p.Symbol,
		Action:     string(proposal.Sell),
		Price:      fillPrice,
		Quantity:   quantity,
		Value:      proceeds,
		RealizedPL: &realized,
		Reason:     "Proposal",
		Time:       e.Now(),
	}

	if err := e.commitLocked(rec, proceeds, undoBook); err != nil {
		return journal.TradeRecord{}, err
	}
	if err := e.ledger.MarkExecuted(p.ID, rec.TradeID, quantity); err != nil {
		e.rollbackLocked(rec, proceeds, undoBook)
		return journal.TradeRecord{}, err
	}
	return rec, nil
}

// commitLocked applies the cash delta and appends the trade record,
// undoing everything done so far if either step fails.
func (e *Engine) commitLocked(rec journal.TradeRecord, cashDelta float64, undoBook func() error) error {
	if err := e.acct.Apply(cashDelta); err != nil {
		if uerr := undoBook(); uerr != nil {
			e.log.Error("rollback failed", zap.String("symbol", rec.Symbol), zap.Error(uerr))
		}
		return err
	}
	if err := e.store.RecordTrade(rec); err != nil {
		if uerr := e.acct.Apply(-cashDelta); uerr != nil {
			e.log.Error("rollback failed", zap.String("symbol", rec.Symbol), zap.Error(uerr))
		}
		if uerr := undoBook(); uerr != nil {
			e.log.Error("rollback failed", zap.String("symbol", rec.Symbol), zap.Error(uerr))
		}
		return fmt.Errorf("record trade: %w", err)
	}
	return nil
}

func (e *Engine) rollbackLocked(rec journal.TradeRecord, cashDelta float64, undoBook func() error) {
	if err := e.store.DeleteTrade(rec.TradeID); err != nil {
		e.log.Error("rollback failed", zap.String("trade_id", rec.TradeID), zap.Error(err))
	}
	if err := e.acct.Apply(-cashDelta); err != nil {
		e.log.Error("rollback failed", zap.String("symbol", rec.Symbol), zap.Error(err))
	}
	if err := undoBook(); err != nil {
		e.log.Error("rollback failed", zap.String("symbol", rec.Symbol), zap.Error(err))
	}
}

func (e *Engine) failProposal(pid string) {
	if err := e.ledger.MarkFailed(pid); err != nil {
		e.log.Warn("could not mark proposal failed", zap.String("proposal_id", pid), zap.Error(err))
	}
}
