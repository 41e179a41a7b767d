// Package portfolio aggregates cash and open position value into equity
// and total return. The execution engine is the only writer.
package portfolio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/journal"
)

// ErrMissingQuote is returned when equity is requested without a quote
// for every held symbol.
var ErrMissingQuote = errors.New("missing quote for held symbol")

// State is the singleton cash record. InitialBalance never changes after
// the first run; it anchors the total-return calculation.
type State struct {
	Cash           float64
	InitialBalance float64
}

// Accountant owns the cash balance and the last computed equity
// snapshot.
type Accountant struct {
	mu         sync.Mutex
	state      State
	lastEquity float64
	store      journal.Store

	Now func() time.Time
}

// New creates an accountant, restoring cash from the store when a prior
// run left one, otherwise seeding both cash and the initial balance.
func New(store journal.Store, initialBalance float64) (*Accountant, error) {
	a := &Accountant{store: store, Now: time.Now}

	rec, ok, err := store.LoadPortfolio()
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if ok {
		a.state = State{Cash: rec.Cash, InitialBalance: rec.InitialBalance}
	} else {
		a.state = State{Cash: initialBalance, InitialBalance: initialBalance}
		if err := a.persistLocked(); err != nil {
			return nil, err
		}
	}
	a.lastEquity = a.state.Cash
	return a, nil
}

// State returns a copy of the current cash state.
func (a *Accountant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Cash returns the available cash balance.
func (a *Accountant) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Cash
}

// Apply adjusts cash by delta (negative for a buy, positive for sell
// proceeds) and persists the new balance.
func (a *Accountant) Apply(delta float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.state.Cash
	a.state.Cash += delta
	if err := a.persistLocked(); err != nil {
		a.state.Cash = prev
		return err
	}
	return nil
}

// Equity computes cash plus the market value of every open position,
// records the snapshot, and remembers it for TotalReturnPct. Every held
// symbol must have a quote.
func (a *Accountant) Equity(positions []book.Position, prices map[string]float64) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	equity := a.state.Cash
	for _, p := range positions {
		price, ok := prices[p.Symbol]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingQuote, p.Symbol)
		}
		equity += p.Quantity * price
	}

	a.lastEquity = equity
	snap := journal.EquitySnapshot{
		Time:      a.Now(),
		Cash:      a.state.Cash,
		Equity:    equity,
		ReturnPct: a.returnPctLocked(equity),
	}
	if err := a.store.RecordEquity(snap); err != nil {
		return 0, fmt.Errorf("record equity: %w", err)
	}
	return equity, nil
}

// TotalReturnPct is the percent return of the most recently computed
// equity snapshot over the initial balance.
func (a *Accountant) TotalReturnPct() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.returnPctLocked(a.lastEquity)
}

func (a *Accountant) returnPctLocked(equity float64) float64 {
	if a.state.InitialBalance == 0 {
		return 0
	}
	return (equity - a.state.InitialBalance) / a.state.InitialBalance * 100
}

func (a *Accountant) persistLocked() error {
	rec := journal.PortfolioRecord{
		Cash:           a.state.Cash,
		InitialBalance: a.state.InitialBalance,
		UpdatedAt:      a.Now(),
	}
	if err := a.store.SavePortfolio(rec); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}
