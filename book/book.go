package book

import (
	"errors"
	"fmt"
	"sync"

	"github.com/montyhq/monty/journal"
)

var (
	ErrPositionExists = errors.New("position already open for symbol")
	ErrNotFound       = errors.New("no open position for symbol")
	ErrOverfill       = errors.New("fill exceeds held quantity")
)

// qtyEpsilon absorbs float residue when a partial close takes quantity to
// effectively zero.
const qtyEpsilon = 1e-9

// Book holds the open positions, at most one per symbol. Every mutation
// is mirrored into the store so the book survives a restart.
type Book struct {
	mu        sync.Mutex
	positions map[string]*Position
	store     journal.Store
}

func New(store journal.Store) *Book {
	return &Book{
		positions: make(map[string]*Position),
		store:     store,
	}
}

// Load rehydrates open positions from the store.
func (b *Book) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.store.ListPositions()
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	for _, r := range recs {
		b.positions[r.Symbol] = &Position{
			Symbol:     r.Symbol,
			Side:       Side(r.Side),
			EntryPrice: r.EntryPrice,
			Quantity:   r.Quantity,
			StopLoss:   r.StopLoss,
			TakeProfit: r.TakeProfit,
			OpenedAt:   r.OpenedAt,
		}
	}
	return nil
}

// Open records a new position. The symbol must not already be open.
func (b *Book) Open(p Position) error {
	if p.Quantity <= 0 {
		return fmt.Errorf("open %s: quantity must be positive, got %v", p.Symbol, p.Quantity)
	}
	if p.Side != Long && p.Side != Short {
		return fmt.Errorf("open %s: bad side %q", p.Symbol, p.Side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.positions[p.Symbol]; ok {
		return fmt.Errorf("%w: %s", ErrPositionExists, p.Symbol)
	}

	if err := b.store.SavePosition(record(&p)); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	b.positions[p.Symbol] = &p
	return nil
}

// Add averages additional quantity into an existing position at the fill
// price, keeping the one-position-per-symbol invariant. Fresh stop/take
// levels replace the old ones when non-zero.
func (b *Book) Add(symbol string, quantity, fillPrice, stopLoss, takeProfit float64) (Position, error) {
	if quantity <= 0 {
		return Position{}, fmt.Errorf("add %s: quantity must be positive, got %v", symbol, quantity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.positions[symbol]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	prev := *p
	total := p.Quantity + quantity
	p.EntryPrice = (p.EntryPrice*p.Quantity + fillPrice*quantity) / total
	p.Quantity = total
	if stopLoss > 0 {
		p.StopLoss = stopLoss
	}
	if takeProfit > 0 {
		p.TakeProfit = takeProfit
	}

	if err := b.store.SavePosition(record(p)); err != nil {
		*p = prev
		return Position{}, fmt.Errorf("save position: %w", err)
	}
	return *p, nil
}

// ApplyFill reduces (or closes) a position by quantityDelta at fillPrice
// and returns the realized P&L of the closed slice. The position is
// removed once its quantity reaches zero.
func (b *Book) ApplyFill(symbol string, quantityDelta, fillPrice float64) (realized float64, closed bool, err error) {
	if quantityDelta <= 0 {
		return 0, false, fmt.Errorf("fill %s: quantity must be positive, got %v", symbol, quantityDelta)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.positions[symbol]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	if quantityDelta > p.Quantity+qtyEpsilon {
		return 0, false, fmt.Errorf("%w: %s holds %v, fill wants %v", ErrOverfill, symbol, p.Quantity, quantityDelta)
	}

	if p.Side == Short {
		realized = (p.EntryPrice - fillPrice) * quantityDelta
	} else {
		realized = (fillPrice - p.EntryPrice) * quantityDelta
	}

	remaining := p.Quantity - quantityDelta
	if remaining <= qtyEpsilon {
		if err := b.store.DeletePosition(symbol); err != nil {
			return 0, false, fmt.Errorf("delete position: %w", err)
		}
		delete(b.positions, symbol)
		return realized, true, nil
	}

	prev := p.Quantity
	p.Quantity = remaining
	if err := b.store.SavePosition(record(p)); err != nil {
		p.Quantity = prev
		return 0, false, fmt.Errorf("save position: %w", err)
	}
	return realized, false, nil
}

// Restore puts a position back as it was, used by the engine to roll
// back a failed execution.
func (b *Book) Restore(p Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.SavePosition(record(&p)); err != nil {
		return fmt.Errorf("restore position: %w", err)
	}
	b.positions[p.Symbol] = &p
	return nil
}

// Remove drops a position outright, the rollback counterpart of Open.
func (b *Book) Remove(symbol string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.DeletePosition(symbol); err != nil {
		return fmt.Errorf("remove position: %w", err)
	}
	delete(b.positions, symbol)
	return nil
}

// Get returns a copy of the open position for symbol.
func (b *Book) Get(symbol string) (Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.positions[symbol]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return *p, nil
}

// List returns copies of all open positions.
func (b *Book) List() []Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	return out
}

// UnrealizedPL marks one position against a supplied price. The book
// never fetches quotes itself.
func (b *Book) UnrealizedPL(symbol string, price float64) (float64, error) {
	p, err := b.Get(symbol)
	if err != nil {
		return 0, err
	}
	return p.UnrealizedPL(price), nil
}

// CheckExitTriggers evaluates a position's stop/take levels against a
// price. Read-only, so concurrent checks before the close lands cannot
// double-trigger.
func (b *Book) CheckExitTriggers(symbol string, price float64) (Trigger, error) {
	p, err := b.Get(symbol)
	if err != nil {
		return TriggerNone, err
	}
	return p.CheckExit(price), nil
}

func record(p *Position) journal.PositionRecord {
	return journal.PositionRecord{
		Symbol:     p.Symbol,
		Side:       string(p.Side),
		EntryPrice: p.EntryPrice,
		Quantity:   p.Quantity,
		StopLoss:   p.StopLoss,
		TakeProfit: p.TakeProfit,
		OpenedAt:   p.OpenedAt,
	}
}
