package proposal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/pkg/id"
	"github.com/montyhq/monty/risk"
)

var (
	ErrInvalidProposal = errors.New("invalid proposal")
	ErrNotFound        = errors.New("proposal not found")
	ErrInvalidState    = errors.New("proposal not in required state")
	ErrExpired         = errors.New("proposal expired")
)

// Ledger owns every proposal through its lifecycle. Transitions only ever
// move forward: PENDING to APPROVED/REJECTED/EXPIRED, APPROVED to
// EXECUTED (or REJECTED on a failed execution). Terminal proposals are
// kept for audit, never deleted.
type Ledger struct {
	mu        sync.Mutex
	ttl       time.Duration
	store     journal.Store
	proposals map[string]*Proposal
	order     []string

	// Now is swappable for tests.
	Now func() time.Time
}

func NewLedger(store journal.Store, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{
		ttl:       ttl,
		store:     store,
		proposals: make(map[string]*Proposal),
		Now:       time.Now,
	}
}

// Load rehydrates live proposals from the store after a restart.
// Terminal proposals stay in the store; the ledger only needs the ones
// that can still transition.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, status := range []Status{StatusPending, StatusApproved} {
		recs, err := l.store.ListProposalsByStatus(string(status))
		if err != nil {
			return fmt.Errorf("load proposals: %w", err)
		}
		for _, rec := range recs {
			p := fromRecord(rec)
			l.proposals[p.ID] = p
			l.order = append(l.order, p.ID)
		}
	}
	return nil
}

// Create validates a draft and files it as PENDING with expiry now+TTL.
func (l *Ledger) Create(d Draft) (Proposal, error) {
	if d.Side != Buy && d.Side != Sell {
		return Proposal{}, fmt.Errorf("%w: side %q", ErrInvalidProposal, d.Side)
	}
	if d.Price <= 0 {
		return Proposal{}, fmt.Errorf("%w: price %v", ErrInvalidProposal, d.Price)
	}
	if d.Quantity <= 0 && d.AllocationPct <= 0 {
		return Proposal{}, fmt.Errorf("%w: needs a positive quantity or allocation", ErrInvalidProposal)
	}
	if d.AllocationPct < 0 || d.AllocationPct > 100 {
		return Proposal{}, fmt.Errorf("%w: allocation %v%%", ErrInvalidProposal, d.AllocationPct)
	}
	if d.Symbol == "" {
		return Proposal{}, fmt.Errorf("%w: empty symbol", ErrInvalidProposal)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	long := d.Side == Buy
	p := &Proposal{
		ID:            id.New(),
		Symbol:        d.Symbol,
		Side:          d.Side,
		Price:         d.Price,
		Quantity:      d.Quantity,
		AllocationPct: d.AllocationPct,
		StopLoss:      risk.StopPrice(d.Price, d.StopLossPct, long),
		TakeProfit:    risk.TakePrice(d.Price, d.TakeProfitPct, long),
		Strategy:      d.Strategy,
		Reasoning:     d.Reasoning,
		Confidence:    d.Confidence,
		Status:        StatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(l.ttl),
	}

	if err := l.store.SaveProposal(p.record()); err != nil {
		return Proposal{}, fmt.Errorf("save proposal: %w", err)
	}

	l.proposals[p.ID] = p
	l.order = append(l.order, p.ID)
	return *p, nil
}

// Get returns a copy of the proposal.
func (l *Ledger) Get(pid string) (Proposal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.proposals[pid]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	return *p, nil
}

// ExpireStale flips every PENDING proposal past its TTL to EXPIRED and
// returns how many it moved. Idempotent: a second pass with the same now
// finds nothing left to expire. The ledger never schedules this itself;
// the caller's tick decides the cadence.
func (l *Ledger) ExpireStale(now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expireStaleLocked(now)
}

func (l *Ledger) expireStaleLocked(now time.Time) (int, error) {
	n := 0
	for _, pid := range l.order {
		p := l.proposals[pid]
		if !p.Expired(now) {
			continue
		}
		p.Status = StatusExpired
		if err := l.store.SaveProposal(p.record()); err != nil {
			p.Status = StatusPending
			return n, fmt.Errorf("save expired proposal: %w", err)
		}
		n++
	}
	return n, nil
}

// Pending returns PENDING proposals, oldest first, after sweeping out
// anything stale so the view never shows a dead proposal.
func (l *Ledger) Pending() ([]Proposal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.expireStaleLocked(l.Now()); err != nil {
		return nil, err
	}

	var out []Proposal
	for _, pid := range l.order {
		if p := l.proposals[pid]; p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Approve moves a PENDING proposal to APPROVED and returns it for
// immediate execution. Expiry is re-checked here, under the same lock
// the transition takes: approving a stale proposal marks it EXPIRED and
// fails with ErrExpired.
func (l *Ledger) Approve(pid string) (Proposal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.proposals[pid]
	if !ok {
		return Proposal{}, ErrNotFound
	}
	if p.Expired(l.Now()) {
		p.Status = StatusExpired
		if err := l.store.SaveProposal(p.record()); err != nil {
			p.Status = StatusPending
			return Proposal{}, fmt.Errorf("save expired proposal: %w", err)
		}
		return Proposal{}, ErrExpired
	}
	if p.Status != StatusPending {
		return Proposal{}, fmt.Errorf("%w: %s is %s", ErrInvalidState, pid, p.Status)
	}

	p.Status = StatusApproved
	if err := l.store.SaveProposal(p.record()); err != nil {
		p.Status = StatusPending
		return Proposal{}, fmt.Errorf("save approved proposal: %w", err)
	}
	return *p, nil
}

// Reject moves a PENDING proposal to REJECTED.
func (l *Ledger) Reject(pid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.proposals[pid]
	if !ok {
		return ErrNotFound
	}
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, pid, p.Status)
	}
	return l.transitionLocked(p, StatusRejected)
}

// RejectAllPending rejects every PENDING proposal. Proposals already in
// a terminal state are left alone, not treated as an error.
func (l *Ledger) RejectAllPending() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, pid := range l.order {
		p := l.proposals[pid]
		if p.Status != StatusPending {
			continue
		}
		if err := l.transitionLocked(p, StatusRejected); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// MarkExecuted finalizes an APPROVED proposal with the fill that
// executed it. Called by the execution engine inside its commit.
func (l *Ledger) MarkExecuted(pid, tradeID string, quantity float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.proposals[pid]
	if !ok {
		return ErrNotFound
	}
	if p.Status != StatusApproved {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, pid, p.Status)
	}

	prevTrade, prevQty := p.TradeID, p.Quantity
	p.TradeID = tradeID
	p.Quantity = quantity
	p.Status = StatusExecuted
	if err := l.store.SaveProposal(p.record()); err != nil {
		p.TradeID, p.Quantity = prevTrade, prevQty
		p.Status = StatusApproved
		return fmt.Errorf("save executed proposal: %w", err)
	}
	return nil
}

// MarkFailed moves an APPROVED proposal to REJECTED after a failed
// execution (validation or quote failure downstream of approval).
func (l *Ledger) MarkFailed(pid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.proposals[pid]
	if !ok {
		return ErrNotFound
	}
	if p.Status != StatusApproved {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, pid, p.Status)
	}
	return l.transitionLocked(p, StatusRejected)
}

func (l *Ledger) transitionLocked(p *Proposal, to Status) error {
	prev := p.Status
	p.Status = to
	if err := l.store.SaveProposal(p.record()); err != nil {
		p.Status = prev
		return fmt.Errorf("save proposal: %w", err)
	}
	return nil
}
