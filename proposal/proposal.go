// Package proposal implements the trade proposal ledger: every trade the
// assistant wants to make is parked here with a TTL until a human
// approves, rejects, or lets it expire.
package proposal

import (
	"time"

	"github.com/montyhq/monty/journal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusExecuted Status = "EXECUTED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

// DefaultTTL is how long a proposal stays actionable after creation.
const DefaultTTL = 30 * time.Minute

// Draft is the input to Create: what a strategy or a chat request wants
// to trade, before the ledger assigns identity and expiry. Size is either
// an absolute Quantity or an AllocationPct of available cash; the engine
// resolves AllocationPct into a quantity at execution time.
type Draft struct {
	Symbol        string
	Side          Side
	Price         float64
	Quantity      float64
	AllocationPct float64
	StopLossPct   float64
	TakeProfitPct float64
	Strategy      string
	Reasoning     string
	Confidence    float64
}

// Proposal is a trade awaiting (or past) the approval decision. StopLoss
// and TakeProfit are absolute prices derived from the draft's percent
// offsets at creation.
type Proposal struct {
	ID            string
	Symbol        string
	Side          Side
	Price         float64
	Quantity      float64
	AllocationPct float64
	StopLoss      float64
	TakeProfit    float64
	Strategy      string
	Reasoning     string
	Confidence    float64
	Status        Status
	TradeID       string // fill that executed this proposal
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the proposal is past its TTL at now. Only
// PENDING proposals can expire; terminal states stay put.
func (p *Proposal) Expired(now time.Time) bool {
	return p.Status == StatusPending && !now.Before(p.ExpiresAt)
}

func (p *Proposal) record() journal.ProposalRecord {
	return journal.ProposalRecord{
		ID:            p.ID,
		Symbol:        p.Symbol,
		Side:          string(p.Side),
		Price:         p.Price,
		Quantity:      p.Quantity,
		AllocationPct: p.AllocationPct,
		StopLoss:      p.StopLoss,
		TakeProfit:    p.TakeProfit,
		Strategy:      p.Strategy,
		Reasoning:     p.Reasoning,
		Confidence:    p.Confidence,
		Status:        string(p.Status),
		TradeID:       p.TradeID,
		CreatedAt:     p.CreatedAt,
		ExpiresAt:     p.ExpiresAt,
	}
}

func fromRecord(r journal.ProposalRecord) *Proposal {
	return &Proposal{
		ID:            r.ID,
		Symbol:        r.Symbol,
		Side:          Side(r.Side),
		Price:         r.Price,
		Quantity:      r.Quantity,
		AllocationPct: r.AllocationPct,
		StopLoss:      r.StopLoss,
		TakeProfit:    r.TakeProfit,
		Strategy:      r.Strategy,
		Reasoning:     r.Reasoning,
		Confidence:    r.Confidence,
		Status:        Status(r.Status),
		TradeID:       r.TradeID,
		CreatedAt:     r.CreatedAt,
		ExpiresAt:     r.ExpiresAt,
	}
}
