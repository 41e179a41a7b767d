// Package journal is the durable record of everything the paper trading
// engine does: proposals, open positions, executed trades, the cash
// balance, and periodic equity snapshots.
package journal

import "time"

// TradeRecord is an executed fill. Append-only; RealizedPL is nil for
// opening fills and set for closing fills.
type TradeRecord struct {
	TradeID    string
	ProposalID string // empty for engine-synthesized exit fills
	Symbol     string
	Action     string // BUY / SELL
	Price      float64
	Quantity   float64
	Value      float64 // quantity * price
	RealizedPL *float64
	Reason     string // Proposal, StopLoss, TakeProfit, ManualClose
	Time       time.Time
}

// ProposalRecord mirrors a ledger proposal for persistence. Proposals are
// retained in every terminal state for audit.
type ProposalRecord struct {
	ID            string
	Symbol        string
	Side          string
	Price         float64
	Quantity      float64
	AllocationPct float64
	StopLoss      float64
	TakeProfit    float64
	Strategy      string
	Reasoning     string
	Confidence    float64
	Status        string
	TradeID       string // set once EXECUTED
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// PositionRecord is the durable form of an open position.
type PositionRecord struct {
	Symbol     string
	Side       string // LONG / SHORT
	EntryPrice float64
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
}

// PortfolioRecord is the singleton cash state.
type PortfolioRecord struct {
	Cash           float64
	InitialBalance float64
	UpdatedAt      time.Time
}

// EquitySnapshot records portfolio equity at a point in time.
type EquitySnapshot struct {
	Time      time.Time
	Cash      float64
	Equity    float64
	ReturnPct float64
}

// Store is the persistence contract the core depends on. The engine only
// needs load-all, save, and query-by-status; the storage technology
// behind it is interchangeable.
type Store interface {
	RecordTrade(TradeRecord) error
	// DeleteTrade removes a fill recorded by an execution that failed to
	// commit. History is append-only apart from this rollback path.
	DeleteTrade(tradeID string) error
	// ListTrades returns the most recent trades, newest last. limit <= 0
	// returns everything.
	ListTrades(limit int) ([]TradeRecord, error)

	SaveProposal(ProposalRecord) error
	GetProposal(id string) (ProposalRecord, error)
	ListProposalsByStatus(status string) ([]ProposalRecord, error)

	SavePosition(PositionRecord) error
	DeletePosition(symbol string) error
	ListPositions() ([]PositionRecord, error)

	SavePortfolio(PortfolioRecord) error
	// LoadPortfolio reports ok=false when no portfolio row exists yet.
	LoadPortfolio() (rec PortfolioRecord, ok bool, err error)

	RecordEquity(EquitySnapshot) error

	Close() error
}
