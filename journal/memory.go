package journal

import (
	"fmt"
	"sync"
)

// Memory is an in-process Store for tests and ephemeral runs. Nothing
// survives a restart.
type Memory struct {
	mu        sync.Mutex
	trades    []TradeRecord
	proposals map[string]ProposalRecord
	order     []string // proposal insertion order
	positions map[string]PositionRecord
	portfolio *PortfolioRecord
	equity    []EquitySnapshot
}

func NewMemory() *Memory {
	return &Memory{
		proposals: make(map[string]ProposalRecord),
		positions: make(map[string]PositionRecord),
	}
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t)
	return nil
}

func (m *Memory) DeleteTrade(tradeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.trades {
		if t.TradeID == tradeID {
			m.trades = append(m.trades[:i], m.trades[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) ListTrades(limit int) ([]TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trades := m.trades
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	out := make([]TradeRecord, len(trades))
	copy(out, trades)
	return out, nil
}

func (m *Memory) SaveProposal(p ProposalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.proposals[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.proposals[p.ID] = p
	return nil
}

func (m *Memory) GetProposal(id string) (ProposalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return ProposalRecord{}, fmt.Errorf("proposal %q not found", id)
	}
	return p, nil
}

func (m *Memory) ListProposalsByStatus(status string) ([]ProposalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ProposalRecord
	for _, id := range m.order {
		if p := m.proposals[id]; p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) SavePosition(p PositionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.Symbol] = p
	return nil
}

func (m *Memory) DeletePosition(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, symbol)
	return nil
}

func (m *Memory) ListPositions() ([]PositionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PositionRecord, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) SavePortfolio(p PortfolioRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolio = &p
	return nil
}

func (m *Memory) LoadPortfolio() (PortfolioRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.portfolio == nil {
		return PortfolioRecord{}, false, nil
	}
	return *m.portfolio, true, nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }
