package strategies

import (
	"fmt"

	"github.com/montyhq/monty/indicators"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

// SwingTrend buys established uptrends: fast SMA over slow SMA with the
// price above both. The stop sits below the slow average.
type SwingTrend struct {
	*SwingTrendConfig
}

type SwingTrendConfig struct {
	FastPeriod    int     `json:"fast-period" yaml:"fast-period"`
	SlowPeriod    int     `json:"slow-period" yaml:"slow-period"`
	AllocationPct float64 `json:"allocation-percent" yaml:"allocation-percent"`
	StopLossPct   float64 `json:"stop-loss-percent" yaml:"stop-loss-percent"`
	TakeProfitPct float64 `json:"take-profit-percent" yaml:"take-profit-percent"`
}

func SwingTrendDefaults() *SwingTrendConfig {
	return &SwingTrendConfig{
		FastPeriod:    20,
		SlowPeriod:    50,
		AllocationPct: 20,
		StopLossPct:   7,
		TakeProfitPct: 15,
	}
}

func NewSwingTrend(cfg *SwingTrendConfig) *SwingTrend {
	if cfg == nil {
		cfg = SwingTrendDefaults()
	}
	return &SwingTrend{SwingTrendConfig: cfg}
}

func (s *SwingTrend) Name() string { return "swing-trend" }

func (s *SwingTrend) Evaluate(snap market.Snapshot) *proposal.Draft {
	closes := market.Closes(snap.Candles)
	if len(closes) < s.SlowPeriod {
		return nil
	}

	fast, err := indicators.SMA(closes, s.FastPeriod)
	if err != nil {
		return nil
	}
	slow, err := indicators.SMA(closes, s.SlowPeriod)
	if err != nil {
		return nil
	}
	price := snap.Quote.Price
	if fast <= slow || price <= fast {
		return nil
	}

	return &proposal.Draft{
		Symbol:        snap.Symbol,
		Side:          proposal.Buy,
		Price:         price,
		AllocationPct: s.AllocationPct,
		StopLossPct:   s.StopLossPct,
		TakeProfitPct: s.TakeProfitPct,
		Strategy:      s.Name(),
		Reasoning:     fmt.Sprintf("%d-period SMA %.2f above %d-period %.2f with price leading both", s.FastPeriod, fast, s.SlowPeriod, slow),
		Confidence:    0.6,
	}
}
