package strategies

import (
	"fmt"

	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

// Moonshot chases strong 24h breakouts with a small allocation, a wide
// take-profit, and a tight stop. Most of these lose a little; the point
// is the occasional one that keeps going.
type Moonshot struct {
	*MoonshotConfig
}

type MoonshotConfig struct {
	MinChange24h  float64 `json:"min-change-24h" yaml:"min-change-24h"`
	MinVolume24h  float64 `json:"min-volume-24h" yaml:"min-volume-24h"`
	AllocationPct float64 `json:"allocation-percent" yaml:"allocation-percent"`
	StopLossPct   float64 `json:"stop-loss-percent" yaml:"stop-loss-percent"`
	TakeProfitPct float64 `json:"take-profit-percent" yaml:"take-profit-percent"`
}

func MoonshotDefaults() *MoonshotConfig {
	return &MoonshotConfig{
		MinChange24h:  8,
		MinVolume24h:  1_000_000,
		AllocationPct: 5,
		StopLossPct:   6,
		TakeProfitPct: 25,
	}
}

func NewMoonshot(cfg *MoonshotConfig) *Moonshot {
	if cfg == nil {
		cfg = MoonshotDefaults()
	}
	return &Moonshot{MoonshotConfig: cfg}
}

func (s *Moonshot) Name() string { return "moonshot" }

func (s *Moonshot) Evaluate(snap market.Snapshot) *proposal.Draft {
	q := snap.Quote
	if q.Change24h < s.MinChange24h || q.Volume24h < s.MinVolume24h {
		return nil
	}

	return &proposal.Draft{
		Symbol:        snap.Symbol,
		Side:          proposal.Buy,
		Price:         q.Price,
		AllocationPct: s.AllocationPct,
		StopLossPct:   s.StopLossPct,
		TakeProfitPct: s.TakeProfitPct,
		Strategy:      s.Name(),
		Reasoning:     fmt.Sprintf("up %.1f%% in 24h on %.0f volume", q.Change24h, q.Volume24h),
		Confidence:    0.4,
	}
}
