package strategies

import (
	"fmt"

	"github.com/montyhq/monty/indicators"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

// RSIDip buys oversold pullbacks: RSI under the threshold with the
// price still above the longer moving average.
type RSIDip struct {
	*RSIDipConfig
}

type RSIDipConfig struct {
	Period        int     `json:"period" yaml:"period"`
	Oversold      float64 `json:"oversold" yaml:"oversold"`
	TrendPeriod   int     `json:"trend-period" yaml:"trend-period"`
	AllocationPct float64 `json:"allocation-percent" yaml:"allocation-percent"`
	StopLossPct   float64 `json:"stop-loss-percent" yaml:"stop-loss-percent"`
	TakeProfitPct float64 `json:"take-profit-percent" yaml:"take-profit-percent"`
}

func RSIDipDefaults() *RSIDipConfig {
	return &RSIDipConfig{
		Period:        14,
		Oversold:      30,
		TrendPeriod:   50,
		AllocationPct: 15,
		StopLossPct:   5,
		TakeProfitPct: 10,
	}
}

func NewRSIDip(cfg *RSIDipConfig) *RSIDip {
	if cfg == nil {
		cfg = RSIDipDefaults()
	}
	return &RSIDip{RSIDipConfig: cfg}
}

func (s *RSIDip) Name() string { return "rsi-dip" }

func (s *RSIDip) Evaluate(snap market.Snapshot) *proposal.Draft {
	closes := market.Closes(snap.Candles)
	if len(closes) < s.TrendPeriod {
		return nil
	}

	rsi, err := indicators.RSI(closes, s.Period)
	if err != nil || rsi >= s.Oversold {
		return nil
	}
	trend, err := indicators.SMA(closes, s.TrendPeriod)
	if err != nil || snap.Quote.Price <= trend {
		// Oversold inside a downtrend is a falling knife, not a dip.
		return nil
	}

	return &proposal.Draft{
		Symbol:        snap.Symbol,
		Side:          proposal.Buy,
		Price:         snap.Quote.Price,
		AllocationPct: s.AllocationPct,
		StopLossPct:   s.StopLossPct,
		TakeProfitPct: s.TakeProfitPct,
		Strategy:      s.Name(),
		Reasoning:     fmt.Sprintf("RSI %.1f below %.0f with price above the %d-period average", rsi, s.Oversold, s.TrendPeriod),
		Confidence:    (s.Oversold - rsi) / s.Oversold,
	}
}
