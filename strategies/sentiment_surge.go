package strategies

import (
	"fmt"
	"strings"

	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

// SentimentSurge buys when news sentiment is strongly bullish and the
// tape agrees, i.e. the 24h change is already positive.
type SentimentSurge struct {
	*SentimentSurgeConfig
}

type SentimentSurgeConfig struct {
	MinConfidence float64 `json:"min-confidence" yaml:"min-confidence"`
	MinChange24h  float64 `json:"min-change-24h" yaml:"min-change-24h"`
	AllocationPct float64 `json:"allocation-percent" yaml:"allocation-percent"`
	StopLossPct   float64 `json:"stop-loss-percent" yaml:"stop-loss-percent"`
	TakeProfitPct float64 `json:"take-profit-percent" yaml:"take-profit-percent"`
}

func SentimentSurgeDefaults() *SentimentSurgeConfig {
	return &SentimentSurgeConfig{
		MinConfidence: 0.7,
		MinChange24h:  1.0,
		AllocationPct: 10,
		StopLossPct:   4,
		TakeProfitPct: 8,
	}
}

func NewSentimentSurge(cfg *SentimentSurgeConfig) *SentimentSurge {
	if cfg == nil {
		cfg = SentimentSurgeDefaults()
	}
	return &SentimentSurge{SentimentSurgeConfig: cfg}
}

func (s *SentimentSurge) Name() string { return "sentiment-surge" }

func (s *SentimentSurge) Evaluate(snap market.Snapshot) *proposal.Draft {
	sent := snap.Sentiment
	if !strings.EqualFold(sent.Direction, "bullish") {
		return nil
	}
	if sent.Confidence < s.MinConfidence {
		return nil
	}
	if snap.Quote.Change24h < s.MinChange24h {
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
		Reasoning:     fmt.Sprintf("bullish sentiment at %.0f%% confidence, up %.1f%% on the day: %s", sent.Confidence*100, snap.Quote.Change24h, sent.Summary),
		Confidence:    sent.Confidence,
	}
}
