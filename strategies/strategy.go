// Package strategies holds the scan-time signal generators. A strategy
// looks at a market snapshot and either proposes a trade or passes;
// nothing here executes anything, the output is a draft for the ledger.
package strategies

import (
	"fmt"
	"strings"

	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

// Strategy evaluates one symbol's snapshot. A nil draft means no signal.
type Strategy interface {
	Name() string
	Evaluate(snap market.Snapshot) *proposal.Draft
}

var registry = make(map[string]Strategy)

func Register(s Strategy) {
	registry[s.Name()] = s
}

func Get(name string) Strategy {
	return registry[name]
}

// All returns every registered strategy, in no particular order.
func All() []Strategy {
	out := make([]Strategy, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	return out
}

// ByName resolves a strategy with its default configuration.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rsi-dip", "rsidip":
		return NewRSIDip(RSIDipDefaults()), nil
	case "sentiment-surge":
		return NewSentimentSurge(SentimentSurgeDefaults()), nil
	case "moonshot":
		return NewMoonshot(MoonshotDefaults()), nil
	case "swing-trend", "swing":
		return NewSwingTrend(SwingTrendDefaults()), nil
	default:
		if s := Get(name); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
