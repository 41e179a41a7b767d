// Package book tracks open positions: one per symbol, mutated only by
// the execution engine, marked to market with quotes the caller supplies.
package book

import "time"

type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Trigger is the outcome of an exit-level check. The non-none values
// double as the journal reason for the close they force.
type Trigger string

const (
	TriggerNone       Trigger = ""
	TriggerStopLoss   Trigger = "StopLoss"
	TriggerTakeProfit Trigger = "TakeProfit"
)

// Position is an open holding. StopLoss/TakeProfit of zero mean the
// level is unset.
type Position struct {
	Symbol     string
	Side       Side
	EntryPrice float64
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
}

// UnrealizedPL marks the position against a current price.
func (p *Position) UnrealizedPL(price float64) float64 {
	if p.Side == Short {
		return (p.EntryPrice - price) * p.Quantity
	}
	return (price - p.EntryPrice) * p.Quantity
}

// CheckExit reports which exit level the price has crossed, if any.
// Stop-loss wins when a single price crosses both levels. Pure: repeated
// calls before the resulting close lands return the same answer.
func (p *Position) CheckExit(price float64) Trigger {
	if p.Side == Long {
		if p.StopLoss > 0 && price <= p.StopLoss {
			return TriggerStopLoss
		}
		if p.TakeProfit > 0 && price >= p.TakeProfit {
			return TriggerTakeProfit
		}
		return TriggerNone
	}

	// Short mirrors the comparisons.
	if p.StopLoss > 0 && price >= p.StopLoss {
		return TriggerStopLoss
	}
	if p.TakeProfit > 0 && price <= p.TakeProfit {
		return TriggerTakeProfit
	}
	return TriggerNone
}

// TriggerPrice returns the level a trigger closes at. Closes fill at the
// trigger level, not the live quote, so behavior is deterministic.
func (p *Position) TriggerPrice(trig Trigger) float64 {
	switch trig {
	case TriggerStopLoss:
		return p.StopLoss
	case TriggerTakeProfit:
		return p.TakeProfit
	}
	return 0
}
