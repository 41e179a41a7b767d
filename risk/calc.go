// Package risk holds the pure sizing math between a proposal's
// allocation and the quantity the engine actually fills.
package risk

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// QuantityForAllocation converts a cash allocation fraction into a base
// asset quantity at the given price. Returns 0 for a non-positive price
// so callers can reject the proposal instead of dividing by zero.
func QuantityForAllocation(cash, allocationPct, price float64) float64 {
	if price <= 0 || cash <= 0 || allocationPct <= 0 {
		return 0
	}
	return cash * (allocationPct / 100) / price
}

// StopPrice computes the absolute stop-loss level from a percent offset
// below (LONG) or above (SHORT) the entry. A zero pct disables the stop.
func StopPrice(entry, stopPct float64, long bool) float64 {
	if stopPct <= 0 {
		return 0
	}
	if long {
		return entry * (1 - stopPct/100)
	}
	return entry * (1 + stopPct/100)
}

// TakePrice computes the absolute take-profit level from a percent
// offset above (LONG) or below (SHORT) the entry.
func TakePrice(entry, takePct float64, long bool) float64 {
	if takePct <= 0 {
		return 0
	}
	if long {
		return entry * (1 + takePct/100)
	}
	return entry * (1 - takePct/100)
}

// RR returns the reward:risk ratio of an entry/stop/take triple.
func RR(entry, stop, take float64) float64 {
	r := abs(entry - stop)
	if r == 0 {
		return 0
	}
	return abs(take-entry) / r
}
