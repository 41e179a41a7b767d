package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantityForAllocation(t *testing.T) {
	t.Parallel()

	// 5% of $10,000 at $50,000/BTC -> 0.01 BTC
	qty := QuantityForAllocation(10000, 5, 50000)
	assert.InDelta(t, 0.01, qty, 1e-12)

	assert.Zero(t, QuantityForAllocation(10000, 5, 0))
	assert.Zero(t, QuantityForAllocation(0, 5, 50000))
	assert.Zero(t, QuantityForAllocation(10000, 0, 50000))
}

func TestStopAndTakePrices(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 95.0, StopPrice(100, 5, true), 1e-9)
	assert.InDelta(t, 105.0, StopPrice(100, 5, false), 1e-9)
	assert.InDelta(t, 110.0, TakePrice(100, 10, true), 1e-9)
	assert.InDelta(t, 90.0, TakePrice(100, 10, false), 1e-9)

	assert.Zero(t, StopPrice(100, 0, true))
	assert.Zero(t, TakePrice(100, 0, true))
}

func TestRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RR(100, 95, 110), 1e-9)
	assert.Zero(t, RR(100, 100, 110))
}
