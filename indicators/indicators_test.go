package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5}

	v, err := SMA(closes, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	// Only the trailing window counts.
	v, err = SMA(closes, 2)
	assert.NoError(t, err)
	assert.InDelta(t, 4.5, v, 1e-9)
}

func TestSMAErrors(t *testing.T) {
	t.Parallel()

	_, err := SMA([]float64{1, 2}, 0)
	assert.Error(t, err)

	_, err = SMA([]float64{1, 2}, 3)
	assert.Error(t, err)
}

func TestRSIAllGains(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 16)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	v, err := RSI(closes, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestRSIAllLosses(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 16)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}

	v, err := RSI(closes, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestRSINeutralOnShortHistory(t *testing.T) {
	t.Parallel()

	v, err := RSI([]float64{1, 2, 3}, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, v, 1e-9)
}

func TestRSIBalanced(t *testing.T) {
	t.Parallel()

	// Alternating equal gains and losses -> RS = 1 -> RSI = 50.
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+1)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}

	v, err := RSI(closes, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, v, 1e-9)
}
