package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

func candles(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return out
}

// flatThenDip builds n flat closes at base followed by a shallow slide.
// Every recent change is a loss, so RSI reads deeply oversold, while the
// slide is small enough that the long average barely moves.
func flatThenDip(n int, base float64) []market.Candle {
	closes := make([]float64, 0, n)
	for i := 0; i < n-6; i++ {
		closes = append(closes, base)
	}
	p := base
	for i := 0; i < 6; i++ {
		p -= 0.01
		closes = append(closes, p)
	}
	return candles(closes...)
}

func TestRSIDipSignals(t *testing.T) {
	s := NewRSIDip(nil)

	snap := market.Snapshot{
		Symbol:  "BTCUSDT",
		Candles: flatThenDip(60, 100),
	}
	snap.Quote = market.Quote{Symbol: "BTCUSDT", Price: 100.2}

	d := s.Evaluate(snap)
	require.NotNil(t, d)
	assert.Equal(t, proposal.Buy, d.Side)
	assert.Equal(t, "rsi-dip", d.Strategy)
	assert.Equal(t, 15.0, d.AllocationPct)
}

func TestRSIDipPassesInDowntrend(t *testing.T) {
	s := NewRSIDip(nil)

	snap := market.Snapshot{Symbol: "BTCUSDT", Candles: flatThenDip(60, 100)}
	// Price below the trend average: same RSI, no signal.
	snap.Quote = market.Quote{Symbol: "BTCUSDT", Price: 90}

	assert.Nil(t, s.Evaluate(snap))
}

func TestRSIDipNeedsHistory(t *testing.T) {
	s := NewRSIDip(nil)
	snap := market.Snapshot{Symbol: "BTCUSDT", Candles: candles(100, 99, 98)}
	snap.Quote = market.Quote{Price: 98}
	assert.Nil(t, s.Evaluate(snap))
}

func TestSentimentSurge(t *testing.T) {
	s := NewSentimentSurge(nil)

	snap := market.Snapshot{
		Symbol:    "ETHUSDT",
		Quote:     market.Quote{Symbol: "ETHUSDT", Price: 2500, Change24h: 3.2},
		Sentiment: market.Sentiment{Direction: "bullish", Confidence: 0.85, Summary: "ETF inflows"},
	}

	d := s.Evaluate(snap)
	require.NotNil(t, d)
	assert.Equal(t, 0.85, d.Confidence)
	assert.Contains(t, d.Reasoning, "ETF inflows")

	snap.Sentiment.Confidence = 0.5
	assert.Nil(t, s.Evaluate(snap))

	snap.Sentiment.Confidence = 0.85
	snap.Sentiment.Direction = "bearish"
	assert.Nil(t, s.Evaluate(snap))

	snap.Sentiment.Direction = "bullish"
	snap.Quote.Change24h = -1
	assert.Nil(t, s.Evaluate(snap))
}

func TestMoonshot(t *testing.T) {
	s := NewMoonshot(nil)

	snap := market.Snapshot{
		Symbol: "SOLUSDT",
		Quote:  market.Quote{Symbol: "SOLUSDT", Price: 180, Change24h: 12, Volume24h: 5_000_000},
	}

	d := s.Evaluate(snap)
	require.NotNil(t, d)
	assert.Equal(t, 5.0, d.AllocationPct)
	assert.Equal(t, 25.0, d.TakeProfitPct)

	snap.Quote.Volume24h = 10_000
	assert.Nil(t, s.Evaluate(snap))

	snap.Quote.Volume24h = 5_000_000
	snap.Quote.Change24h = 2
	assert.Nil(t, s.Evaluate(snap))
}

func TestSwingTrend(t *testing.T) {
	s := NewSwingTrend(nil)

	// Steadily rising closes keep the fast average above the slow one.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	snap := market.Snapshot{Symbol: "BTCUSDT", Candles: candles(closes...)}
	snap.Quote = market.Quote{Price: 165}

	d := s.Evaluate(snap)
	require.NotNil(t, d)
	assert.Equal(t, "swing-trend", d.Strategy)

	// Price under the fast average: trend intact but entry is late.
	snap.Quote.Price = 130
	assert.Nil(t, s.Evaluate(snap))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"rsi-dip", "sentiment-surge", "moonshot", "swing-trend"} {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
	_, err := ByName("does-not-exist")
	assert.Error(t, err)
}
