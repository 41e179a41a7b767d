package market

// Sentiment summarizes aggregated news sentiment for a market. Supplied
// by an external news service; NEUTRAL with zero confidence when absent.
type Sentiment struct {
	Direction  string // BULLISH, BEARISH, NEUTRAL
	Confidence float64
	Summary    string
}

// Snapshot bundles everything a strategy needs to evaluate one symbol.
// Strategies never fetch data themselves.
type Snapshot struct {
	Symbol    string
	Quote     Quote
	Candles   []Candle // oldest first
	Sentiment Sentiment
}
