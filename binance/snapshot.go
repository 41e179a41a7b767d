package binance

import (
	"context"

	"github.com/montyhq/monty/market"
)

// SnapshotInterval is the kline interval strategies evaluate on.
const SnapshotInterval = "1h"

// SnapshotDepth is how many candles a snapshot carries.
const SnapshotDepth = 100

// GetSnapshot bundles the quote and recent candles for one symbol.
// Sentiment is left empty; a sentiment provider can decorate it.
func (c *Client) GetSnapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	q, err := c.GetQuote(ctx, symbol)
	if err != nil {
		return market.Snapshot{}, err
	}
	candles, err := c.GetCandles(ctx, symbol, SnapshotInterval, SnapshotDepth)
	if err != nil {
		return market.Snapshot{}, err
	}
	return market.Snapshot{
		Symbol:  q.Symbol,
		Quote:   q,
		Candles: candles,
	}, nil
}
