package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	pl := -25.0
	trades := []TradeRecord{
		{TradeID: "t1", ProposalID: "p1", Symbol: "BTC/USDT", Action: "BUY", Price: 60000, Quantity: 0.1, Value: 6000, Reason: "Proposal", Time: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{TradeID: "t2", Symbol: "BTC/USDT", Action: "SELL", Price: 59750, Quantity: 0.1, Value: 5975, RealizedPL: &pl, Reason: "StopLoss", Time: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, trades))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "trade_id")
	assert.Contains(t, lines[1], "BUY")
	// Opening fill has no realized P&L column value.
	assert.Contains(t, lines[1], ",,")
	assert.Contains(t, lines[2], "-25")
	assert.Contains(t, lines[2], "StopLoss")
}
