// journal/csv.go
package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteTradesCSV writes trade history in CSV form, header first.
func WriteTradesCSV(w io.Writer, trades []TradeRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"trade_id", "proposal_id", "symbol", "action", "price", "quantity", "value", "realized_pl", "reason", "time"}); err != nil {
		return err
	}

	for _, t := range trades {
		pl := ""
		if t.RealizedPL != nil {
			pl = f(*t.RealizedPL)
		}
		if err := cw.Write([]string{
			t.TradeID,
			t.ProposalID,
			t.Symbol,
			t.Action,
			f(t.Price),
			f(t.Quantity),
			f(t.Value),
			pl,
			t.Reason,
			t.Time.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportTradesCSV dumps a store's trade history to a file.
func ExportTradesCSV(path string, store Store) error {
	trades, err := store.ListTrades(0)
	if err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	return WriteTradesCSV(fh, trades)
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
