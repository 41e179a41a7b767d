package engine

import (
	"context"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/market"
)

// PositionView is an open position marked to the latest quote.
type PositionView struct {
	book.Position
	MarkPrice    float64 `json:"mark_price"`
	UnrealizedPL float64 `json:"unrealized_pl"`
}

// Summary is a point-in-time portfolio snapshot.
type Summary struct {
	Cash           float64        `json:"cash"`
	InitialBalance float64        `json:"initial_balance"`
	Equity         float64        `json:"equity"`
	ReturnPct      float64        `json:"return_pct"`
	Positions      []PositionView `json:"positions"`
}

// Summarize marks every open position to a fresh quote and reports the
// resulting equity. Positions whose quote is unavailable are shown at
// their entry price with zero unrealized P&L.
func (e *Engine) Summarize(ctx context.Context) (Summary, error) {
	st := e.acct.State()
	s := Summary{
		Cash:           st.Cash,
		InitialBalance: st.InitialBalance,
		Equity:         st.Cash,
	}

	for _, pos := range e.book.List() {
		view := PositionView{Position: pos, MarkPrice: pos.EntryPrice}
		if q, err := e.quotes.GetQuote(ctx, pos.Symbol); err == nil {
			view.MarkPrice = q.Price
			view.UnrealizedPL = pos.UnrealizedPL(q.Price)
		}
		s.Equity += view.MarkPrice * pos.Quantity
		s.Positions = append(s.Positions, view)
	}

	if st.InitialBalance > 0 {
		s.ReturnPct = (s.Equity - st.InitialBalance) / st.InitialBalance * 100
	}
	return s, nil
}

// Quotes exposes the engine's quote source for read-only callers.
func (e *Engine) Quotes() market.QuoteSource { return e.quotes }
