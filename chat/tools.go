package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/montyhq/monty/engine"
	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/proposal"
)

type funcTool struct {
	name        string
	description string
	schema      map[string]any
	run         func(ctx context.Context, input json.RawMessage) (string, error)
}

func (t *funcTool) Name() string           { return t.name }
func (t *funcTool) Description() string    { return t.description }
func (t *funcTool) Schema() map[string]any { return t.schema }
func (t *funcTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	return t.run(ctx, input)
}

func asJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// EngineTools builds the standard tool set over a running engine.
func EngineTools(eng *engine.Engine, ledger *proposal.Ledger, store journal.Store) []Tool {
	return []Tool{
		proposeTradeTool(eng, ledger),
		pendingProposalsTool(ledger),
		approveProposalTool(eng),
		rejectProposalTool(ledger),
		positionsTool(eng),
		portfolioTool(eng),
		tradeHistoryTool(store),
		quoteTool(eng),
		closePositionTool(eng),
	}
}

func proposeTradeTool(eng *engine.Engine, ledger *proposal.Ledger) Tool {
	return &funcTool{
		name:        "propose_trade",
		description: "Propose a trade for human approval. Nothing executes until a human approves it. Size with either quantity or allocation_pct of available cash.",
		schema: map[string]any{
			"symbol":          prop("string", "Trading pair, e.g. BTCUSDT"),
			"side":            prop("string", "BUY or SELL"),
			"quantity":        prop("number", "Absolute quantity of the base asset (optional)"),
			"allocation_pct":  prop("number", "Percent of available cash to allocate, 0-100 (optional)"),
			"stop_loss_pct":   prop("number", "Stop-loss percent below entry (optional)"),
			"take_profit_pct": prop("number", "Take-profit percent above entry (optional)"),
			"reasoning":       prop("string", "Why this trade, shown to the human approver"),
			"confidence":      prop("number", "Your confidence 0-1"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Symbol        string  `json:"symbol"`
				Side          string  `json:"side"`
				Quantity      float64 `json:"quantity"`
				AllocationPct float64 `json:"allocation_pct"`
				StopLossPct   float64 `json:"stop_loss_pct"`
				TakeProfitPct float64 `json:"take_profit_pct"`
				Reasoning     string  `json:"reasoning"`
				Confidence    float64 `json:"confidence"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}

			q, err := eng.Quotes().GetQuote(ctx, in.Symbol)
			if err != nil {
				return "", err
			}

			p, err := ledger.Create(proposal.Draft{
				Symbol:        in.Symbol,
				Side:          proposal.Side(in.Side),
				Price:         q.Price,
				Quantity:      in.Quantity,
				AllocationPct: in.AllocationPct,
				StopLossPct:   in.StopLossPct,
				TakeProfitPct: in.TakeProfitPct,
				Strategy:      "chat",
				Reasoning:     in.Reasoning,
				Confidence:    in.Confidence,
			})
			if err != nil {
				return "", err
			}
			return asJSON(map[string]any{
				"proposal_id": p.ID,
				"status":      p.Status,
				"price":       p.Price,
				"expires_at":  p.ExpiresAt,
			})
		},
	}
}

func pendingProposalsTool(ledger *proposal.Ledger) Tool {
	return &funcTool{
		name:        "get_pending_proposals",
		description: "List proposals awaiting human approval.",
		schema:      map[string]any{},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			pending, err := ledger.Pending()
			if err != nil {
				return "", err
			}
			return asJSON(pending)
		},
	}
}

func approveProposalTool(eng *engine.Engine) Tool {
	return &funcTool{
		name:        "approve_proposal",
		description: "Approve a pending proposal on the user's explicit instruction and execute it at the current market price. Only call this when the user has clearly said to approve.",
		schema: map[string]any{
			"proposal_id": prop("string", "ID of the proposal to approve"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				ProposalID string `json:"proposal_id"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			rec, err := eng.Approve(ctx, in.ProposalID)
			if err != nil {
				return "", err
			}
			return asJSON(rec)
		},
	}
}

func rejectProposalTool(ledger *proposal.Ledger) Tool {
	return &funcTool{
		name:        "reject_proposal",
		description: "Reject a pending proposal on the user's instruction.",
		schema: map[string]any{
			"proposal_id": prop("string", "ID of the proposal to reject"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				ProposalID string `json:"proposal_id"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			if err := ledger.Reject(in.ProposalID); err != nil {
				return "", err
			}
			return fmt.Sprintf("proposal %s rejected", in.ProposalID), nil
		},
	}
}

func positionsTool(eng *engine.Engine) Tool {
	return &funcTool{
		name:        "get_positions",
		description: "List open positions marked to the latest price.",
		schema:      map[string]any{},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			s, err := eng.Summarize(ctx)
			if err != nil {
				return "", err
			}
			return asJSON(s.Positions)
		},
	}
}

func portfolioTool(eng *engine.Engine) Tool {
	return &funcTool{
		name:        "get_portfolio",
		description: "Current cash, equity, and total return of the paper portfolio.",
		schema:      map[string]any{},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			s, err := eng.Summarize(ctx)
			if err != nil {
				return "", err
			}
			return asJSON(s)
		},
	}
}

func tradeHistoryTool(store journal.Store) Tool {
	return &funcTool{
		name:        "get_trade_history",
		description: "Executed trades, oldest first. Closes carry realized P&L and the exit reason.",
		schema: map[string]any{
			"limit": prop("integer", "Return only the most recent N trades (optional)"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Limit int `json:"limit"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			trades, err := store.ListTrades(in.Limit)
			if err != nil {
				return "", err
			}
			return asJSON(trades)
		},
	}
}

func quoteTool(eng *engine.Engine) Tool {
	return &funcTool{
		name:        "get_quote",
		description: "Latest price and 24h stats for a symbol.",
		schema: map[string]any{
			"symbol": prop("string", "Trading pair, e.g. BTCUSDT"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Symbol string `json:"symbol"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			q, err := eng.Quotes().GetQuote(ctx, in.Symbol)
			if err != nil {
				return "", err
			}
			return asJSON(q)
		},
	}
}

func closePositionTool(eng *engine.Engine) Tool {
	return &funcTool{
		name:        "close_position",
		description: "Fully close an open position at the current market price, on the user's explicit instruction.",
		schema: map[string]any{
			"symbol": prop("string", "Symbol of the position to close"),
		},
		run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct {
				Symbol string `json:"symbol"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			rec, err := eng.Close(ctx, in.Symbol)
			if err != nil {
				return "", err
			}
			return asJSON(rec)
		},
	}
}
