package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, proposal_id, symbol, action, price, quantity, value, realized_pl, reason, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.ProposalID, t.Symbol, t.Action,
		t.Price, t.Quantity, t.Value, t.RealizedPL, t.Reason, t.Time,
	)
	return err
}

func (j *SQLite) DeleteTrade(tradeID string) error {
	_, err := j.db.Exec(`DELETE FROM trades WHERE trade_id = ?`, tradeID)
	return err
}

func (j *SQLite) SaveProposal(p ProposalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO proposals
		(id, symbol, side, price, quantity, allocation_pct, stop_loss, take_profit, strategy, reasoning, confidence, status, trade_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			quantity = excluded.quantity,
			status = excluded.status,
			trade_id = excluded.trade_id`,
		p.ID, p.Symbol, p.Side, p.Price, p.Quantity, p.AllocationPct,
		p.StopLoss, p.TakeProfit, p.Strategy, p.Reasoning, p.Confidence,
		p.Status, p.TradeID, p.CreatedAt, p.ExpiresAt,
	)
	return err
}

func (j *SQLite) GetProposal(id string) (ProposalRecord, error) {
	row := j.db.QueryRow(`
		SELECT id, symbol, side, price, quantity, allocation_pct, stop_loss, take_profit, strategy, reasoning, confidence, status, trade_id, created_at, expires_at
		FROM proposals
		WHERE id = ?`, id)

	var p ProposalRecord
	err := row.Scan(
		&p.ID, &p.Symbol, &p.Side, &p.Price, &p.Quantity, &p.AllocationPct,
		&p.StopLoss, &p.TakeProfit, &p.Strategy, &p.Reasoning, &p.Confidence,
		&p.Status, &p.TradeID, &p.CreatedAt, &p.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return ProposalRecord{}, fmt.Errorf("proposal %q not found", id)
		}
		return ProposalRecord{}, err
	}
	return p, nil
}

func (j *SQLite) ListProposalsByStatus(status string) ([]ProposalRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, side, price, quantity, allocation_pct, stop_loss, take_profit, strategy, reasoning, confidence, status, trade_id, created_at, expires_at
		FROM proposals
		WHERE status = ?
		ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProposalRecord
	for rows.Next() {
		var p ProposalRecord
		if err := rows.Scan(
			&p.ID, &p.Symbol, &p.Side, &p.Price, &p.Quantity, &p.AllocationPct,
			&p.StopLoss, &p.TakeProfit, &p.Strategy, &p.Reasoning, &p.Confidence,
			&p.Status, &p.TradeID, &p.CreatedAt, &p.ExpiresAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLite) SavePosition(p PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(symbol, side, entry_price, quantity, stop_loss, take_profit, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			side = excluded.side,
			entry_price = excluded.entry_price,
			quantity = excluded.quantity,
			stop_loss = excluded.stop_loss,
			take_profit = excluded.take_profit,
			opened_at = excluded.opened_at`,
		p.Symbol, p.Side, p.EntryPrice, p.Quantity,
		p.StopLoss, p.TakeProfit, p.OpenedAt,
	)
	return err
}

func (j *SQLite) DeletePosition(symbol string) error {
	_, err := j.db.Exec(`DELETE FROM positions WHERE symbol = ?`, symbol)
	return err
}

func (j *SQLite) ListPositions() ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT symbol, side, entry_price, quantity, stop_loss, take_profit, opened_at
		FROM positions
		ORDER BY opened_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var p PositionRecord
		if err := rows.Scan(
			&p.Symbol, &p.Side, &p.EntryPrice, &p.Quantity,
			&p.StopLoss, &p.TakeProfit, &p.OpenedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLite) SavePortfolio(p PortfolioRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO portfolio (id, cash, initial_balance, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cash = excluded.cash,
			initial_balance = excluded.initial_balance,
			updated_at = excluded.updated_at`,
		p.Cash, p.InitialBalance, p.UpdatedAt,
	)
	return err
}

func (j *SQLite) LoadPortfolio() (PortfolioRecord, bool, error) {
	row := j.db.QueryRow(`SELECT cash, initial_balance, updated_at FROM portfolio WHERE id = 1`)

	var p PortfolioRecord
	err := row.Scan(&p.Cash, &p.InitialBalance, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return PortfolioRecord{}, false, nil
		}
		return PortfolioRecord{}, false, err
	}
	return p, true, nil
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity, return_pct)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.ReturnPct,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
