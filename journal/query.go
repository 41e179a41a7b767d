package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, proposal_id, symbol, action, price, quantity, value, realized_pl, reason, time
		FROM trades
		WHERE trade_id = ?`, tradeID)

	var rec TradeRecord
	err := row.Scan(
		&rec.TradeID, &rec.ProposalID, &rec.Symbol, &rec.Action,
		&rec.Price, &rec.Quantity, &rec.Value, &rec.RealizedPL,
		&rec.Reason, &rec.Time,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns the most recent trades, oldest first. limit <= 0
// returns everything.
func (j *SQLite) ListTrades(limit int) ([]TradeRecord, error) {
	q := `
		SELECT trade_id, proposal_id, symbol, action, price, quantity, value, realized_pl, reason, time
		FROM trades
		ORDER BY time ASC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		// Take the newest N, then present oldest first.
		q = `
			SELECT trade_id, proposal_id, symbol, action, price, quantity, value, realized_pl, reason, time
			FROM (
				SELECT * FROM trades ORDER BY time DESC LIMIT ?
			)
			ORDER BY time ASC`
		rows, err = j.db.Query(q, limit)
	} else {
		rows, err = j.db.Query(q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, proposal_id, symbol, action, price, quantity, value, realized_pl, reason, time
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]TradeRecord, error) {
	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID, &rec.ProposalID, &rec.Symbol, &rec.Action,
			&rec.Price, &rec.Quantity, &rec.Value, &rec.RealizedPL,
			&rec.Reason, &rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, equity, return_pct
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Cash, &e.Equity, &e.ReturnPct); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
