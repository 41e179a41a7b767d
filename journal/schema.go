// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS proposals (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	allocation_pct REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	strategy TEXT NOT NULL,
	reasoning TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	trade_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status);

CREATE TABLE IF NOT EXISTS positions (
	symbol TEXT PRIMARY KEY,
	side TEXT NOT NULL,
	entry_price REAL NOT NULL,
	quantity REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	opened_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	proposal_id TEXT NOT NULL DEFAULT '',
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	value REAL NOT NULL,
	realized_pl REAL,
	reason TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);

CREATE TABLE IF NOT EXISTS portfolio (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	cash REAL NOT NULL,
	initial_balance REAL NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	return_pct REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
