package cmd

import (
	"fmt"
	"time"

	"github.com/montyhq/monty/binance"
	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/config"
	"github.com/montyhq/monty/engine"
	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/portfolio"
	"github.com/montyhq/monty/proposal"
)

// stack is the assembled engine with everything it depends on.
type stack struct {
	cfg    *config.Config
	store  *journal.SQLite
	ledger *proposal.Ledger
	book   *book.Book
	acct   *portfolio.Accountant
	client *binance.Client
	engine *engine.Engine
}

// buildStack opens the journal and rehydrates the ledger, book, and
// portfolio from it.
func buildStack() (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	ttl, err := cfg.Proposals.ParseTTL()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = proposal.DefaultTTL
	}

	ledger := proposal.NewLedger(store, ttl)
	if err := ledger.Load(); err != nil {
		store.Close()
		return nil, fmt.Errorf("load proposals: %w", err)
	}

	b := book.New(store)
	if err := b.Load(); err != nil {
		store.Close()
		return nil, fmt.Errorf("load positions: %w", err)
	}

	acct, err := portfolio.New(store, cfg.Portfolio.InitialBalance)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	var opts []binance.Option
	if cfg.Market.BaseURL != "" {
		opts = append(opts, binance.WithBaseURL(cfg.Market.BaseURL))
	}
	client := binance.NewClient(opts...)

	eng := engine.New(ledger, b, acct, store, client, logger)
	return &stack{
		cfg:    cfg,
		store:  store,
		ledger: ledger,
		book:   b,
		acct:   acct,
		client: client,
		engine: eng,
	}, nil
}

func (s *stack) Close() error {
	return s.store.Close()
}

func fmtTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
