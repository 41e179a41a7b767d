// Package sched drives the periodic work: the engine tick that expires
// proposals and fires exit triggers, and the strategy scan that files
// new proposals. All timing lives here; the engine itself never sleeps.
package sched

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/montyhq/monty/engine"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
	"github.com/montyhq/monty/strategies"
)

// SnapshotSource assembles the full snapshot a strategy evaluates.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, symbol string) (market.Snapshot, error)
}

type Config struct {
	TickSpec string   // cron spec with seconds, e.g. "*/15 * * * * *"
	ScanSpec string   // e.g. "0 */15 * * * *"
	Symbols  []string // universe the scan walks
}

func DefaultConfig() Config {
	return Config{
		TickSpec: "*/15 * * * * *",
		ScanSpec: "0 */15 * * * *",
		Symbols:  []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
	}
}

type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	engine    *engine.Engine
	ledger    *proposal.Ledger
	quotes    *market.QuoteStore
	snapshots SnapshotSource
	strats    []strategies.Strategy
	log       *zap.Logger
}

func New(cfg Config, eng *engine.Engine, ledger *proposal.Ledger, quotes *market.QuoteStore, snapshots SnapshotSource, strats []strategies.Strategy, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		cfg:       cfg,
		engine:    eng,
		ledger:    ledger,
		quotes:    quotes,
		snapshots: snapshots,
		strats:    strats,
		log:       log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.TickSpec, func() { s.tick(ctx) }); err != nil {
		return err
	}
	if len(s.strats) > 0 && s.snapshots != nil {
		if _, err := s.cron.AddFunc(s.cfg.ScanSpec, func() { s.Scan(ctx) }); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("tick", s.cfg.TickSpec),
		zap.String("scan", s.cfg.ScanSpec),
		zap.Strings("symbols", s.cfg.Symbols),
	)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) tick(ctx context.Context) {
	prices := make(map[string]float64)
	for sym, q := range s.quotes.Snapshot() {
		prices[sym] = q.Price
	}
	if err := s.engine.Tick(ctx, time.Now(), prices); err != nil {
		s.log.Warn("tick", zap.Error(err))
	}
}

// Scan walks the symbol universe through every strategy and files a
// proposal for each signal. Duplicate signals are fine: the ledger
// holds them all and the human decides.
func (s *Scheduler) Scan(ctx context.Context) {
	for _, symbol := range s.cfg.Symbols {
		snap, err := s.snapshots.GetSnapshot(ctx, symbol)
		if err != nil {
			s.log.Warn("snapshot", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		for _, strat := range s.strats {
			draft := strat.Evaluate(snap)
			if draft == nil {
				continue
			}
			p, err := s.ledger.Create(*draft)
			if err != nil {
				s.log.Warn("file proposal",
					zap.String("symbol", symbol),
					zap.String("strategy", strat.Name()),
					zap.Error(err),
				)
				continue
			}
			s.log.Info("proposal filed",
				zap.String("proposal_id", p.ID),
				zap.String("symbol", symbol),
				zap.String("strategy", strat.Name()),
				zap.String("side", string(p.Side)),
			)
		}
	}
}
