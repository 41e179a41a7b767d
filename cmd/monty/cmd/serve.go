package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/montyhq/monty/binance"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/sched"
	"github.com/montyhq/monty/server"
	"github.com/montyhq/monty/strategies"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine, HTTP API, and scheduler",
	Long: `Run the full paper trading stack:

  - websocket price stream feeding the quote cache
  - cron tick that expires proposals and fires stop-loss/take-profit
  - strategy scan that files new proposals
  - HTTP API for reviewing and approving proposals

Stops cleanly on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	quotes := market.NewQuoteStore()
	stream := binance.NewStream(s.cfg.Market.StreamURL, s.cfg.Market.Symbols, quotes, logger)
	go stream.Run(ctx)

	strats := make([]strategies.Strategy, 0, len(s.cfg.Scan.Strategies))
	for _, name := range s.cfg.Scan.Strategies {
		strat, err := strategies.ByName(name)
		if err != nil {
			return err
		}
		strats = append(strats, strat)
	}

	scheduler := sched.New(sched.Config{
		TickSpec: s.cfg.Scan.TickSpec,
		ScanSpec: s.cfg.Scan.ScanSpec,
		Symbols:  s.cfg.Market.Symbols,
	}, s.engine, s.ledger, quotes, s.client, strats, logger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: server.New(s.engine, s.ledger, s.store, logger).Router(),
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
