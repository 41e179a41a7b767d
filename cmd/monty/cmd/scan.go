package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/sched"
	"github.com/montyhq/monty/strategies"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one strategy scan and file any proposals",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	before, err := s.ledger.Pending()
	if err != nil {
		return err
	}

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
	}, s.engine, s.ledger, market.NewQuoteStore(), s.client, strats, logger)
	scheduler.Scan(cmd.Context())

	after, err := s.ledger.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("scan complete: %d new proposals (%d pending total)\n", len(after)-len(before), len(after))
	return nil
}
