package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/engine"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show cash, equity, and open positions",
	Args:  cobra.NoArgs,
	RunE:  runPortfolio,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List open positions marked to the latest price",
	Args:  cobra.NoArgs,
	RunE:  runPositions,
}

var closeCmd = &cobra.Command{
	Use:   "close <symbol>",
	Short: "Close an open position at the current price",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(closeCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.engine.Summarize(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("cash:    %12.2f\n", summary.Cash)
	fmt.Printf("equity:  %12.2f\n", summary.Equity)
	fmt.Printf("return:  %+11.2f%%  (from %.2f)\n", summary.ReturnPct, summary.InitialBalance)
	if len(summary.Positions) > 0 {
		fmt.Println()
		printPositions(summary.Positions)
	}
	return nil
}

func runPositions(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.engine.Summarize(cmd.Context())
	if err != nil {
		return err
	}
	if len(summary.Positions) == 0 {
		fmt.Println("no open positions")
		return nil
	}
	printPositions(summary.Positions)
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.engine.Close(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	pl := 0.0
	if rec.RealizedPL != nil {
		pl = *rec.RealizedPL
	}
	fmt.Printf("closed %s: %.8g @ %.2f, realized P&L %+.2f\n", rec.Symbol, rec.Quantity, rec.Price, pl)
	fmt.Printf("cash: %.2f\n", s.acct.Cash())
	return nil
}

func printPositions(positions []engine.PositionView) {
	fmt.Printf("%-10s %-5s %12s %12s %12s %12s\n",
		"SYMBOL", "SIDE", "QTY", "ENTRY", "MARK", "UNREAL P&L")
	for _, p := range positions {
		fmt.Printf("%-10s %-5s %12.8g %12.2f %12.2f %+12.2f\n",
			p.Symbol, p.Side, p.Quantity, p.EntryPrice, p.MarkPrice, p.UnrealizedPL)
	}
}
