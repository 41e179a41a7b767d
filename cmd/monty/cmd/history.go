package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show executed trades",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export trade history to CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "show only the most recent N trades (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	trades, err := s.store.ListTrades(historyLimit)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("no trades yet")
		return nil
	}

	for _, t := range trades {
		line := fmt.Sprintf("%s  %-4s %-10s %.8g @ %.2f  value %.2f",
			fmtTime(t.Time), t.Action, t.Symbol, t.Quantity, t.Price, t.Value)
		if t.RealizedPL != nil {
			line += fmt.Sprintf("  P&L %+.2f (%s)", *t.RealizedPL, t.Reason)
		}
		fmt.Println(line)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := journal.ExportTradesCSV(args[0], s.store); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
