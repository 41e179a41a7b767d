package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/binance"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <symbol>",
	Short: "Show the latest price for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	// No journal needed for a quote.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var opts []binance.Option
	if cfg.Market.BaseURL != "" {
		opts = append(opts, binance.WithBaseURL(cfg.Market.BaseURL))
	}

	q, err := binance.NewClient(opts...).GetQuote(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  %.2f  (%+.2f%% 24h, volume %.0f)\n", q.Symbol, q.Price, q.Change24h, q.Volume24h)
	return nil
}
