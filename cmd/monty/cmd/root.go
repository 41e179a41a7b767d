package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/montyhq/monty/config"
)

var rootCmd = &cobra.Command{
	Use:   "monty",
	Short: "A human-in-the-loop crypto paper trading engine",
	Long: `Monty is a crypto paper trading engine: real market prices, fake money.

Strategies and the chat assistant file trade proposals; nothing executes
until a human approves it. Approved trades fill at the live price against
a simulated portfolio with stop-loss and take-profit handling.

Common commands:
  monty serve       - run the engine, API, and scheduler
  monty pending     - list proposals awaiting approval
  monty approve     - approve and execute a proposal
  monty portfolio   - show cash, equity, and open positions`,
}

var (
	cfgPath string
	verbose bool
	logger  *zap.Logger
)

// Execute runs the root command.
func Execute() error {
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initLogger() {
	// .env is optional; real env vars win.
	godotenv.Load()

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}
