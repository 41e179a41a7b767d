package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/proposal"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List proposals awaiting approval",
	Args:  cobra.NoArgs,
	RunE:  runPending,
}

var approveCmd = &cobra.Command{
	Use:   "approve <proposal-id>",
	Short: "Approve a proposal and execute it at the current price",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <proposal-id>",
	Short: "Reject a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

var rejectAllCmd = &cobra.Command{
	Use:   "reject-all",
	Short: "Reject every pending proposal",
	Args:  cobra.NoArgs,
	RunE:  runRejectAll,
}

var proposeCmd = &cobra.Command{
	Use:   "propose <symbol>",
	Short: "File a trade proposal by hand",
	Args:  cobra.ExactArgs(1),
	RunE:  runPropose,
}

var (
	proposeSide      string
	proposeQty       float64
	proposeAlloc     float64
	proposeStopPct   float64
	proposeTakePct   float64
	proposeReasoning string
)

func init() {
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(rejectAllCmd)
	rootCmd.AddCommand(proposeCmd)

	proposeCmd.Flags().StringVarP(&proposeSide, "side", "s", "BUY", "BUY or SELL")
	proposeCmd.Flags().Float64VarP(&proposeQty, "quantity", "q", 0, "absolute quantity")
	proposeCmd.Flags().Float64VarP(&proposeAlloc, "alloc", "a", 0, "percent of cash to allocate")
	proposeCmd.Flags().Float64Var(&proposeStopPct, "stop", 0, "stop-loss percent")
	proposeCmd.Flags().Float64Var(&proposeTakePct, "take", 0, "take-profit percent")
	proposeCmd.Flags().StringVarP(&proposeReasoning, "why", "w", "", "reasoning shown at approval time")
}

func runPending(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	pending, err := s.ledger.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("no pending proposals")
		return nil
	}

	for _, p := range pending {
		size := fmt.Sprintf("%.8g", p.Quantity)
		if p.Quantity <= 0 {
			size = fmt.Sprintf("%.1f%% of cash", p.AllocationPct)
		}
		fmt.Printf("%s  %-4s %-10s %s @ %.2f  (SL %.2f  TP %.2f)\n",
			p.ID, p.Side, p.Symbol, size, p.Price, p.StopLoss, p.TakeProfit)
		fmt.Printf("    strategy=%s  expires=%s\n", p.Strategy, fmtTime(p.ExpiresAt))
		if p.Reasoning != "" {
			fmt.Printf("    %s\n", p.Reasoning)
		}
	}
	return nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.engine.Approve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("executed: %s %s %.8g @ %.2f (value %.2f)\n",
		rec.Action, rec.Symbol, rec.Quantity, rec.Price, rec.Value)
	fmt.Printf("cash: %.2f\n", s.acct.Cash())
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ledger.Reject(args[0]); err != nil {
		return err
	}
	fmt.Printf("rejected %s\n", args[0])
	return nil
}

func runRejectAll(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.ledger.RejectAllPending()
	if err != nil {
		return err
	}
	fmt.Printf("rejected %d proposals\n", n)
	return nil
}

func runPropose(cmd *cobra.Command, args []string) error {
	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	symbol := args[0]
	q, err := s.client.GetQuote(cmd.Context(), symbol)
	if err != nil {
		return err
	}

	p, err := s.ledger.Create(proposal.Draft{
		Symbol:        symbol,
		Side:          proposal.Side(proposeSide),
		Price:         q.Price,
		Quantity:      proposeQty,
		AllocationPct: proposeAlloc,
		StopLossPct:   proposeStopPct,
		TakeProfitPct: proposeTakePct,
		Strategy:      "manual",
		Reasoning:     proposeReasoning,
	})
	if err != nil {
		return err
	}
	fmt.Printf("filed %s: %s %s @ %.2f, expires %s\n", p.ID, p.Side, p.Symbol, p.Price, fmtTime(p.ExpiresAt))
	return nil
}
