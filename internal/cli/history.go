package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/amount"
	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
	"github.com/polysola/copilotxrp/internal/txnorm"
)

var (
	historyLimit   int
	historyForward bool
)

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "List recent transactions of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, s *session.Session) error {
			txs, err := s.History(ctx, args[0], historyLimit, historyForward)
			if errors.Is(err, session.ErrAccountNotFound) {
				fmt.Printf("Account %s is not funded yet (not found on the ledger).\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				fmt.Println("No transactions.")
				return nil
			}
			for _, tx := range txs {
				printTransaction(tx)
			}
			return nil
		})
	},
}

func printTransaction(tx txnorm.Transaction) {
	dir := ""
	switch tx.Direction {
	case txnorm.DirectionOut:
		dir = "sent"
	case txnorm.DirectionIn:
		dir = "received"
	}

	fmt.Printf("%s  %s", tx.Hash, tx.TypeName)
	if dir != "" {
		fmt.Printf(" (%s)", dir)
	}
	fmt.Println()
	if tx.Amount != nil {
		fmt.Printf("    amount:   %s\n", formatAmount(tx))
	}
	if tx.Fee != "" {
		fmt.Printf("    fee:      %s\n", tx.Fee)
	}
	if tx.From != "" {
		fmt.Printf("    from:     %s\n", tx.From)
	}
	if tx.To != "" {
		fmt.Printf("    to:       %s\n", tx.To)
	}
	if tx.Timestamp != "" {
		fmt.Printf("    date:     %s\n", tx.Timestamp)
	}
	fmt.Printf("    status:   %s\n", tx.Status)
	if tx.Explorer != "" {
		fmt.Printf("    explorer: %s\n", tx.Explorer)
	}
}

func formatAmount(tx txnorm.Transaction) string {
	display, err := amount.Format(*tx.Amount)
	if err != nil {
		return "?"
	}
	return display
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum transactions to fetch (0 uses the configured default)")
	historyCmd.Flags().BoolVar(&historyForward, "forward", false, "list oldest first instead of newest first")
	rootCmd.AddCommand(historyCmd)
}
