package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show the XRP balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, s *session.Session) error {
			balance, err := s.Balance(ctx, args[0])
			if errors.Is(err, session.ErrAccountNotFound) {
				fmt.Printf("Account %s is not funded yet (not found on the ledger).\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Balance of %s: %s\n", args[0], balance)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
