package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
)

var trustlinesCmd = &cobra.Command{
	Use:   "trustlines <address>",
	Short: "List the trust lines of an address",
	Long: `List the issued-currency credit relationships of an address. Well-known
40-digit hex currency codes are shown by their symbol; everything else
is shown verbatim.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, s *session.Session) error {
			lines, err := s.TrustLines(ctx, args[0])
			if errors.Is(err, session.ErrAccountNotFound) {
				fmt.Printf("Account %s is not funded yet (not found on the ledger).\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Println("No trust lines.")
				return nil
			}
			for _, l := range lines {
				fmt.Printf("%-10s balance %-20s limit %-20s issuer %s\n", l.Currency, l.Balance, l.Limit, l.Account)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(trustlinesCmd)
}
