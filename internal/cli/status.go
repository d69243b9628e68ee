package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
	"github.com/polysola/copilotxrp/internal/telemetry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show node status and the current XRP market quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, s *session.Session) error {
			telemetry.New(s, cfg, newLogger()).Refresh(ctx)

			snap := s.Snapshot()
			fmt.Printf("Session:  %s (%s)\n", snap.Status, cfg.Node.URL)
			if snap.Network != nil {
				fmt.Printf("Node:     state=%s validated_ledger=%d reserve_base=%.6g XRP\n",
					snap.Network.ServerState, snap.Network.ValidatedLedgerSeq, snap.Network.ReserveBaseXRP)
			} else {
				fmt.Println("Node:     status unavailable")
			}
			if snap.Market != nil {
				fmt.Printf("Market:   $%.4f (%+.2f%% 24h)\n", snap.Market.PriceUSD, snap.Market.Change24hPct)
			} else {
				fmt.Println("Market:   quote unavailable")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
