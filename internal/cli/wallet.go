package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet key operations",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new keypair and classic address",
	Long: `Generate a fresh ed25519 keypair entirely offline. The seed is printed
exactly once and is never written anywhere else; an account created this
way does not exist on the ledger until it receives its first funding
payment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := wallet.Generate()
		if err != nil {
			return err
		}
		defer km.Seed.Close()

		fmt.Printf("Address:    %s\n", km.Address)
		fmt.Printf("Public key: %s\n", km.PublicKey)
		fmt.Printf("Seed:       %s\n", string(km.Seed.Data()))
		fmt.Println()
		fmt.Println("The seed above is shown once and not stored. Write it down now;")
		fmt.Println("anyone holding it controls the account.")
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletCreateCmd)
	rootCmd.AddCommand(walletCmd)
}
