package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
	"github.com/polysola/copilotxrp/internal/wallet"
)

// secretEnvVar supplies the wallet seed non-interactively. The seed is
// never accepted as a command-line argument: argv leaks into process
// listings and shell history.
const secretEnvVar = "XRPTOOL_WALLET_SECRET"

var sendCmd = &cobra.Command{
	Use:   "send <from> <to> <amount-xrp>",
	Short: "Sign and submit an XRP payment, waiting for validation",
	Long: `Sign a native XRP payment with the wallet seed and submit it, then wait
until the transaction appears in a validated ledger or the wait window
expires. The seed is read from the ` + secretEnvVar + ` environment
variable, or prompted on stdin when the variable is unset. It is held in
memory only for the duration of the submission and erased afterwards.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readSecret()
		if err != nil {
			return err
		}

		return withSession(cmd, func(ctx context.Context, cfg *config.Config, s *session.Session) error {
			rec, err := s.SubmitPayment(ctx, args[0], args[1], args[2], secret)
			if err != nil {
				return err
			}
			fmt.Printf("Payment validated: %s -> %s, %s\n", rec.From, rec.To, rec.Amount)
			fmt.Printf("  result:   %s\n", rec.ResultCode)
			fmt.Printf("  hash:     %s\n", rec.Hash)
			fmt.Printf("  explorer: %s\n", rec.Explorer)
			return nil
		})
	},
}

// readSecret takes the seed from the environment or prompts for it.
func readSecret() (*wallet.Secret, error) {
	if v, ok := os.LookupEnv(secretEnvVar); ok {
		return wallet.NewSecretFromString(v), nil
	}

	fmt.Fprint(os.Stderr, "Wallet seed: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading wallet seed: %w", err)
	}
	return wallet.NewSecretFromString(strings.TrimSpace(line)), nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
