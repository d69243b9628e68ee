package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
)

var (
	// Global flags
	configFile string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xrptool",
	Short: "xrptool - XRPL wallet operations from the command line",
	Long: `xrptool talks to an XRPL (XRP Ledger) node over websocket and covers the
everyday wallet workflow: generate a keypair, check a balance, list
transaction history and trust lines, and submit payments. Every command
opens its own connection and tears it down on exit; nothing is persisted
between invocations.`,
	Version:      "0.1.0-dev",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
}

// newLogger builds the command-scoped logger. Production config keeps
// the console quiet unless something goes wrong; --debug switches to
// development output.
func newLogger() *zap.Logger {
	if debug {
		log, _ := zap.NewDevelopment()
		return log
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	log, _ := cfg.Build()
	return log
}

// withSession loads configuration, connects to the configured node, runs
// fn, and disconnects. Every networked command goes through here.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, s *session.Session) error) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	s := session.New(cfg, log)
	ctx := cmd.Context()
	if err := s.Connect(ctx); err != nil {
		return err
	}
	defer s.Disconnect()

	return fn(ctx, cfg, s)
}
