// Package cli is the splitledger command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "splitledger",
	Short: "Expense-sharing balance ledger and settlement engine",
	Long: `splitledger tracks who owes whom in which group and settles payments
across every group two users share.

Configuration comes from an optional YAML file (--config or SPLITLEDGER_CONFIG)
overridden by SPLITLEDGER_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		logging.SetupWithLevel(level)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

// Execute runs the command tree against os.Args.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("splitledger: %w", err)
	}
	return nil
}
