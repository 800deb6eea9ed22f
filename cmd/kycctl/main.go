// File: cmd/kycctl/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/infra/logging"
)

var (
	cfgPath string
	devMode bool
	timeout time.Duration

	cfg    *config.Config
	logger *zerolog.Logger
)

// rootCmd is the operator tool for the dashboard's KYC storage.
var rootCmd = &cobra.Command{
	Use:   "kycctl",
	Short: "Operate on KYC wizard snapshots, reference caches and tokens",
	Long: `kycctl reads the same YAML config as the dashboard service and talks to
the configured storage backend directly.

Available subcommands:
  snapshot  - Show or clear a user's saved wizard progress
  reference - Refresh the cached categories and services
  token     - Mint a bearer token for local testing`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgPath, devMode)
		if err != nil {
			return err
		}
		if cfg.Secrets.AWSSecretName != "" {
			sm, err := config.NewSecretsManagerClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.ApplySecrets(cmd.Context(), cfg, sm); err != nil {
				return err
			}
		}
		logger = logging.NewWithWriter(os.Stderr, cfg.Log, cfg.Runtime.Dev)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "enable developer mode")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "operation timeout")

	rootCmd.AddCommand(snapshotCmd, referenceCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
