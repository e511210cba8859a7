// Command opsctl runs sync, inbox and costing operations against the local
// store without the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aeworks/ops-api/internal/app"
	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	token   string
)

var rootCmd = &cobra.Command{
	Use:           "opsctl",
	Short:         "Operate the AE Works ops store from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "cloud bearer token (defaults to the stored one)")

	rootCmd.AddCommand(syncCmd, pushCmd, inboxCmd, costCmd, seedCmd, metaCmd, connectCmd, disconnectCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads configuration, wires the application and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	log := logger.NewCLILogger(verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	return fn(ctx, a)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
