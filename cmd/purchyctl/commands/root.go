package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/pedro-hbl/purchy-ledger/internal/app"
	"github.com/pedro-hbl/purchy-ledger/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	logLevel   string
	backend    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "purchyctl",
	Short: "Purchy ledger administration",
	Long: `purchyctl manages a purchy ledger outside of Lambda.

Commands:
  setup   - Create the DynamoDB tables and the optional Timestream metrics table
  serve   - Serve the HTTP API locally
  report  - Print purchies with totals as a table, CSV or chart
  metrics - Summarize handler latency recorded in Timestream`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional yaml configuration file (overrides "+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Store backend (dynamodb, memory)")
}

// loadConfig reads the configuration and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, configFile); err != nil {
			return nil, err
		}
	}
	if backend != "" {
		if err := os.Setenv("STORE_BACKEND", backend); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
