package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pedro-hbl/purchy-ledger/internal/config"
	"github.com/pedro-hbl/purchy-ledger/internal/logging"
	"github.com/pedro-hbl/purchy-ledger/internal/metrics"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Setup flags
	rcus          int64
	wcus          int64
	setupMetrics  bool
	setupDeadline time.Duration
)

// setupCmd creates the backing tables
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the ledger tables",
	Long: `Create the Accounts and Purchies DynamoDB tables if they do not exist and
wait until they are active. With --metrics the Timestream database and table
used for invocation metrics are created as well.

Examples:
  purchyctl setup                          # On-demand tables in AWS_REGION
  purchyctl setup --rcu 5 --wcu 5          # Provisioned tables
  DYNAMODB_ENDPOINT=http://localhost:8000 purchyctl setup
  purchyctl setup --metrics                # Also create the metrics table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), setupDeadline)
		defer cancel()
		return runSetup(ctx)
	},
}

func init() {
	setupCmd.Flags().Int64Var(&rcus, "rcu", 0, "Provisioned read capacity units (0 for on-demand)")
	setupCmd.Flags().Int64Var(&wcus, "wcu", 0, "Provisioned write capacity units (0 for on-demand)")
	setupCmd.Flags().BoolVar(&setupMetrics, "metrics", false, "Also create the Timestream metrics database and table")
	setupCmd.Flags().DurationVar(&setupDeadline, "timeout", 5*time.Minute, "Overall time limit")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(ctx context.Context) error {
	if (rcus == 0) != (wcus == 0) {
		return errors.New("--rcu and --wcu must be set together")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != config.BackendDynamoDB {
		return fmt.Errorf("setup only applies to the %s backend", config.BackendDynamoDB)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Creating tables",
		zap.String("region", cfg.AWSRegion),
		zap.String("endpoint", cfg.DynamoDBEndpoint),
		zap.String("accounts_table", cfg.AccountsTable),
		zap.String("purchies_table", cfg.PurchiesTable))

	db, err := dynamodb.NewDynamoDBDatabase(dynamodb.DynamoDBConfig{
		Region:        cfg.AWSRegion,
		Endpoint:      cfg.DynamoDBEndpoint,
		AccountsTable: cfg.AccountsTable,
		PurchiesTable: cfg.PurchiesTable,
	})
	if err != nil {
		return err
	}
	if err := db.CreateTables(ctx, rcus, wcus); err != nil {
		return err
	}
	if err := db.Initialize(ctx); err != nil {
		return err
	}
	logger.Info("Tables ready")

	if !setupMetrics {
		return nil
	}
	if cfg.MetricsDatabase == "" {
		return errors.New("METRICS_TIMESTREAM_DATABASE is required with --metrics")
	}

	client, err := metrics.NewTimestreamClient(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}
	if err := metrics.EnsureTimestream(ctx, client, cfg.MetricsDatabase, cfg.MetricsTable); err != nil {
		return err
	}
	logger.Info("Timestream setup completed successfully",
		zap.String("database", cfg.MetricsDatabase),
		zap.String("table", cfg.MetricsTable))
	return nil
}
