// Package app assembles the ledger from configuration. Every entry point
// (the per-operation lambdas and purchyctl) builds through New.
package app

import (
	"context"
	"fmt"

	"github.com/pedro-hbl/purchy-ledger/internal/api"
	"github.com/pedro-hbl/purchy-ledger/internal/config"
	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/internal/logging"
	"github.com/pedro-hbl/purchy-ledger/internal/metrics"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/dynamodb"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/memory"
	"go.uber.org/zap"
)

// App holds the wired components of a running ledger
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     databases.Store
	Collector *metrics.Collector
	Service   *ledger.Service
	Handler   *api.Handler
}

// Option overrides a component New would otherwise build
type Option func(*options)

type options struct {
	logger *zap.Logger
	store  databases.Store
	sink   metrics.Sink
}

// WithLogger uses logger instead of one built from the configured level
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore uses store instead of the configured backend
func WithStore(store databases.Store) Option {
	return func(o *options) { o.store = store }
}

// WithMetricsSink publishes invocations to sink instead of Timestream
func WithMetricsSink(sink metrics.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// New builds the store, the service and the API handler described by cfg.
// The store is initialized before New returns.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	store := o.store
	if store == nil {
		var err error
		store, err = NewStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.StoreBackend, err)
	}

	collector := metrics.NewCollector()

	sink := o.sink
	if sink == nil && cfg.MetricsEnabled {
		client, err := metrics.NewTimestreamClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		sink = metrics.NewTimestreamSink(client, cfg.MetricsDatabase, cfg.MetricsTable)
	}

	svc := ledger.NewService(metrics.Instrument(store, collector), logger,
		ledger.WithDefaultRate(cfg.Rate()),
		ledger.WithBatchOptions(cfg.BatchOptions()),
	)

	handler := api.NewHandler(svc, logger, collector, metrics.NewPublisher(logger, sink))

	logger.Info("Ledger initialized",
		zap.String("backend", cfg.StoreBackend),
		zap.String("accounts_table", cfg.AccountsTable),
		zap.String("purchies_table", cfg.PurchiesTable),
		zap.Bool("metrics_enabled", sink != nil))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Collector: collector,
		Service:   svc,
		Handler:   handler,
	}, nil
}

// Load reads the configuration from the environment and builds the app
func Load(ctx context.Context, opts ...Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, opts...)
}

// NewStore creates the store selected by cfg.StoreBackend without initializing it
func NewStore(cfg *config.Config) (databases.Store, error) {
	var factory databases.StoreFactory
	switch cfg.StoreBackend {
	case config.BackendMemory:
		factory = memory.NewMemoryFactory()
	case config.BackendDynamoDB:
		factory = dynamodb.NewDynamoDBFactory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	store, err := factory.CreateStore(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", cfg.StoreBackend, err)
	}
	return store, nil
}

// Close releases the store
func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.Store.Close()
}
