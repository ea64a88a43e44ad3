// Package ledger implements the account and purchy operations on top of a
// databases.Store. It is transport agnostic; internal/api adapts it to
// API Gateway events.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultRate is the rate stamped on new purchies when none is configured
var DefaultRate = decimal.NewFromInt(405)

// Service runs ledger operations against a store
type Service struct {
	store  databases.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	rate   decimal.Decimal
	batch  *databases.BatchOptions
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for created_at and purchy_ts
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the generator of account ids and default purchy ids
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithDefaultRate sets the rate stamped on new purchies
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(s *Service) { s.rate = rate }
}

// WithBatchOptions sets the name lookup policy of listings
func WithBatchOptions(options *databases.BatchOptions) Option {
	return func(s *Service) { s.batch = options }
}

// NewService creates a ledger service
func NewService(store databases.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		rate:   DefaultRate,
		batch: &databases.BatchOptions{
			MaxBatchSize: databases.MaxNameBatchSize,
			MaxRetries:   3,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}
