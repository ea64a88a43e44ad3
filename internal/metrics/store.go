package metrics

import (
	"context"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

// InstrumentedStore wraps a Store and measures every call through a Collector
type InstrumentedStore struct {
	databases.Store
	collector *Collector
}

// Instrument returns store wrapped with measurement
func Instrument(store databases.Store, collector *Collector) *InstrumentedStore {
	return &InstrumentedStore{Store: store, collector: collector}
}

// PutAccount implements the Store interface
func (s *InstrumentedStore) PutAccount(ctx context.Context, account *models.Account) error {
	return s.collector.MeasureOperation(ctx, WriteOperation, "PutAccount", func() (int64, error) {
		return 1, s.Store.PutAccount(ctx, account)
	})
}

// ListActiveAccounts implements the Store interface
func (s *InstrumentedStore) ListActiveAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	var accounts []models.AccountSummary
	err := s.collector.MeasureOperation(ctx, QueryOperation, "ListActiveAccounts", func() (int64, error) {
		var err error
		accounts, err = s.Store.ListActiveAccounts(ctx)
		return int64(len(accounts)), err
	})
	return accounts, err
}

// AccountNames implements the Store interface
func (s *InstrumentedStore) AccountNames(ctx context.Context, accountIDs []string, options *databases.BatchOptions) (map[string]string, error) {
	var names map[string]string
	err := s.collector.MeasureOperation(ctx, BatchOperation, "AccountNames", func() (int64, error) {
		var err error
		names, err = s.Store.AccountNames(ctx, accountIDs, options)
		return int64(len(names)), err
	})
	return names, err
}

// CreatePurchy implements the Store interface
func (s *InstrumentedStore) CreatePurchy(ctx context.Context, purchy *models.Purchy) error {
	return s.collector.MeasureOperation(ctx, WriteOperation, "CreatePurchy", func() (int64, error) {
		return 1, s.Store.CreatePurchy(ctx, purchy)
	})
}

// GetPurchy implements the Store interface
func (s *InstrumentedStore) GetPurchy(ctx context.Context, key models.PurchyKey) (*models.Purchy, error) {
	var purchy *models.Purchy
	err := s.collector.MeasureOperation(ctx, ReadOperation, "GetPurchy", func() (int64, error) {
		var err error
		purchy, err = s.Store.GetPurchy(ctx, key)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return purchy, err
}

// DeletePurchy implements the Store interface
func (s *InstrumentedStore) DeletePurchy(ctx context.Context, key models.PurchyKey) error {
	return s.collector.MeasureOperation(ctx, WriteOperation, "DeletePurchy", func() (int64, error) {
		return 1, s.Store.DeletePurchy(ctx, key)
	})
}

// UpdatePurchy implements the Store interface
func (s *InstrumentedStore) UpdatePurchy(ctx context.Context, key models.PurchyKey, patch models.PurchyPatch) (*models.Purchy, error) {
	var purchy *models.Purchy
	err := s.collector.MeasureOperation(ctx, WriteOperation, "UpdatePurchy", func() (int64, error) {
		var err error
		purchy, err = s.Store.UpdatePurchy(ctx, key, patch)
		return 1, err
	})
	return purchy, err
}

// MovePurchy implements the Store interface
func (s *InstrumentedStore) MovePurchy(ctx context.Context, from models.PurchyKey, moved *models.Purchy) error {
	return s.collector.MeasureOperation(ctx, TransactionOperation, "MovePurchy", func() (int64, error) {
		return 2, s.Store.MovePurchy(ctx, from, moved)
	})
}

// QueryPurchies implements the Store interface
func (s *InstrumentedStore) QueryPurchies(ctx context.Context, accountID string, window databases.TimeRange, options *databases.QueryOptions) ([]*models.Purchy, error) {
	var purchies []*models.Purchy
	err := s.collector.MeasureOperation(ctx, QueryOperation, "QueryPurchies", func() (int64, error) {
		var err error
		purchies, err = s.Store.QueryPurchies(ctx, accountID, window, options)
		return int64(len(purchies)), err
	})
	return purchies, err
}

// ScanPurchies implements the Store interface
func (s *InstrumentedStore) ScanPurchies(ctx context.Context, window databases.TimeRange) ([]*models.Purchy, error) {
	var purchies []*models.Purchy
	err := s.collector.MeasureOperation(ctx, QueryOperation, "ScanPurchies", func() (int64, error) {
		var err error
		purchies, err = s.Store.ScanPurchies(ctx, window)
		return int64(len(purchies)), err
	})
	return purchies, err
}
