package ledger

import (
	"context"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Initialize(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockStore) Close() error { return m.Called().Error(0) }

func (m *mockStore) PutAccount(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockStore) ListActiveAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.AccountSummary)
	return out, args.Error(1)
}

func (m *mockStore) AccountNames(ctx context.Context, ids []string, options *databases.BatchOptions) (map[string]string, error) {
	args := m.Called(ctx, ids, options)
	out, _ := args.Get(0).(map[string]string)
	return out, args.Error(1)
}

func (m *mockStore) CreatePurchy(ctx context.Context, purchy *models.Purchy) error {
	return m.Called(ctx, purchy).Error(0)
}

func (m *mockStore) GetPurchy(ctx context.Context, key models.PurchyKey) (*models.Purchy, error) {
	args := m.Called(ctx, key)
	out, _ := args.Get(0).(*models.Purchy)
	return out, args.Error(1)
}

func (m *mockStore) DeletePurchy(ctx context.Context, key models.PurchyKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) UpdatePurchy(ctx context.Context, key models.PurchyKey, patch models.PurchyPatch) (*models.Purchy, error) {
	args := m.Called(ctx, key, patch)
	out, _ := args.Get(0).(*models.Purchy)
	return out, args.Error(1)
}

func (m *mockStore) MovePurchy(ctx context.Context, from models.PurchyKey, moved *models.Purchy) error {
	return m.Called(ctx, from, moved).Error(0)
}

func (m *mockStore) QueryPurchies(ctx context.Context, accountID string, window databases.TimeRange, options *databases.QueryOptions) ([]*models.Purchy, error) {
	args := m.Called(ctx, accountID, window, options)
	out, _ := args.Get(0).([]*models.Purchy)
	return out, args.Error(1)
}

func (m *mockStore) ScanPurchies(ctx context.Context, window databases.TimeRange) ([]*models.Purchy, error) {
	args := m.Called(ctx, window)
	out, _ := args.Get(0).([]*models.Purchy)
	return out, args.Error(1)
}
