package databases

import (
	"context"
	"errors"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

var (
	// ErrNotFound is returned when a record is absent at the point of the operation
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a conditional create finds an existing record
	ErrAlreadyExists = errors.New("record already exists")
	// ErrTransactionFailed is returned when a multi-item transaction was cancelled.
	// The underlying cause is joined to it.
	ErrTransactionFailed = errors.New("transaction failed")
)

// MaxNameBatchSize is the largest number of keys a single batched lookup may carry
const MaxNameBatchSize = 100

// TimeRange is an inclusive purchy_ts window compared as strings
type TimeRange struct {
	From string
	To   string
}

// QueryOptions represents options for range queries over a single owner
type QueryOptions struct {
	// Descending returns the most recent records first
	Descending     bool
	ConsistentRead bool
	// PageSize limits each underlying page, zero lets the store decide
	PageSize int32
}

// BatchOptions represents options for batched lookups
type BatchOptions struct {
	MaxBatchSize int
	// MaxRetries is the number of additional attempts for unprocessed keys
	MaxRetries int
}

// AccountStore holds account records
type AccountStore interface {
	PutAccount(ctx context.Context, account *models.Account) error
	// ListActiveAccounts returns every account flagged active, in no particular order
	ListActiveAccounts(ctx context.Context) ([]models.AccountSummary, error)
	// AccountNames resolves display names on a best-effort basis. Ids the store
	// could not resolve are absent from the map; that is not an error.
	AccountNames(ctx context.Context, accountIDs []string, options *BatchOptions) (map[string]string, error)
}

// PurchyStore holds purchase records
type PurchyStore interface {
	// CreatePurchy writes a new record, failing with ErrAlreadyExists if the key is taken
	CreatePurchy(ctx context.Context, purchy *models.Purchy) error
	// GetPurchy returns ErrNotFound when the key does not resolve
	GetPurchy(ctx context.Context, key models.PurchyKey) (*models.Purchy, error)
	// DeletePurchy deletes the record if it exists, ErrNotFound otherwise
	DeletePurchy(ctx context.Context, key models.PurchyKey) error
	// UpdatePurchy applies patch to an existing record and returns the result
	UpdatePurchy(ctx context.Context, key models.PurchyKey, patch models.PurchyPatch) (*models.Purchy, error)
	// MovePurchy atomically writes moved under its own key and deletes the record at from
	MovePurchy(ctx context.Context, from models.PurchyKey, moved *models.Purchy) error
	// QueryPurchies walks every page of a single owner's records within window
	QueryPurchies(ctx context.Context, accountID string, window TimeRange, options *QueryOptions) ([]*models.Purchy, error)
	// ScanPurchies walks every page of all records within window. Order is unspecified.
	ScanPurchies(ctx context.Context, window TimeRange) ([]*models.Purchy, error)
}

// Store is the full record store used by the handlers
type Store interface {
	AccountStore
	PurchyStore

	// Initialize verifies the backing tables are reachable
	Initialize(ctx context.Context) error
	Close() error
}

// StoreFactory creates and configures a specific store implementation
type StoreFactory interface {
	// CreateStore creates a new store instance with the given configuration
	CreateStore(config map[string]interface{}) (Store, error)
}
