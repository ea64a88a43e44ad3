package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

// MemoryDatabase is an implementation of the Store interface kept in process
// memory. It honors the same conditional and transactional semantics as the
// DynamoDB store and is used for local runs and tests.
type MemoryDatabase struct {
	mu          sync.RWMutex
	accounts    map[string]*models.Account
	purchies    map[models.PurchyKey]*models.Purchy
	initialized bool
}

// MemoryFactory creates in-memory store instances
type MemoryFactory struct{}

// NewMemoryFactory creates a new in-memory factory
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{}
}

// CreateStore implements the StoreFactory interface. The configuration is ignored.
func (f *MemoryFactory) CreateStore(config map[string]interface{}) (databases.Store, error) {
	return New(), nil
}

// New returns an empty store
func New() *MemoryDatabase {
	return &MemoryDatabase{
		accounts: make(map[string]*models.Account),
		purchies: make(map[models.PurchyKey]*models.Purchy),
	}
}

// Initialize implements the Store interface
func (db *MemoryDatabase) Initialize(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.initialized = true
	return nil
}

// Close implements the Store interface
func (db *MemoryDatabase) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.initialized = false
	return nil
}

func (db *MemoryDatabase) ready() error {
	if !db.initialized {
		return errors.New("database not initialized")
	}
	return nil
}

// PutAccount implements the Store interface
func (db *MemoryDatabase) PutAccount(ctx context.Context, account *models.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ready(); err != nil {
		return err
	}
	if account == nil {
		return errors.New("account cannot be nil")
	}

	stored := *account
	db.accounts[account.AccountID] = &stored
	return nil
}

// ListActiveAccounts implements the Store interface
func (db *MemoryDatabase) ListActiveAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ready(); err != nil {
		return nil, err
	}

	accounts := make([]models.AccountSummary, 0, len(db.accounts))
	for _, a := range db.accounts {
		if !a.IsActive {
			continue
		}
		accounts = append(accounts, models.AccountSummary{
			AccountID:   a.AccountID,
			AccountName: a.AccountName,
		})
	}
	return accounts, nil
}

// AccountNames implements the Store interface. Every key is served on the
// first attempt, so options have no effect.
func (db *MemoryDatabase) AccountNames(ctx context.Context, accountIDs []string, options *databases.BatchOptions) (map[string]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ready(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := db.accounts[id]; ok && a.AccountName != "" {
			names[id] = a.AccountName
		}
	}
	return names, nil
}

// CreatePurchy implements the Store interface
func (db *MemoryDatabase) CreatePurchy(ctx context.Context, purchy *models.Purchy) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ready(); err != nil {
		return err
	}
	if purchy == nil {
		return errors.New("purchy cannot be nil")
	}

	key := purchy.Key()
	if _, exists := db.purchies[key]; exists {
		return databases.ErrAlreadyExists
	}
	db.purchies[key] = purchy.Clone()
	return nil
}

// GetPurchy implements the Store interface
func (db *MemoryDatabase) GetPurchy(ctx context.Context, key models.PurchyKey) (*models.Purchy, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ready(); err != nil {
		return nil, err
	}

	p, ok := db.purchies[key]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return p.Clone(), nil
}

// DeletePurchy implements the Store interface
func (db *MemoryDatabase) DeletePurchy(ctx context.Context, key models.PurchyKey) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ready(); err != nil {
		return err
	}

	if _, ok := db.purchies[key]; !ok {
		return databases.ErrNotFound
	}
	delete(db.purchies, key)
	return nil
}

// UpdatePurchy implements the Store interface
func (db *MemoryDatabase) UpdatePurchy(ctx context.Context, key models.PurchyKey, patch models.PurchyPatch) (*models.Purchy, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ready(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, errors.New("patch has no changes")
	}

	current, ok := db.purchies[key]
	if !ok {
		return nil, databases.ErrNotFound
	}

	updated := patch.Apply(current)
	db.purchies[key] = updated
	return updated.Clone(), nil
}

// MovePurchy implements the Store interface. Both legs are checked before
// either is applied.
func (db *MemoryDatabase) MovePurchy(ctx context.Context, from models.PurchyKey, moved *models.Purchy) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.ready(); err != nil {
		return err
	}
	if moved == nil {
		return errors.New("moved purchy cannot be nil")
	}

	to := moved.Key()
	if _, exists := db.purchies[to]; exists {
		return errors.Join(databases.ErrTransactionFailed, errors.New("put condition failed: target key exists"))
	}
	if _, exists := db.purchies[from]; !exists {
		return errors.Join(databases.ErrTransactionFailed, errors.New("delete condition failed: source record missing"))
	}

	delete(db.purchies, from)
	db.purchies[to] = moved.Clone()
	return nil
}

// QueryPurchies implements the Store interface
func (db *MemoryDatabase) QueryPurchies(ctx context.Context, accountID string, window databases.TimeRange, options *databases.QueryOptions) ([]*models.Purchy, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ready(); err != nil {
		return nil, err
	}

	descending := true
	if options != nil {
		descending = options.Descending
	}

	purchies := db.collect(func(p *models.Purchy) bool {
		return p.AccountID == accountID && inWindow(p.PurchyTS, window)
	})

	sort.Slice(purchies, func(i, j int) bool {
		if descending {
			return purchies[i].PurchyTS > purchies[j].PurchyTS
		}
		return purchies[i].PurchyTS < purchies[j].PurchyTS
	})

	return purchies, nil
}

// ScanPurchies implements the Store interface. Results are ordered by owner
// then timestamp so tests are deterministic; callers must not rely on it.
func (db *MemoryDatabase) ScanPurchies(ctx context.Context, window databases.TimeRange) ([]*models.Purchy, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.ready(); err != nil {
		return nil, err
	}

	purchies := db.collect(func(p *models.Purchy) bool {
		return inWindow(p.PurchyTS, window)
	})

	sort.Slice(purchies, func(i, j int) bool {
		if purchies[i].AccountID != purchies[j].AccountID {
			return purchies[i].AccountID < purchies[j].AccountID
		}
		return purchies[i].PurchyTS < purchies[j].PurchyTS
	})

	return purchies, nil
}

func (db *MemoryDatabase) collect(match func(*models.Purchy) bool) []*models.Purchy {
	out := make([]*models.Purchy, 0)
	for _, p := range db.purchies {
		if match(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// inWindow mirrors DynamoDB BETWEEN on string attributes
func inWindow(ts string, window databases.TimeRange) bool {
	return ts >= window.From && ts <= window.To
}
