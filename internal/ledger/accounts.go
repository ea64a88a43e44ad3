package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"go.uber.org/zap"
)

// CreateAccount registers a new active account under a generated id
func (s *Service) CreateAccount(ctx context.Context, name string) (*models.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("account_name is required")
	}

	account := &models.Account{
		AccountID:   s.newID(),
		AccountName: name,
		CreatedAt:   models.FormatTimestamp(s.now()),
		IsActive:    true,
	}

	if err := s.store.PutAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created", zap.String("account_id", account.AccountID))
	return account, nil
}

// ListAccounts returns the active accounts ordered by name, ignoring case
func (s *Service) ListAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	accounts, err := s.store.ListActiveAccounts(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := strings.ToLower(accounts[i].AccountName), strings.ToLower(accounts[j].AccountName)
		if a != b {
			return a < b
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})

	return accounts, nil
}
