package ledger

import (
	"context"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"go.uber.org/zap"
)

// CreatePurchyRequest holds the caller input of a new purchy.
// Weight takes any numeric-ish value accepted by models.ParseDecimal.
type CreatePurchyRequest struct {
	AccountID string
	Date      string
	Weight    interface{}
	// PurchyID is generated when empty
	PurchyID string
	Note     string
}

// CreatePurchy records a purchy stamped with the current time and the default rate
func (s *Service) CreatePurchy(ctx context.Context, req CreatePurchyRequest) (*models.Purchy, error) {
	if req.AccountID == "" || req.Date == "" || req.Weight == nil {
		return nil, invalid("Missing required fields")
	}

	weight, ok := models.ParseDecimal(req.Weight)
	if !ok {
		return nil, invalid("weight must be a number")
	}

	purchyID := req.PurchyID
	if purchyID == "" {
		purchyID = s.newID()
	}

	rate := s.rate
	purchy := &models.Purchy{
		AccountID:  req.AccountID,
		PurchyTS:   models.FormatTimestamp(s.now()),
		PurchyID:   purchyID,
		PurchyDate: req.Date,
		Note:       req.Note,
		Weight:     &weight,
		Rate:       &rate,
	}

	if err := s.store.CreatePurchy(ctx, purchy); err != nil {
		return nil, err
	}

	s.logger.Info("Purchy recorded",
		zap.String("account_id", purchy.AccountID),
		zap.String("purchy_ts", purchy.PurchyTS))
	return purchy, nil
}

// DeletePurchy removes the purchy at key. databases.ErrNotFound is returned
// when there is nothing to delete.
func (s *Service) DeletePurchy(ctx context.Context, key models.PurchyKey) error {
	if key.AccountID == "" || key.PurchyTS == "" {
		return invalid("account_id and purchy_ts are required")
	}

	if err := s.store.DeletePurchy(ctx, key); err != nil {
		return err
	}

	s.logger.Info("Purchy deleted",
		zap.String("account_id", key.AccountID),
		zap.String("purchy_ts", key.PurchyTS))
	return nil
}
