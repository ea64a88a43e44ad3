package ledger

import (
	"context"
	"fmt"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"go.uber.org/zap"
)

// EditRequest identifies a purchy and the changes to make to it.
//
// The editable fields use nil for "not supplied". An empty string removes the
// attribute and any other value sets it.
type EditRequest struct {
	AccountID string
	PurchyTS  string
	// NewAccountID moves the purchy to another owner when it differs from AccountID
	NewAccountID string

	PurchyID   interface{}
	PurchyDate interface{}
	Weight     interface{}
}

// EditResult is the record after the edit
type EditResult struct {
	Item  *models.Purchy
	Moved bool
}

// EditPurchy patches a purchy in place, or moves it to a new owner keeping
// its purchy_ts when NewAccountID names a different account.
func (s *Service) EditPurchy(ctx context.Context, req EditRequest) (*EditResult, error) {
	if req.AccountID == "" || req.PurchyTS == "" {
		return nil, invalid("account_id and purchy_ts are required to identify the purchy")
	}

	key := models.PurchyKey{AccountID: req.AccountID, PurchyTS: req.PurchyTS}
	existing, err := s.store.GetPurchy(ctx, key)
	if err != nil {
		return nil, err
	}

	patch := s.buildPatch(req)

	if req.NewAccountID != "" && req.NewAccountID != req.AccountID {
		moved := patch.Apply(existing)
		moved.AccountID = req.NewAccountID
		moved.PurchyTS = req.PurchyTS

		if err := s.store.MovePurchy(ctx, key, moved); err != nil {
			return nil, err
		}

		s.logger.Info("Purchy moved",
			zap.String("from_account_id", req.AccountID),
			zap.String("to_account_id", req.NewAccountID),
			zap.String("purchy_ts", req.PurchyTS))
		return &EditResult{Item: moved, Moved: true}, nil
	}

	if patch.IsEmpty() {
		return nil, ErrNoValidUpdates
	}

	updated, err := s.store.UpdatePurchy(ctx, key, patch)
	if err != nil {
		return nil, err
	}

	return &EditResult{Item: updated}, nil
}

func (s *Service) buildPatch(req EditRequest) models.PurchyPatch {
	patch := models.PurchyPatch{
		PurchyID:   stringChange(req.PurchyID),
		PurchyDate: stringChange(req.PurchyDate),
	}

	switch v := req.Weight.(type) {
	case nil:
	case string:
		if v == "" {
			patch.Weight = models.RemoveDecimal()
			break
		}
		patch.Weight = s.weightChange(v)
	default:
		patch.Weight = s.weightChange(v)
	}

	return patch
}

// weightChange sets the weight when v is numeric. Anything else removes the
// attribute rather than failing the edit.
func (s *Service) weightChange(v interface{}) models.DecimalChange {
	weight, ok := models.ParseDecimal(v)
	if !ok {
		s.logger.Warn("Weight is not a number, removing it", zap.Any("weight", v))
		return models.RemoveDecimal()
	}
	return models.SetDecimal(weight)
}

func stringChange(v interface{}) models.StringChange {
	switch s := v.(type) {
	case nil:
		return models.StringChange{}
	case string:
		if s == "" {
			return models.RemoveString()
		}
		return models.SetString(s)
	default:
		return models.SetString(fmt.Sprint(s))
	}
}
