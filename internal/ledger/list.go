package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllAccounts selects every owner in a listing
const AllAccounts = "ALL"

// Window bounds used when a listing leaves from or to out
const (
	earliestBound = "0000-01-01T00:00:00"
	latestBound   = "9999-12-31T23:59:59Z"
)

// ListRequest selects the purchies of a listing. Empty fields select
// every owner and an unbounded window.
type ListRequest struct {
	AccountID string
	From      string
	To        string
}

// ListResult is an aggregated listing
type ListResult struct {
	Count       int
	TotalWeight decimal.Decimal
	TotalAmount decimal.Decimal
	Items       []*models.Purchy
}

// Window translates inclusive YYYY-MM-DD dates into purchy_ts bounds.
//
// The lower bound carries no offset, so it sorts before every timestamp
// stamped on that day. The upper bound ends in "Z", which sorts after the
// "+" and "-" of an offset, so 23:59:59+05:30 is still inside.
func Window(from, to string) (databases.TimeRange, error) {
	window := databases.TimeRange{From: earliestBound, To: latestBound}

	if from = strings.TrimSpace(from); from != "" {
		if _, err := time.Parse(models.DateLayout, from); err != nil {
			return window, invalid("from must be a date formatted YYYY-MM-DD")
		}
		window.From = from + "T00:00:00"
	}

	if to = strings.TrimSpace(to); to != "" {
		if _, err := time.Parse(models.DateLayout, to); err != nil {
			return window, invalid("to must be a date formatted YYYY-MM-DD")
		}
		window.To = to + "T23:59:59Z"
	}

	return window, nil
}

// ListPurchies returns the purchies of one owner, most recent first, or of
// every owner in no particular order, with display names attached and
// weight and amount totals.
func (s *Service) ListPurchies(ctx context.Context, req ListRequest) (*ListResult, error) {
	window, err := Window(req.From, req.To)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		TotalWeight: decimal.Zero,
		TotalAmount: decimal.Zero,
		Items:       make([]*models.Purchy, 0),
	}

	// an inverted window matches nothing
	if window.From > window.To {
		return result, nil
	}

	owner := strings.TrimSpace(req.AccountID)
	var purchies []*models.Purchy
	if owner == "" || strings.EqualFold(owner, AllAccounts) {
		purchies, err = s.store.ScanPurchies(ctx, window)
	} else {
		purchies, err = s.store.QueryPurchies(ctx, owner, window, &databases.QueryOptions{Descending: true})
	}
	if err != nil {
		return nil, err
	}

	names, err := s.resolveNames(ctx, purchies)
	if err != nil {
		return nil, err
	}

	for _, p := range purchies {
		p.Amount = p.EffectiveAmount()

		if p.Weight != nil {
			result.TotalWeight = result.TotalWeight.Add(*p.Weight)
		}
		if p.Amount != nil {
			result.TotalAmount = result.TotalAmount.Add(*p.Amount)
		}

		if p.AccountName == "" {
			p.AccountName = names[p.AccountID]
		}

		result.Items = append(result.Items, p)
	}
	result.Count = len(result.Items)

	return result, nil
}

func (s *Service) resolveNames(ctx context.Context, purchies []*models.Purchy) (map[string]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, p := range purchies {
		if p.AccountID == "" {
			continue
		}
		if _, ok := seen[p.AccountID]; ok {
			continue
		}
		seen[p.AccountID] = struct{}{}
		ids = append(ids, p.AccountID)
	}

	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	names, err := s.store.AccountNames(ctx, ids, s.batch)
	if err != nil {
		return nil, err
	}

	if missing := len(ids) - len(names); missing > 0 {
		s.logger.Debug("Account names unresolved", zap.Int("missing", missing), zap.Int("requested", len(ids)))
	}

	return names, nil
}
