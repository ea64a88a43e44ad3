package models

import (
	"github.com/shopspring/decimal"
)

// Attribute names shared by every backend
const (
	AttrAccountID   = "account_id"
	AttrAccountName = "account_name"
	AttrPurchyTS    = "purchy_ts"
	AttrPurchyID    = "purchy_id"
	AttrPurchyDate  = "purchy_date"
	AttrWeight      = "weight"
	AttrRate        = "rate"
	AttrAmount      = "amount"
	AttrNote        = "note"
	AttrIsActive    = "is_active"
)

// PurchyKey identifies a purchase record. It is the only valid lookup key.
type PurchyKey struct {
	AccountID string
	PurchyTS  string
}

// Purchy represents a purchase record owned by an account.
//
// Numeric attributes are exact decimals; a nil pointer means the attribute is
// absent from the stored item. They are excluded from tag-based marshaling and
// encoded explicitly by each backend so that every ingestion point goes
// through ParseDecimal.
type Purchy struct {
	// AccountID is the owner and the partition key
	AccountID string `dynamodbav:"account_id"`

	// PurchyTS is the server-assigned creation timestamp and the sort key
	PurchyTS string `dynamodbav:"purchy_ts"`

	// PurchyID is the display label, supplied by the caller or generated
	PurchyID string `dynamodbav:"purchy_id,omitempty"`

	// PurchyDate is the caller's logical date (YYYY-MM-DD)
	PurchyDate string `dynamodbav:"purchy_date,omitempty"`

	Note string `dynamodbav:"note,omitempty"`

	// AccountName is only populated on listings
	AccountName string `dynamodbav:"account_name,omitempty"`

	Weight *decimal.Decimal `dynamodbav:"-"`
	Rate   *decimal.Decimal `dynamodbav:"-"`
	Amount *decimal.Decimal `dynamodbav:"-"`
}

// Key returns the identity of the record
func (p *Purchy) Key() PurchyKey {
	return PurchyKey{AccountID: p.AccountID, PurchyTS: p.PurchyTS}
}

// Clone returns a copy that shares no decimal pointers with p
func (p *Purchy) Clone() *Purchy {
	c := *p
	c.Weight = cloneDecimal(p.Weight)
	c.Rate = cloneDecimal(p.Rate)
	c.Amount = cloneDecimal(p.Amount)
	return &c
}

// EffectiveAmount returns the stored amount, or weight*rate when the amount is
// absent and both inputs are present. It returns nil otherwise.
func (p *Purchy) EffectiveAmount() *decimal.Decimal {
	if p.Amount != nil {
		return cloneDecimal(p.Amount)
	}
	if p.Weight != nil && p.Rate != nil {
		amount := p.Weight.Mul(*p.Rate)
		return &amount
	}
	return nil
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
