package models

import (
	"github.com/shopspring/decimal"
)

// ChangeOp is the per-field policy of a patch
type ChangeOp int

const (
	// Keep leaves the attribute untouched
	Keep ChangeOp = iota
	// Set overwrites the attribute with a new value
	Set
	// Remove deletes the attribute from the record
	Remove
)

// StringChange is a three-way change of a string attribute
type StringChange struct {
	Op    ChangeOp
	Value string
}

// DecimalChange is a three-way change of a numeric attribute
type DecimalChange struct {
	Op    ChangeOp
	Value decimal.Decimal
}

// SetString returns a change that sets s
func SetString(s string) StringChange { return StringChange{Op: Set, Value: s} }

// RemoveString returns a change that removes the attribute
func RemoveString() StringChange { return StringChange{Op: Remove} }

// SetDecimal returns a change that sets d
func SetDecimal(d decimal.Decimal) DecimalChange { return DecimalChange{Op: Set, Value: d} }

// RemoveDecimal returns a change that removes the attribute
func RemoveDecimal() DecimalChange { return DecimalChange{Op: Remove} }

// PurchyPatch is the fixed set of editable purchy attributes. Identity
// attributes (account_id, purchy_ts) and rate are never part of a patch.
type PurchyPatch struct {
	PurchyID   StringChange
	PurchyDate StringChange
	Weight     DecimalChange
}

// IsEmpty reports whether the patch changes nothing
func (p PurchyPatch) IsEmpty() bool {
	return p.PurchyID.Op == Keep && p.PurchyDate.Op == Keep && p.Weight.Op == Keep
}

// Apply returns a copy of base with the patch applied. base is not modified.
func (p PurchyPatch) Apply(base *Purchy) *Purchy {
	out := base.Clone()

	switch p.PurchyID.Op {
	case Set:
		out.PurchyID = p.PurchyID.Value
	case Remove:
		out.PurchyID = ""
	}

	switch p.PurchyDate.Op {
	case Set:
		out.PurchyDate = p.PurchyDate.Value
	case Remove:
		out.PurchyDate = ""
	}

	switch p.Weight.Op {
	case Set:
		w := p.Weight.Value
		out.Weight = &w
	case Remove:
		out.Weight = nil
	}

	return out
}
