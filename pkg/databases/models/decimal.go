package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal maps a numeric-ish value to an exact decimal.
//
// Accepted inputs are strings, json.Number, integer and float kinds,
// decimal.Decimal and anything implementing fmt.Stringer (attributevalue.Number
// for instance). The second return value is false when the value is absent or
// cannot be represented: nil, blank strings, NaN/Inf, booleans and unparsable
// text all count as absent.
func ParseDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case string:
		return parseDecimalString(n)
	case json.Number:
		return parseDecimalString(n.String())
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return parseDecimalFloat(float64(n))
	case float64:
		return parseDecimalFloat(n)
	case bool:
		return decimal.Zero, false
	case fmt.Stringer:
		return parseDecimalString(n.String())
	default:
		return decimal.Zero, false
	}
}

// DecimalPtr is ParseDecimal returning nil for absent values
func DecimalPtr(v interface{}) *decimal.Decimal {
	d, ok := ParseDecimal(v)
	if !ok {
		return nil
	}
	return &d
}

func parseDecimalString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseDecimalFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
