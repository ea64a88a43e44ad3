package models

import (
	"time"
)

// TimestampLayout is ISO 8601 with a numeric offset and second precision.
// Values in a single fixed offset sort lexicographically in chronological order.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// DateLayout is the layout of caller-supplied logical dates and window bounds
const DateLayout = "2006-01-02"

// LedgerZone is the fixed UTC+05:30 offset all server timestamps are produced in
var LedgerZone = time.FixedZone("IST", 5*60*60+30*60)

// FormatTimestamp renders t in ledger time, truncated to the second
func FormatTimestamp(t time.Time) string {
	return t.In(LedgerZone).Truncate(time.Second).Format(TimestampLayout)
}

// ParseTimestamp parses a value produced by FormatTimestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
