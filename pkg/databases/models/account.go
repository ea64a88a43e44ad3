package models

// Account represents an owner of purchase records
type Account struct {
	// AccountID is the opaque identifier generated at creation
	AccountID string `json:"account_id" dynamodbav:"account_id"`

	// AccountName is the display name, also used for listing order
	AccountName string `json:"account_name" dynamodbav:"account_name"`

	// CreatedAt is the creation timestamp in ledger time (see FormatTimestamp)
	CreatedAt string `json:"created_at" dynamodbav:"created_at"`

	// IsActive controls whether the account shows up in listings
	IsActive bool `json:"is_active" dynamodbav:"is_active"`
}

// AccountSummary is the projection returned by account listings
type AccountSummary struct {
	AccountID   string `json:"account_id" dynamodbav:"account_id"`
	AccountName string `json:"account_name" dynamodbav:"account_name"`
}
