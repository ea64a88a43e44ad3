package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

const defaultNameRetries = 3

// PutAccount implements the Store interface
func (db *DynamoDBDatabase) PutAccount(ctx context.Context, account *models.Account) error {
	if err := db.ready(); err != nil {
		return err
	}

	if account == nil {
		return errors.New("account cannot be nil")
	}

	item, err := attributevalue.MarshalMap(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, err = db.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(db.accountsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem operation failed: %w", err)
	}

	return nil
}

// ListActiveAccounts implements the Store interface
func (db *DynamoDBDatabase) ListActiveAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithFilter(expression.Name(models.AttrIsActive).Equal(expression.Value(true))).
		WithProjection(expression.NamesList(
			expression.Name(models.AttrAccountID),
			expression.Name(models.AttrAccountName),
		)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(db.accountsTable),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	accounts := make([]models.AccountSummary, 0)
	paginator := dynamodb.NewScanPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Scan operation failed: %w", err)
		}

		var batch []models.AccountSummary
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
		}
		accounts = append(accounts, batch...)
	}

	return accounts, nil
}

// AccountNames implements the Store interface.
//
// Keys are sent in chunks of at most MaxNameBatchSize. Keys reported as
// unprocessed are resent up to MaxRetries more times and then dropped.
func (db *DynamoDBDatabase) AccountNames(ctx context.Context, accountIDs []string, options *databases.BatchOptions) (map[string]string, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(accountIDs))
	ids := distinct(accountIDs)
	if len(ids) == 0 {
		return names, nil
	}

	batchSize := databases.MaxNameBatchSize
	retries := defaultNameRetries
	if options != nil {
		if options.MaxBatchSize > 0 && options.MaxBatchSize < batchSize {
			batchSize = options.MaxBatchSize
		}
		if options.MaxRetries >= 0 {
			retries = options.MaxRetries
		}
	}

	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(
			expression.Name(models.AttrAccountID),
			expression.Name(models.AttrAccountName),
		)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-i)
		for _, id := range ids[i:end] {
			keys = append(keys, accountKey(id))
		}

		request := map[string]types.KeysAndAttributes{
			db.accountsTable: {
				Keys:                     keys,
				ProjectionExpression:     expr.Projection(),
				ExpressionAttributeNames: expr.Names(),
			},
		}

		for attempt := 0; attempt <= retries && len(request) > 0; attempt++ {
			result, err := db.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem operation failed: %w", err)
			}

			for _, item := range result.Responses[db.accountsTable] {
				var account models.AccountSummary
				if err := attributevalue.UnmarshalMap(item, &account); err != nil {
					return nil, fmt.Errorf("failed to unmarshal account: %w", err)
				}
				if account.AccountID != "" && account.AccountName != "" {
					names[account.AccountID] = account.AccountName
				}
			}

			request = pendingKeys(result.UnprocessedKeys)
		}
	}

	return names, nil
}

// pendingKeys drops tables with nothing left to fetch
func pendingKeys(unprocessed map[string]types.KeysAndAttributes) map[string]types.KeysAndAttributes {
	pending := make(map[string]types.KeysAndAttributes, len(unprocessed))
	for table, ka := range unprocessed {
		if len(ka.Keys) > 0 {
			pending[table] = ka
		}
	}
	return pending
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
