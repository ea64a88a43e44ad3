package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

var (
	recordExists  = expression.AttributeExists(expression.Name(models.AttrPurchyTS))
	recordMissing = expression.AttributeNotExists(expression.Name(models.AttrPurchyTS))
)

// CreatePurchy implements the Store interface
func (db *DynamoDBDatabase) CreatePurchy(ctx context.Context, purchy *models.Purchy) error {
	if err := db.ready(); err != nil {
		return err
	}

	if purchy == nil {
		return errors.New("purchy cannot be nil")
	}

	item, err := marshalPurchy(purchy)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(recordMissing).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = db.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(db.purchiesTable),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return databases.ErrAlreadyExists
		}
		return fmt.Errorf("PutItem operation failed: %w", err)
	}

	return nil
}

// GetPurchy implements the Store interface
func (db *DynamoDBDatabase) GetPurchy(ctx context.Context, key models.PurchyKey) (*models.Purchy, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	result, err := db.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(db.purchiesTable),
		Key:            purchyKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem operation failed: %w", err)
	}

	if len(result.Item) == 0 {
		return nil, databases.ErrNotFound
	}

	return unmarshalPurchy(result.Item)
}

// DeletePurchy implements the Store interface
func (db *DynamoDBDatabase) DeletePurchy(ctx context.Context, key models.PurchyKey) error {
	if err := db.ready(); err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(recordExists).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(db.purchiesTable),
		Key:                      purchyKey(key),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return databases.ErrNotFound
		}
		return fmt.Errorf("DeleteItem operation failed: %w", err)
	}

	return nil
}

// UpdatePurchy implements the Store interface
func (db *DynamoDBDatabase) UpdatePurchy(ctx context.Context, key models.PurchyKey, patch models.PurchyPatch) (*models.Purchy, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	update, ok := updateFromPatch(patch)
	if !ok {
		return nil, errors.New("patch has no changes")
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(recordExists).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	result, err := db.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(db.purchiesTable),
		Key:                       purchyKey(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, databases.ErrNotFound
		}
		return nil, fmt.Errorf("UpdateItem operation failed: %w", err)
	}

	return unmarshalPurchy(result.Attributes)
}

// updateFromPatch renders the patch as SET/REMOVE clauses. It reports false
// when the patch changes nothing.
func updateFromPatch(patch models.PurchyPatch) (expression.UpdateBuilder, bool) {
	var update expression.UpdateBuilder
	changed := false

	applyString := func(name string, change models.StringChange) {
		switch change.Op {
		case models.Set:
			update = update.Set(expression.Name(name), expression.Value(change.Value))
			changed = true
		case models.Remove:
			update = update.Remove(expression.Name(name))
			changed = true
		}
	}

	applyString(models.AttrPurchyDate, patch.PurchyDate)
	applyString(models.AttrPurchyID, patch.PurchyID)

	switch patch.Weight.Op {
	case models.Set:
		number := attributevalue.Number(patch.Weight.Value.String())
		update = update.Set(expression.Name(models.AttrWeight), expression.Value(number))
		changed = true
	case models.Remove:
		update = update.Remove(expression.Name(models.AttrWeight))
		changed = true
	}

	return update, changed
}

// MovePurchy implements the Store interface.
//
// The put of the new item and the delete of the old one run in a single
// TransactWriteItems call: the put requires the target key to be free and the
// delete requires the source record to still exist.
func (db *DynamoDBDatabase) MovePurchy(ctx context.Context, from models.PurchyKey, moved *models.Purchy) error {
	if err := db.ready(); err != nil {
		return err
	}

	if moved == nil {
		return errors.New("moved purchy cannot be nil")
	}

	item, err := marshalPurchy(moved)
	if err != nil {
		return err
	}

	putExpr, err := expression.NewBuilder().WithCondition(recordMissing).Build()
	if err != nil {
		return fmt.Errorf("failed to build put condition: %w", err)
	}
	deleteExpr, err := expression.NewBuilder().WithCondition(recordExists).Build()
	if err != nil {
		return fmt.Errorf("failed to build delete condition: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(db.purchiesTable),
					Item:                     item,
					ConditionExpression:      putExpr.Condition(),
					ExpressionAttributeNames: putExpr.Names(),
				},
			},
			{
				Delete: &types.Delete{
					TableName:                aws.String(db.purchiesTable),
					Key:                      purchyKey(from),
					ConditionExpression:      deleteExpr.Condition(),
					ExpressionAttributeNames: deleteExpr.Names(),
				},
			},
		},
	}

	_, err = db.client.TransactWriteItems(ctx, input)
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return fmt.Errorf("%w: cancellation reasons [%s]: %w",
				databases.ErrTransactionFailed, cancellationReasons(canceled), err)
		}
		return fmt.Errorf("%w: TransactWriteItems operation failed: %w", databases.ErrTransactionFailed, err)
	}

	return nil
}

func cancellationReasons(e *types.TransactionCanceledException) string {
	codes := make([]string, 0, len(e.CancellationReasons))
	for _, reason := range e.CancellationReasons {
		codes = append(codes, aws.ToString(reason.Code))
	}
	return strings.Join(codes, ", ")
}

// QueryPurchies implements the Store interface
func (db *DynamoDBDatabase) QueryPurchies(ctx context.Context, accountID string, window databases.TimeRange, options *databases.QueryOptions) ([]*models.Purchy, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	if options == nil {
		options = &databases.QueryOptions{
			Descending: true,
		}
	}

	keyCond := expression.Key(models.AttrAccountID).Equal(expression.Value(accountID)).
		And(expression.Key(models.AttrPurchyTS).Between(
			expression.Value(window.From),
			expression.Value(window.To),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(db.purchiesTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!options.Descending),
		ConsistentRead:            aws.Bool(options.ConsistentRead),
	}
	if options.PageSize > 0 {
		input.Limit = aws.Int32(options.PageSize)
	}

	var purchies []*models.Purchy
	paginator := dynamodb.NewQueryPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Query operation failed: %w", err)
		}

		batch, err := unmarshalPurchies(page.Items)
		if err != nil {
			return nil, err
		}
		purchies = append(purchies, batch...)
	}

	return purchies, nil
}

// ScanPurchies implements the Store interface
func (db *DynamoDBDatabase) ScanPurchies(ctx context.Context, window databases.TimeRange) ([]*models.Purchy, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}

	filter := expression.Name(models.AttrPurchyTS).Between(
		expression.Value(window.From),
		expression.Value(window.To),
	)

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build filter: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(db.purchiesTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var purchies []*models.Purchy
	paginator := dynamodb.NewScanPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Scan operation failed: %w", err)
		}

		batch, err := unmarshalPurchies(page.Items)
		if err != nil {
			return nil, err
		}
		purchies = append(purchies, batch...)
	}

	return purchies, nil
}
