package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
)

const tableWaitTimeout = 5 * time.Minute

// CreateTables creates the accounts and purchies tables if they are missing and
// waits for them to become active. rcus/wcus of zero select on-demand billing.
func (db *DynamoDBDatabase) CreateTables(ctx context.Context, rcus, wcus int64) error {
	accounts := &dynamodb.CreateTableInput{
		TableName: aws.String(db.accountsTable),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(models.AttrAccountID),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(models.AttrAccountID),
				KeyType:       types.KeyTypeHash,
			},
		},
	}

	purchies := &dynamodb.CreateTableInput{
		TableName: aws.String(db.purchiesTable),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(models.AttrAccountID),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String(models.AttrPurchyTS),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(models.AttrAccountID),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String(models.AttrPurchyTS),
				KeyType:       types.KeyTypeRange,
			},
		},
	}

	for _, input := range []*dynamodb.CreateTableInput{accounts, purchies} {
		if rcus > 0 && wcus > 0 {
			input.BillingMode = types.BillingModeProvisioned
			input.ProvisionedThroughput = &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(rcus),
				WriteCapacityUnits: aws.Int64(wcus),
			}
		} else {
			input.BillingMode = types.BillingModePayPerRequest
		}

		if err := db.createTable(ctx, input); err != nil {
			return fmt.Errorf("table %s: %w", aws.ToString(input.TableName), err)
		}
	}

	return nil
}

func (db *DynamoDBDatabase) createTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	if err != nil {
		var alreadyExistsErr *types.ResourceInUseException
		if errors.As(err, &alreadyExistsErr) {
			// Table already exists, which is fine
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(db.client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: input.TableName,
	}, tableWaitTimeout)
	if err != nil {
		return fmt.Errorf("failed to wait for table creation: %w", err)
	}

	return nil
}
