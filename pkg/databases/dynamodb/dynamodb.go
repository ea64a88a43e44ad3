package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
)

// Client is the subset of the DynamoDB API the store relies on.
// It is satisfied by *dynamodb.Client.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoDBDatabase is an implementation of the Store interface for AWS DynamoDB
type DynamoDBDatabase struct {
	client        Client
	accountsTable string
	purchiesTable string
	initialized   bool
}

// DynamoDBConfig holds the configuration for a DynamoDB store
type DynamoDBConfig struct {
	Region        string
	Endpoint      string
	AccountsTable string
	PurchiesTable string
	// ProvisionedRCUs and ProvisionedWCUs select provisioned billing for
	// created tables; zero means on-demand.
	ProvisionedRCUs int64
	ProvisionedWCUs int64
	CreateTables    bool
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() DynamoDBConfig {
	return DynamoDBConfig{
		Region:        "us-east-1",
		AccountsTable: "Accounts",
		PurchiesTable: "Purchies",
	}
}

// DynamoDBFactory creates DynamoDB store instances
type DynamoDBFactory struct{}

// NewDynamoDBFactory creates a new DynamoDB factory
func NewDynamoDBFactory() *DynamoDBFactory {
	return &DynamoDBFactory{}
}

// CreateStore implements the StoreFactory interface
func (f *DynamoDBFactory) CreateStore(config map[string]interface{}) (databases.Store, error) {
	dbConfig := DefaultConfig()

	if region, ok := config["region"].(string); ok && region != "" {
		dbConfig.Region = region
	}
	if endpoint, ok := config["endpoint"].(string); ok {
		dbConfig.Endpoint = endpoint
	}
	if table, ok := config["accountsTable"].(string); ok && table != "" {
		dbConfig.AccountsTable = table
	}
	if table, ok := config["purchiesTable"].(string); ok && table != "" {
		dbConfig.PurchiesTable = table
	}
	if rcus, ok := config["provisionedRCUs"].(int64); ok {
		dbConfig.ProvisionedRCUs = rcus
	}
	if wcus, ok := config["provisionedWCUs"].(int64); ok {
		dbConfig.ProvisionedWCUs = wcus
	}
	if createTables, ok := config["createTables"].(bool); ok {
		dbConfig.CreateTables = createTables
	}

	return NewDynamoDBDatabase(dbConfig)
}

// NewDynamoDBDatabase creates a new DynamoDB store backed by the AWS SDK client
func NewDynamoDBDatabase(dbConfig DynamoDBConfig) (*DynamoDBDatabase, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(dbConfig.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if dbConfig.Endpoint != "" {
			// Local DynamoDB or LocalStack
			o.BaseEndpoint = aws.String(dbConfig.Endpoint)
		}
	})

	db := NewWithClient(client, dbConfig)

	if dbConfig.CreateTables {
		if err := db.CreateTables(context.Background(), dbConfig.ProvisionedRCUs, dbConfig.ProvisionedWCUs); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return db, nil
}

// NewWithClient creates a store over an existing client
func NewWithClient(client Client, dbConfig DynamoDBConfig) *DynamoDBDatabase {
	defaults := DefaultConfig()
	if dbConfig.AccountsTable == "" {
		dbConfig.AccountsTable = defaults.AccountsTable
	}
	if dbConfig.PurchiesTable == "" {
		dbConfig.PurchiesTable = defaults.PurchiesTable
	}

	return &DynamoDBDatabase{
		client:        client,
		accountsTable: dbConfig.AccountsTable,
		purchiesTable: dbConfig.PurchiesTable,
	}
}

// Initialize implements the Store interface
func (db *DynamoDBDatabase) Initialize(ctx context.Context) error {
	if db.initialized {
		return nil
	}

	for _, table := range []string{db.accountsTable, db.purchiesTable} {
		_, err := db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		})
		if err != nil {
			var notFoundErr *types.ResourceNotFoundException
			if errors.As(err, &notFoundErr) {
				return fmt.Errorf("table %s does not exist", table)
			}
			return fmt.Errorf("error checking table %s: %w", table, err)
		}
	}

	db.initialized = true
	return nil
}

// Close implements the Store interface
func (db *DynamoDBDatabase) Close() error {
	// DynamoDB doesn't require explicit connection closing
	db.initialized = false
	return nil
}

func (db *DynamoDBDatabase) ready() error {
	if !db.initialized {
		return errors.New("database not initialized")
	}
	return nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
