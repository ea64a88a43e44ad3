package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts DynamoDB responses per method and records what it received
type fakeClient struct {
	getItem      func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem      func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	deleteItem   func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	updateItem   func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	query        func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	scan         func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	batchGetItem func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
	transact     func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
	describe     func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	createTable  func(*dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error)
}

var errUnscripted = errors.New("unscripted call")

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getItem == nil {
		return nil, errUnscripted
	}
	return f.getItem(in)
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putItem == nil {
		return nil, errUnscripted
	}
	return f.putItem(in)
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.deleteItem == nil {
		return nil, errUnscripted
	}
	return f.deleteItem(in)
}

func (f *fakeClient) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.updateItem == nil {
		return nil, errUnscripted
	}
	return f.updateItem(in)
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.query == nil {
		return nil, errUnscripted
	}
	return f.query(in)
}

func (f *fakeClient) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scan == nil {
		return nil, errUnscripted
	}
	return f.scan(in)
}

func (f *fakeClient) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if f.batchGetItem == nil {
		return nil, errUnscripted
	}
	return f.batchGetItem(in)
}

func (f *fakeClient) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.transact == nil {
		return nil, errUnscripted
	}
	return f.transact(in)
}

func (f *fakeClient) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describe == nil {
		return &dynamodb.DescribeTableOutput{}, nil
	}
	return f.describe(in)
}

func (f *fakeClient) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if f.createTable == nil {
		return nil, &types.ResourceInUseException{Message: aws.String("exists")}
	}
	return f.createTable(in)
}

func newTestStore(t *testing.T, client *fakeClient) *DynamoDBDatabase {
	t.Helper()
	db := NewWithClient(client, DynamoDBConfig{AccountsTable: "Accounts", PurchiesTable: "Purchies"})
	require.NoError(t, db.Initialize(context.Background()))
	return db
}

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }
func n(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }

func purchyItem(accountID, ts string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"account_id": s(accountID),
		"purchy_ts":  s(ts),
		"weight":     n("10"),
		"rate":       n("405"),
	}
}

func TestInitializeMissingTable(t *testing.T) {
	client := &fakeClient{
		describe: func(in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			if aws.ToString(in.TableName) == "Purchies" {
				return nil, &types.ResourceNotFoundException{Message: aws.String("missing")}
			}
			return &dynamodb.DescribeTableOutput{}, nil
		},
	}
	db := NewWithClient(client, DynamoDBConfig{})

	err := db.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table Purchies does not exist")

	_, err = db.GetPurchy(context.Background(), models.PurchyKey{})
	assert.EqualError(t, err, "database not initialized")
}

func TestGetPurchy(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		db := newTestStore(t, &fakeClient{
			getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{}, nil
			},
		})

		_, err := db.GetPurchy(context.Background(), models.PurchyKey{AccountID: "a", PurchyTS: "t"})
		assert.ErrorIs(t, err, databases.ErrNotFound)
	})

	t.Run("normalizes numbers", func(t *testing.T) {
		var got *dynamodb.GetItemInput
		db := newTestStore(t, &fakeClient{
			getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
				got = in
				return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
					"account_id":  s("acc-1"),
					"purchy_ts":   s("2024-01-01T10:00:00+05:30"),
					"purchy_id":   s("P-9"),
					"purchy_date": s("2024-01-01"),
					"weight":      n("12.5"),
					"rate":        s("405"),
					"amount":      s("not a number"),
				}}, nil
			},
		})

		p, err := db.GetPurchy(context.Background(), models.PurchyKey{AccountID: "acc-1", PurchyTS: "2024-01-01T10:00:00+05:30"})
		require.NoError(t, err)

		assert.True(t, aws.ToBool(got.ConsistentRead))
		assert.Equal(t, s("acc-1"), got.Key["account_id"])
		assert.Equal(t, "P-9", p.PurchyID)
		assert.Equal(t, "2024-01-01", p.PurchyDate)
		require.NotNil(t, p.Weight)
		assert.Equal(t, "12.5", p.Weight.String())
		require.NotNil(t, p.Rate)
		assert.Equal(t, "405", p.Rate.String())
		assert.Nil(t, p.Amount)
	})
}

func TestCreatePurchy(t *testing.T) {
	var got *dynamodb.PutItemInput
	client := &fakeClient{
		putItem: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			got = in
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	db := newTestStore(t, client)

	w := decimal.RequireFromString("10.25")
	r := decimal.NewFromInt(405)
	err := db.CreatePurchy(context.Background(), &models.Purchy{
		AccountID:  "acc-1",
		PurchyTS:   "2024-01-01T10:00:00+05:30",
		PurchyID:   "P-1",
		PurchyDate: "2024-01-01",
		Weight:     &w,
		Rate:       &r,
	})
	require.NoError(t, err)

	assert.Equal(t, "Purchies", aws.ToString(got.TableName))
	assert.Equal(t, n("10.25"), got.Item["weight"])
	assert.Equal(t, n("405"), got.Item["rate"])
	assert.NotContains(t, got.Item, "amount")
	assert.NotContains(t, got.Item, "note")
	assert.Contains(t, aws.ToString(got.ConditionExpression), "attribute_not_exists")

	client.putItem = func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	err = db.CreatePurchy(context.Background(), &models.Purchy{AccountID: "acc-1", PurchyTS: "x"})
	assert.ErrorIs(t, err, databases.ErrAlreadyExists)
}

func TestDeletePurchy(t *testing.T) {
	var got *dynamodb.DeleteItemInput
	client := &fakeClient{
		deleteItem: func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			got = in
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}
	db := newTestStore(t, client)
	key := models.PurchyKey{AccountID: "acc-1", PurchyTS: "2024-01-01T10:00:00+05:30"}

	require.NoError(t, db.DeletePurchy(context.Background(), key))
	assert.Equal(t, purchyKey(key), got.Key)
	assert.Contains(t, aws.ToString(got.ConditionExpression), "attribute_exists")

	client.deleteItem = func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("gone")}
	}
	assert.ErrorIs(t, db.DeletePurchy(context.Background(), key), databases.ErrNotFound)

	client.deleteItem = func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
		return nil, errors.New("throttled")
	}
	err := db.DeletePurchy(context.Background(), key)
	require.Error(t, err)
	assert.NotErrorIs(t, err, databases.ErrNotFound)
	assert.Contains(t, err.Error(), "DeleteItem operation failed")
}

func TestUpdatePurchy(t *testing.T) {
	key := models.PurchyKey{AccountID: "acc-1", PurchyTS: "2024-01-01T10:00:00+05:30"}

	t.Run("renders set and remove", func(t *testing.T) {
		var got *dynamodb.UpdateItemInput
		db := newTestStore(t, &fakeClient{
			updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				got = in
				item := purchyItem(key.AccountID, key.PurchyTS)
				item["weight"] = n("7.5")
				return &dynamodb.UpdateItemOutput{Attributes: item}, nil
			},
		})

		patch := models.PurchyPatch{
			PurchyID: models.RemoveString(),
			Weight:   models.SetDecimal(decimal.RequireFromString("7.5")),
		}
		p, err := db.UpdatePurchy(context.Background(), key, patch)
		require.NoError(t, err)

		expr := aws.ToString(got.UpdateExpression)
		assert.Contains(t, expr, "SET")
		assert.Contains(t, expr, "REMOVE")
		assert.Contains(t, aws.ToString(got.ConditionExpression), "attribute_exists")
		assert.Equal(t, types.ReturnValueAllNew, got.ReturnValues)

		names := make([]string, 0, len(got.ExpressionAttributeNames))
		for _, name := range got.ExpressionAttributeNames {
			names = append(names, name)
		}
		assert.ElementsMatch(t, []string{"purchy_id", "weight", "purchy_ts"}, names)
		assert.Contains(t, values(got.ExpressionAttributeValues), n("7.5"))

		assert.Equal(t, "7.5", p.Weight.String())
	})

	t.Run("vanished record", func(t *testing.T) {
		db := newTestStore(t, &fakeClient{
			updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("gone")}
			},
		})

		_, err := db.UpdatePurchy(context.Background(), key, models.PurchyPatch{PurchyDate: models.SetString("2024-02-01")})
		assert.ErrorIs(t, err, databases.ErrNotFound)
	})

	t.Run("empty patch", func(t *testing.T) {
		db := newTestStore(t, &fakeClient{})
		_, err := db.UpdatePurchy(context.Background(), key, models.PurchyPatch{})
		assert.Error(t, err)
	})
}

func values(m map[string]types.AttributeValue) []types.AttributeValue {
	out := make([]types.AttributeValue, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func TestMovePurchy(t *testing.T) {
	from := models.PurchyKey{AccountID: "acc-1", PurchyTS: "2024-01-01T10:00:00+05:30"}
	w := decimal.NewFromInt(10)
	moved := &models.Purchy{AccountID: "acc-2", PurchyTS: from.PurchyTS, PurchyID: "P-1", Weight: &w}

	t.Run("put and delete in one transaction", func(t *testing.T) {
		var got *dynamodb.TransactWriteItemsInput
		db := newTestStore(t, &fakeClient{
			transact: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
				got = in
				return &dynamodb.TransactWriteItemsOutput{}, nil
			},
		})

		require.NoError(t, db.MovePurchy(context.Background(), from, moved))
		require.Len(t, got.TransactItems, 2)

		put := got.TransactItems[0].Put
		require.NotNil(t, put)
		assert.Equal(t, s("acc-2"), put.Item["account_id"])
		assert.Equal(t, s(from.PurchyTS), put.Item["purchy_ts"])
		assert.Equal(t, n("10"), put.Item["weight"])
		assert.Contains(t, aws.ToString(put.ConditionExpression), "attribute_not_exists")

		del := got.TransactItems[1].Delete
		require.NotNil(t, del)
		assert.Equal(t, purchyKey(from), del.Key)
		assert.Contains(t, aws.ToString(del.ConditionExpression), "attribute_exists")
	})

	t.Run("cancelled transaction", func(t *testing.T) {
		db := newTestStore(t, &fakeClient{
			transact: func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
				return nil, &types.TransactionCanceledException{
					Message: aws.String("Transaction cancelled"),
					CancellationReasons: []types.CancellationReason{
						{Code: aws.String("None")},
						{Code: aws.String("ConditionalCheckFailed")},
					},
				}
			},
		})

		err := db.MovePurchy(context.Background(), from, moved)
		require.Error(t, err)
		assert.ErrorIs(t, err, databases.ErrTransactionFailed)
		assert.Contains(t, err.Error(), "None, ConditionalCheckFailed")

		var canceled *types.TransactionCanceledException
		assert.ErrorAs(t, err, &canceled)
	})

	t.Run("other failure", func(t *testing.T) {
		db := newTestStore(t, &fakeClient{
			transact: func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
				return nil, errors.New("connection reset")
			},
		})

		err := db.MovePurchy(context.Background(), from, moved)
		assert.ErrorIs(t, err, databases.ErrTransactionFailed)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestQueryPurchiesWalksAllPages(t *testing.T) {
	var inputs []*dynamodb.QueryInput
	pages := []*dynamodb.QueryOutput{
		{
			Items: []map[string]types.AttributeValue{
				purchyItem("acc-1", "2024-01-03T10:00:00+05:30"),
				purchyItem("acc-1", "2024-01-02T10:00:00+05:30"),
			},
			LastEvaluatedKey: purchyKey(models.PurchyKey{AccountID: "acc-1", PurchyTS: "2024-01-02T10:00:00+05:30"}),
		},
		{
			Items: []map[string]types.AttributeValue{
				purchyItem("acc-1", "2024-01-01T10:00:00+05:30"),
			},
		},
	}
	db := newTestStore(t, &fakeClient{
		query: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			inputs = append(inputs, in)
			return pages[len(inputs)-1], nil
		},
	})

	window := databases.TimeRange{From: "2024-01-01T00:00:00", To: "2024-01-31T23:59:59Z"}
	got, err := db.QueryPurchies(context.Background(), "acc-1", window, &databases.QueryOptions{Descending: true})
	require.NoError(t, err)

	require.Len(t, inputs, 2)
	assert.False(t, aws.ToBool(inputs[0].ScanIndexForward))
	assert.Nil(t, inputs[0].ExclusiveStartKey)
	assert.Equal(t, pages[0].LastEvaluatedKey, inputs[1].ExclusiveStartKey)
	assert.Contains(t, aws.ToString(inputs[0].KeyConditionExpression), "BETWEEN")
	assert.Contains(t, values(inputs[0].ExpressionAttributeValues), s(window.From))
	assert.Contains(t, values(inputs[0].ExpressionAttributeValues), s(window.To))

	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-03T10:00:00+05:30", got[0].PurchyTS)
	assert.Equal(t, "2024-01-01T10:00:00+05:30", got[2].PurchyTS)
}

func TestScanPurchiesWalksAllPages(t *testing.T) {
	calls := 0
	db := newTestStore(t, &fakeClient{
		scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			calls++
			assert.Contains(t, aws.ToString(in.FilterExpression), "BETWEEN")
			if calls == 1 {
				return &dynamodb.ScanOutput{
					Items:            []map[string]types.AttributeValue{purchyItem("acc-1", "t1")},
					LastEvaluatedKey: purchyKey(models.PurchyKey{AccountID: "acc-1", PurchyTS: "t1"}),
				}, nil
			}
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{purchyItem("acc-2", "t2")},
			}, nil
		},
	})

	got, err := db.ScanPurchies(context.Background(), databases.TimeRange{From: "a", To: "z"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, got, 2)
	assert.Equal(t, "acc-2", got[1].AccountID)
}

func TestScanPurchiesError(t *testing.T) {
	db := newTestStore(t, &fakeClient{
		scan: func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			return nil, errors.New("boom")
		},
	})

	_, err := db.ScanPurchies(context.Background(), databases.TimeRange{From: "a", To: "z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Scan operation failed")
}

func TestListActiveAccounts(t *testing.T) {
	calls := 0
	db := newTestStore(t, &fakeClient{
		scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			calls++
			assert.Equal(t, "Accounts", aws.ToString(in.TableName))
			assert.NotEmpty(t, aws.ToString(in.FilterExpression))
			assert.NotEmpty(t, aws.ToString(in.ProjectionExpression))
			if calls == 1 {
				return &dynamodb.ScanOutput{
					Items: []map[string]types.AttributeValue{
						{"account_id": s("a1"), "account_name": s("Zed")},
					},
					LastEvaluatedKey: accountKey("a1"),
				}, nil
			}
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{
					{"account_id": s("a2"), "account_name": s("alice")},
				},
			}, nil
		},
	})

	got, err := db.ListActiveAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.AccountSummary{
		{AccountID: "a1", AccountName: "Zed"},
		{AccountID: "a2", AccountName: "alice"},
	}, got)
}

func accountResponse(keys []map[string]types.AttributeValue) []map[string]types.AttributeValue {
	items := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		id := k["account_id"].(*types.AttributeValueMemberS).Value
		items = append(items, map[string]types.AttributeValue{
			"account_id":   s(id),
			"account_name": s("name-" + id),
		})
	}
	return items
}

func TestAccountNamesChunksRequests(t *testing.T) {
	var sizes []int
	db := newTestStore(t, &fakeClient{
		batchGetItem: func(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
			keys := in.RequestItems["Accounts"].Keys
			sizes = append(sizes, len(keys))
			assert.NotEmpty(t, aws.ToString(in.RequestItems["Accounts"].ProjectionExpression))
			return &dynamodb.BatchGetItemOutput{
				Responses: map[string][]map[string]types.AttributeValue{"Accounts": accountResponse(keys)},
			}, nil
		},
	})

	ids := make([]string, 0, 251)
	for i := 0; i < 250; i++ {
		ids = append(ids, fmt.Sprintf("id-%03d", i))
	}
	ids = append(ids, "id-000") // duplicate

	names, err := db.AccountNames(context.Background(), ids, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, sizes)
	assert.Len(t, names, 250)
	assert.Equal(t, "name-id-042", names["id-042"])
}

func TestAccountNamesRetriesUnprocessedKeys(t *testing.T) {
	calls := 0
	db := newTestStore(t, &fakeClient{
		batchGetItem: func(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
			calls++
			keys := in.RequestItems["Accounts"].Keys
			if calls == 1 {
				// only the first key is served, the rest comes back unprocessed
				return &dynamodb.BatchGetItemOutput{
					Responses: map[string][]map[string]types.AttributeValue{"Accounts": accountResponse(keys[:1])},
					UnprocessedKeys: map[string]types.KeysAndAttributes{
						"Accounts": {Keys: keys[1:]},
					},
				}, nil
			}
			return &dynamodb.BatchGetItemOutput{
				Responses: map[string][]map[string]types.AttributeValue{"Accounts": accountResponse(keys)},
			}, nil
		},
	})

	names, err := db.AccountNames(context.Background(), []string{"a", "b", "c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, map[string]string{"a": "name-a", "b": "name-b", "c": "name-c"}, names)
}

func TestAccountNamesGivesUpSilently(t *testing.T) {
	calls := 0
	db := newTestStore(t, &fakeClient{
		batchGetItem: func(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
			calls++
			return &dynamodb.BatchGetItemOutput{
				UnprocessedKeys: in.RequestItems,
			}, nil
		},
	})

	names, err := db.AccountNames(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	// one initial attempt plus three retries
	assert.Equal(t, 4, calls)
}

func TestAccountNamesHardFailure(t *testing.T) {
	db := newTestStore(t, &fakeClient{
		batchGetItem: func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
			return nil, errors.New("access denied")
		},
	})

	_, err := db.AccountNames(context.Background(), []string{"a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BatchGetItem operation failed")
}

func TestFactoryDefaults(t *testing.T) {
	db := NewWithClient(&fakeClient{}, DynamoDBConfig{})
	assert.Equal(t, "Accounts", db.accountsTable)
	assert.Equal(t, "Purchies", db.purchiesTable)
}

func TestCreateTablesProvisioned(t *testing.T) {
	var created []*dynamodb.CreateTableInput
	var described []string
	client := &fakeClient{
		createTable: func(in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
			created = append(created, in)
			return &dynamodb.CreateTableOutput{}, nil
		},
		describe: func(in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			described = append(described, aws.ToString(in.TableName))
			return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil
		},
	}
	db := NewWithClient(client, DynamoDBConfig{AccountsTable: "Accounts", PurchiesTable: "Purchies"})

	require.NoError(t, db.CreateTables(context.Background(), 5, 10))

	require.Len(t, created, 2)
	assert.Equal(t, "Accounts", aws.ToString(created[0].TableName))
	assert.Len(t, created[0].KeySchema, 1)
	assert.Equal(t, "Purchies", aws.ToString(created[1].TableName))
	require.Len(t, created[1].KeySchema, 2)
	assert.Equal(t, "purchy_ts", aws.ToString(created[1].KeySchema[1].AttributeName))
	assert.Equal(t, types.KeyTypeRange, created[1].KeySchema[1].KeyType)

	for _, in := range created {
		assert.Equal(t, types.BillingModeProvisioned, in.BillingMode)
		assert.Equal(t, int64(5), aws.ToInt64(in.ProvisionedThroughput.ReadCapacityUnits))
		assert.Equal(t, int64(10), aws.ToInt64(in.ProvisionedThroughput.WriteCapacityUnits))
	}
	assert.Equal(t, []string{"Accounts", "Purchies"}, described)
}

func TestCreateTablesExisting(t *testing.T) {
	db := NewWithClient(&fakeClient{}, DynamoDBConfig{})
	require.NoError(t, db.CreateTables(context.Background(), 0, 0))
}

func TestCreateTablesFailure(t *testing.T) {
	client := &fakeClient{
		createTable: func(in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
			if in.BillingMode != types.BillingModePayPerRequest {
				return nil, errors.New("expected on-demand billing")
			}
			return nil, errors.New("LimitExceededException")
		},
	}
	db := NewWithClient(client, DynamoDBConfig{})

	err := db.CreateTables(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table Accounts")
	assert.Contains(t, err.Error(), "LimitExceededException")
}
