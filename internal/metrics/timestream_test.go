package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockTimestream struct {
	mock.Mock
}

func (m *mockTimestream) WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, _ ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*timestreamwrite.WriteRecordsOutput)
	return out, args.Error(1)
}

func (m *mockTimestream) DescribeDatabase(ctx context.Context, params *timestreamwrite.DescribeDatabaseInput, _ ...func(*timestreamwrite.Options)) (*timestreamwrite.DescribeDatabaseOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*timestreamwrite.DescribeDatabaseOutput)
	return out, args.Error(1)
}

func (m *mockTimestream) CreateDatabase(ctx context.Context, params *timestreamwrite.CreateDatabaseInput, _ ...func(*timestreamwrite.Options)) (*timestreamwrite.CreateDatabaseOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*timestreamwrite.CreateDatabaseOutput)
	return out, args.Error(1)
}

func (m *mockTimestream) DescribeTable(ctx context.Context, params *timestreamwrite.DescribeTableInput, _ ...func(*timestreamwrite.Options)) (*timestreamwrite.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*timestreamwrite.DescribeTableOutput)
	return out, args.Error(1)
}

func (m *mockTimestream) CreateTable(ctx context.Context, params *timestreamwrite.CreateTableInput, _ ...func(*timestreamwrite.Options)) (*timestreamwrite.CreateTableOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*timestreamwrite.CreateTableOutput)
	return out, args.Error(1)
}

func sampleInvocation(ops int) *Invocation {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inv := &Invocation{
		ID:          "inv-1",
		Handler:     "get-purchies",
		IsColdStart: true,
		StartTime:   start,
		Duration:    12 * time.Millisecond,
		StatusCode:  200,
	}
	for i := 0; i < ops; i++ {
		inv.Operations = append(inv.Operations, &OperationMetric{
			Type:      QueryOperation,
			Name:      "QueryPurchies",
			StartTime: start,
			Duration:  1500 * time.Microsecond,
		})
	}
	return inv
}

func TestTimestreamSinkPublish(t *testing.T) {
	client := &mockTimestream{}
	client.On("WriteRecords", mock.Anything, mock.MatchedBy(func(in *timestreamwrite.WriteRecordsInput) bool {
		return aws.ToString(in.DatabaseName) == "Metrics" &&
			aws.ToString(in.TableName) == "HandlerMetrics" &&
			len(in.Records) == 3
	})).Return(&timestreamwrite.WriteRecordsOutput{}, nil).Once()

	sink := NewTimestreamSink(client, "Metrics", "HandlerMetrics")
	require.NoError(t, sink.Publish(context.Background(), sampleInvocation(2)))

	client.AssertExpectations(t)

	in := client.Calls[0].Arguments.Get(1).(*timestreamwrite.WriteRecordsInput)
	assert.Equal(t, "invocation_duration_ms", aws.ToString(in.Records[0].MeasureName))
	assert.Equal(t, "12.000", aws.ToString(in.Records[0].MeasureValue))
	assert.Equal(t, "operation_duration_ms", aws.ToString(in.Records[1].MeasureName))
	assert.Equal(t, "1.500", aws.ToString(in.Records[1].MeasureValue))
	assert.Len(t, in.CommonAttributes.Dimensions, 3, "no request_id dimension when empty")
}

func TestTimestreamSinkChunksWrites(t *testing.T) {
	client := &mockTimestream{}
	client.On("WriteRecords", mock.Anything, mock.Anything).Return(&timestreamwrite.WriteRecordsOutput{}, nil)

	sink := NewTimestreamSink(client, "Metrics", "HandlerMetrics")
	require.NoError(t, sink.Publish(context.Background(), sampleInvocation(150)))

	client.AssertNumberOfCalls(t, "WriteRecords", 2)
	first := client.Calls[0].Arguments.Get(1).(*timestreamwrite.WriteRecordsInput)
	second := client.Calls[1].Arguments.Get(1).(*timestreamwrite.WriteRecordsInput)
	assert.Len(t, first.Records, 100)
	assert.Len(t, second.Records, 51)
}

func TestEnsureTimestreamCreatesMissing(t *testing.T) {
	client := &mockTimestream{}
	notFound := &types.ResourceNotFoundException{Message: aws.String("missing")}

	client.On("DescribeDatabase", mock.Anything, mock.Anything).Return(nil, notFound)
	client.On("CreateDatabase", mock.Anything, mock.Anything).Return(&timestreamwrite.CreateDatabaseOutput{}, nil)
	client.On("DescribeTable", mock.Anything, mock.Anything).Return(nil, notFound)
	client.On("CreateTable", mock.Anything, mock.MatchedBy(func(in *timestreamwrite.CreateTableInput) bool {
		return aws.ToInt64(in.RetentionProperties.MagneticStoreRetentionPeriodInDays) == 30 &&
			aws.ToInt64(in.RetentionProperties.MemoryStoreRetentionPeriodInHours) == 24
	})).Return(&timestreamwrite.CreateTableOutput{}, nil)

	require.NoError(t, EnsureTimestream(context.Background(), client, "Metrics", "HandlerMetrics"))
	client.AssertExpectations(t)
}

func TestEnsureTimestreamExisting(t *testing.T) {
	client := &mockTimestream{}
	client.On("DescribeDatabase", mock.Anything, mock.Anything).Return(&timestreamwrite.DescribeDatabaseOutput{}, nil)
	client.On("DescribeTable", mock.Anything, mock.Anything).Return(&timestreamwrite.DescribeTableOutput{}, nil)

	require.NoError(t, EnsureTimestream(context.Background(), client, "Metrics", "HandlerMetrics"))
	client.AssertNotCalled(t, "CreateDatabase", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
}

func TestEnsureTimestreamAccessDenied(t *testing.T) {
	client := &mockTimestream{}
	client.On("DescribeDatabase", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := EnsureTimestream(context.Background(), client, "Metrics", "HandlerMetrics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error checking database existence")
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Publish(ctx context.Context, inv *Invocation) error {
	return m.Called(ctx, inv).Error(0)
}

func TestPublisherLogsAndSwallowsSinkErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := &mockSink{}
	inv := sampleInvocation(1)
	sink.On("Publish", mock.Anything, inv).Return(errors.New("throttled"))

	NewPublisher(zap.New(core), sink).Publish(context.Background(), inv)

	sink.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessage("Invocation completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish invocation metrics").Len())
}

func TestPublisherWithoutSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	NewPublisher(zap.New(core), nil).Publish(context.Background(), sampleInvocation(0))
	NewPublisher(zap.New(core), nil).Publish(context.Background(), nil)

	assert.Equal(t, 1, logs.Len())
}
