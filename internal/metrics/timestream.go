package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"go.uber.org/zap"
)

// maxRecordsPerWrite is the WriteRecords limit
const maxRecordsPerWrite = 100

// TimestreamClient is the subset of the Timestream write API used here.
// It is satisfied by *timestreamwrite.Client.
type TimestreamClient interface {
	WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error)
	DescribeDatabase(ctx context.Context, params *timestreamwrite.DescribeDatabaseInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.DescribeDatabaseOutput, error)
	CreateDatabase(ctx context.Context, params *timestreamwrite.CreateDatabaseInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.CreateDatabaseOutput, error)
	DescribeTable(ctx context.Context, params *timestreamwrite.DescribeTableInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *timestreamwrite.CreateTableInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.CreateTableOutput, error)
}

// Sink receives completed invocations
type Sink interface {
	Publish(ctx context.Context, inv *Invocation) error
}

// TimestreamSink writes invocation metrics to an AWS Timestream table
type TimestreamSink struct {
	client       TimestreamClient
	databaseName string
	tableName    string
}

// NewTimestreamClient creates a Timestream write client for region
func NewTimestreamClient(ctx context.Context, region string) (*timestreamwrite.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return timestreamwrite.NewFromConfig(awsCfg), nil
}

// NewTimestreamSink creates a sink writing to databaseName.tableName
func NewTimestreamSink(client TimestreamClient, databaseName, tableName string) *TimestreamSink {
	return &TimestreamSink{
		client:       client,
		databaseName: databaseName,
		tableName:    tableName,
	}
}

// Publish implements the Sink interface. One record is written for the
// invocation itself and one per store operation.
func (s *TimestreamSink) Publish(ctx context.Context, inv *Invocation) error {
	if inv == nil {
		return nil
	}

	records := invocationRecords(inv)
	for i := 0; i < len(records); i += maxRecordsPerWrite {
		end := i + maxRecordsPerWrite
		if end > len(records) {
			end = len(records)
		}

		_, err := s.client.WriteRecords(ctx, &timestreamwrite.WriteRecordsInput{
			DatabaseName: aws.String(s.databaseName),
			TableName:    aws.String(s.tableName),
			CommonAttributes: &types.Record{
				Dimensions: commonDimensions(inv),
			},
			Records: records[i:end],
		})
		if err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
	}

	return nil
}

func commonDimensions(inv *Invocation) []types.Dimension {
	dims := []types.Dimension{
		{Name: aws.String("handler"), Value: aws.String(inv.Handler)},
		{Name: aws.String("invocation_id"), Value: aws.String(inv.ID)},
		{Name: aws.String("cold_start"), Value: aws.String(strconv.FormatBool(inv.IsColdStart))},
	}
	if inv.RequestID != "" {
		dims = append(dims, types.Dimension{Name: aws.String("request_id"), Value: aws.String(inv.RequestID)})
	}
	return dims
}

func invocationRecords(inv *Invocation) []types.Record {
	records := make([]types.Record, 0, len(inv.Operations)+1)

	records = append(records, types.Record{
		Dimensions: []types.Dimension{
			{Name: aws.String("status_code"), Value: aws.String(strconv.Itoa(inv.StatusCode))},
		},
		MeasureName:      aws.String("invocation_duration_ms"),
		MeasureValue:     aws.String(durationMillis(inv.Duration.Nanoseconds())),
		MeasureValueType: types.MeasureValueTypeDouble,
		Time:             aws.String(strconv.FormatInt(inv.StartTime.UnixNano(), 10)),
		TimeUnit:         types.TimeUnitNanoseconds,
	})

	for _, op := range inv.Operations {
		status := "ok"
		if op.Error != nil {
			status = "error"
		}
		records = append(records, types.Record{
			Dimensions: []types.Dimension{
				{Name: aws.String("operation"), Value: aws.String(op.Name)},
				{Name: aws.String("operation_type"), Value: aws.String(string(op.Type))},
				{Name: aws.String("status"), Value: aws.String(status)},
			},
			MeasureName:      aws.String("operation_duration_ms"),
			MeasureValue:     aws.String(durationMillis(op.Duration.Nanoseconds())),
			MeasureValueType: types.MeasureValueTypeDouble,
			Time:             aws.String(strconv.FormatInt(op.StartTime.UnixNano(), 10)),
			TimeUnit:         types.TimeUnitNanoseconds,
		})
	}

	return records
}

func durationMillis(nanos int64) string {
	return strconv.FormatFloat(float64(nanos)/1e6, 'f', 3, 64)
}

// EnsureTimestream creates the metrics database and table if they are missing
func EnsureTimestream(ctx context.Context, client TimestreamClient, databaseName, tableName string) error {
	if err := ensureDatabaseExists(ctx, client, databaseName); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	if err := ensureTableExists(ctx, client, databaseName, tableName); err != nil {
		return fmt.Errorf("failed to ensure table exists: %w", err)
	}
	return nil
}

func ensureDatabaseExists(ctx context.Context, client TimestreamClient, databaseName string) error {
	_, err := client.DescribeDatabase(ctx, &timestreamwrite.DescribeDatabaseInput{
		DatabaseName: aws.String(databaseName),
	})
	if err == nil {
		return nil
	}

	var notFoundErr *types.ResourceNotFoundException
	if !errors.As(err, &notFoundErr) {
		return fmt.Errorf("error checking database existence: %w", err)
	}

	_, err = client.CreateDatabase(ctx, &timestreamwrite.CreateDatabaseInput{
		DatabaseName: aws.String(databaseName),
	})
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}

func ensureTableExists(ctx context.Context, client TimestreamClient, databaseName, tableName string) error {
	_, err := client.DescribeTable(ctx, &timestreamwrite.DescribeTableInput{
		DatabaseName: aws.String(databaseName),
		TableName:    aws.String(tableName),
	})
	if err == nil {
		return nil
	}

	var notFoundErr *types.ResourceNotFoundException
	if !errors.As(err, &notFoundErr) {
		return fmt.Errorf("error checking table existence: %w", err)
	}

	_, err = client.CreateTable(ctx, &timestreamwrite.CreateTableInput{
		DatabaseName: aws.String(databaseName),
		TableName:    aws.String(tableName),
		RetentionProperties: &types.RetentionProperties{
			MagneticStoreRetentionPeriodInDays: aws.Int64(30),
			MemoryStoreRetentionPeriodInHours:  aws.Int64(24),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Publisher logs every completed invocation and forwards it to an optional sink
type Publisher struct {
	logger *zap.Logger
	sink   Sink
}

// NewPublisher creates a publisher. sink may be nil.
func NewPublisher(logger *zap.Logger, sink Sink) *Publisher {
	return &Publisher{logger: logger, sink: sink}
}

// Publish logs inv and hands it to the sink. Sink failures are logged, not returned.
func (p *Publisher) Publish(ctx context.Context, inv *Invocation) {
	if inv == nil {
		return
	}

	fields := []zap.Field{
		zap.String("handler", inv.Handler),
		zap.String("invocation_id", inv.ID),
		zap.Bool("cold_start", inv.IsColdStart),
		zap.Int("status_code", inv.StatusCode),
		zap.Duration("duration", inv.Duration),
		zap.Any("summary", inv.Summary),
	}
	if inv.RequestID != "" {
		fields = append(fields, zap.String("request_id", inv.RequestID))
	}
	p.logger.Info("Invocation completed", fields...)

	if p.sink == nil {
		return
	}
	if err := p.sink.Publish(ctx, inv); err != nil {
		p.logger.Warn("Failed to publish invocation metrics", zap.String("invocation_id", inv.ID), zap.Error(err))
	}
}
