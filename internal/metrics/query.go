package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/timestreamquery"
	"github.com/aws/aws-sdk-go-v2/service/timestreamquery/types"
)

// QueryClient is the subset of the Timestream query API used here.
// It is satisfied by *timestreamquery.Client.
type QueryClient interface {
	Query(ctx context.Context, params *timestreamquery.QueryInput, optFns ...func(*timestreamquery.Options)) (*timestreamquery.QueryOutput, error)
}

// HandlerLatency summarizes the recorded invocations of one handler
type HandlerLatency struct {
	Handler     string
	Invocations int64
	ColdStarts  int64
	AvgMillis   float64
	P90Millis   float64
	MaxMillis   float64
}

// NewTimestreamQueryClient creates a Timestream query client for region
func NewTimestreamQueryClient(ctx context.Context, region string) (*timestreamquery.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return timestreamquery.NewFromConfig(awsCfg), nil
}

// latencyQuery builds the per-handler summary over the last since
func latencyQuery(databaseName, tableName string, since time.Duration) string {
	minutes := int64(since / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf(`SELECT handler,
       count(*) AS invocations,
       sum(CASE WHEN cold_start = 'true' THEN 1 ELSE 0 END) AS cold_starts,
       avg(measure_value::double) AS avg_ms,
       approx_percentile(measure_value::double, 0.9) AS p90_ms,
       max(measure_value::double) AS max_ms
FROM "%s"."%s"
WHERE measure_name = 'invocation_duration_ms' AND time > ago(%dm)
GROUP BY handler
ORDER BY handler`, databaseName, tableName, minutes)
}

// QueryHandlerLatency reads the invocation latency summary written by
// TimestreamSink, following every result page
func QueryHandlerLatency(ctx context.Context, client QueryClient, databaseName, tableName string, since time.Duration) ([]HandlerLatency, error) {
	input := &timestreamquery.QueryInput{
		QueryString: aws.String(latencyQuery(databaseName, tableName, since)),
	}

	var latencies []HandlerLatency
	for {
		result, err := client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query invocation metrics: %w", err)
		}

		for _, row := range result.Rows {
			latency, err := parseLatencyRow(row)
			if err != nil {
				return nil, err
			}
			latencies = append(latencies, latency)
		}

		if result.NextToken == nil || *result.NextToken == "" {
			return latencies, nil
		}
		input.NextToken = result.NextToken
	}
}

func parseLatencyRow(row types.Row) (HandlerLatency, error) {
	if len(row.Data) < 6 {
		return HandlerLatency{}, fmt.Errorf("unexpected row width %d", len(row.Data))
	}

	var (
		latency HandlerLatency
		err     error
	)
	latency.Handler = scalar(row.Data[0])
	if latency.Invocations, err = parseInt(row.Data[1]); err != nil {
		return latency, err
	}
	if latency.ColdStarts, err = parseInt(row.Data[2]); err != nil {
		return latency, err
	}
	if latency.AvgMillis, err = parseFloat(row.Data[3]); err != nil {
		return latency, err
	}
	if latency.P90Millis, err = parseFloat(row.Data[4]); err != nil {
		return latency, err
	}
	if latency.MaxMillis, err = parseFloat(row.Data[5]); err != nil {
		return latency, err
	}
	return latency, nil
}

func scalar(d types.Datum) string {
	if d.ScalarValue == nil {
		return ""
	}
	return *d.ScalarValue
}

// null aggregates read as zero
func parseInt(d types.Datum) (int64, error) {
	s := scalar(d)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as integer: %w", s, err)
	}
	return n, nil
}

func parseFloat(d types.Datum) (float64, error) {
	s := scalar(d)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as number: %w", s, err)
	}
	return f, nil
}
