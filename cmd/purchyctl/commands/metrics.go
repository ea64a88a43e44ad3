package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pedro-hbl/purchy-ledger/internal/metrics"
	"github.com/spf13/cobra"
)

var metricsSince time.Duration

// metricsCmd summarizes handler latency from Timestream
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Summarize handler latency recorded in Timestream",
	Long: `Query the invocation metrics written by the lambdas when METRICS_ENABLED is set
and print invocations, cold starts and latency per handler.

Examples:
  purchyctl metrics                        # Last 24 hours
  purchyctl metrics --since 15m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMetrics(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	metricsCmd.Flags().DurationVar(&metricsSince, "since", 24*time.Hour, "How far back to look")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.MetricsDatabase == "" {
		return errors.New("METRICS_TIMESTREAM_DATABASE is not set")
	}

	client, err := metrics.NewTimestreamQueryClient(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}

	latencies, err := metrics.QueryHandlerLatency(ctx, client, cfg.MetricsDatabase, cfg.MetricsTable, metricsSince)
	if err != nil {
		return err
	}

	writeLatencyTable(out, latencies)
	return nil
}

func writeLatencyTable(out io.Writer, latencies []metrics.HandlerLatency) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Handler", "Invocations", "Cold starts", "Avg (ms)", "P90 (ms)", "Max (ms)"})
	for _, l := range latencies {
		table.Append([]string{
			l.Handler,
			strconv.FormatInt(l.Invocations, 10),
			strconv.FormatInt(l.ColdStarts, 10),
			fmt.Sprintf("%.2f", l.AvgMillis),
			fmt.Sprintf("%.2f", l.P90Millis),
			fmt.Sprintf("%.2f", l.MaxMillis),
		})
	}
	table.Render()
}
