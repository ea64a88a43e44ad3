package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/internal/report"
	"github.com/spf13/cobra"
)

var (
	// Report flags
	reportAccount string
	reportFrom    string
	reportTo      string
	csvPath       string
	chartPath     string
)

// reportCmd prints purchies with totals
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print purchies with totals",
	Long: `List purchies for one account or all of them within an optional date window,
the same way the get-purchies endpoint does, and print them as a table.

Examples:
  purchyctl report --from 2024-01-01 --to 2024-01-31
  purchyctl report --account 5f1c... --csv january.csv
  purchyctl report --chart amounts.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportAccount, "account", ledger.AllAccounts, "Account id, or ALL")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&csvPath, "csv", "", "Also write the listing as CSV to this file")
	reportCmd.Flags().StringVar(&chartPath, "chart", "", "Also write a PNG chart of amount per account to this file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, out io.Writer) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.ListPurchies(ctx, ledger.ListRequest{
		AccountID: reportAccount,
		From:      reportFrom,
		To:        reportTo,
	})
	if err != nil {
		return err
	}

	report.WriteTable(out, res)

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return report.WriteCSV(w, res) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "CSV report saved to: %s\n", csvPath)
	}

	if chartPath != "" {
		if err := writeFile(chartPath, func(w io.Writer) error { return report.WriteChart(w, res) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "Chart saved to: %s\n", chartPath)
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
