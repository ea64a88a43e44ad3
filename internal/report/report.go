// Package report renders purchy listings for the command line
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToChart is returned when a listing has no amounts to plot
var ErrNothingToChart = errors.New("no purchies with an amount to chart")

var columns = []string{"Account", "Timestamp", "Purchy ID", "Date", "Weight", "Rate", "Amount", "Note"}

// AccountTotal aggregates the purchies of one owner
type AccountTotal struct {
	AccountID string
	Label     string
	Count     int
	Weight    decimal.Decimal
	Amount    decimal.Decimal
}

// Totals groups res by owner, ordered by label
func Totals(res *ledger.ListResult) []AccountTotal {
	byAccount := make(map[string]*AccountTotal)
	for _, p := range res.Items {
		t, ok := byAccount[p.AccountID]
		if !ok {
			t = &AccountTotal{AccountID: p.AccountID, Label: label(p)}
			byAccount[p.AccountID] = t
		}
		t.Count++
		if p.Weight != nil {
			t.Weight = t.Weight.Add(*p.Weight)
		}
		if p.Amount != nil {
			t.Amount = t.Amount.Add(*p.Amount)
		}
	}

	totals := make([]AccountTotal, 0, len(byAccount))
	for _, t := range byAccount {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Label != totals[j].Label {
			return totals[i].Label < totals[j].Label
		}
		return totals[i].AccountID < totals[j].AccountID
	})
	return totals
}

func label(p *models.Purchy) string {
	if p.AccountName != "" {
		return p.AccountName
	}
	return p.AccountID
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func row(p *models.Purchy) []string {
	return []string{
		label(p),
		p.PurchyTS,
		p.PurchyID,
		p.PurchyDate,
		formatDecimal(p.Weight),
		formatDecimal(p.Rate),
		formatDecimal(p.Amount),
		p.Note,
	}
}

// WriteTable renders res as a text table with a totals footer
func WriteTable(w io.Writer, res *ledger.ListResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)

	for _, p := range res.Items {
		table.Append(row(p))
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d purchies", res.Count), "", "", "",
		res.TotalWeight.String(), "", res.TotalAmount.String(), "",
	})
	table.Render()
}

// WriteCSV writes res as CSV, one row per purchy, with a header
func WriteCSV(w io.Writer, res *ledger.ListResult) error {
	cw := csv.NewWriter(w)
	header := append([]string{"AccountID"}, columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range res.Items {
		if err := cw.Write(append([]string{p.AccountID}, row(p)...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChart renders a PNG bar chart of the amount owed per account
func WriteChart(w io.Writer, res *ledger.ListResult) error {
	var bars []chart.Value
	var top float64
	fill := drawing.ColorFromHex("4db8ff")
	for _, t := range Totals(res) {
		if !t.Amount.IsPositive() {
			continue
		}
		value := t.Amount.InexactFloat64()
		if value > top {
			top = value
		}
		bars = append(bars, chart.Value{
			Label: t.Label,
			Value: value,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill.WithAlpha(255),
			},
		})
	}
	if len(bars) == 0 {
		return ErrNothingToChart
	}

	barChart := chart.BarChart{
		Title: "Amount by Account",
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}
	// anchored at zero; a single bar would otherwise give an empty range
	barChart.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: top}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf("%.2f", vf)
		}
		return ""
	}

	if err := barChart.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
