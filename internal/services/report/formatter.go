// Package report formats aggregated snapshots for presentation
package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// Round2 rounds v to two decimal places, half away from zero, on the shortest
// decimal form of v. This differs from half-to-even rounding of the binary
// float: Round2(1.005) is 1.01 where numpy-style rounding gives 1.0.
// Overall return is derived from the unrounded total gain/loss, so a rounded
// cell may differ in the last digit from a return computed on rounded inputs.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format builds the display table for a snapshot: the totals row is appended
// to the position rows, every monetary and percentage cell is rounded to two
// decimals, and rows are sorted by market value descending. The totals row
// is sorted like any other row.
func Format(snap *models.Snapshot) *models.DisplayTable {
	rows := make([]models.DisplayRow, 0, len(snap.Rows)+1)
	for _, r := range snap.Rows {
		rows = append(rows, displayRow(r))
	}
	rows = append(rows, displayRow(snap.Totals))

	return Normalize(&models.DisplayTable{Columns: models.Columns, Rows: rows})
}

// Normalize rounds and sorts an existing table. Applying it to its own
// output returns an identical table.
func Normalize(table *models.DisplayTable) *models.DisplayTable {
	rows := make([]models.DisplayRow, len(table.Rows))
	for i, r := range table.Rows {
		r.MarketValue = round(r.MarketValue)
		r.LastPrice = round(r.LastPrice)
		r.DayChange = round(r.DayChange)
		r.DayChangePct = round(r.DayChangePct)
		r.DayGainLoss = round(r.DayGainLoss)
		r.CostBasis = round(r.CostBasis)
		r.TotalGainLoss = round(r.TotalGainLoss)
		r.OverallReturnPct = round(r.OverallReturnPct)
		rows[i] = r
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MarketValue.Or(0) > rows[j].MarketValue.Or(0)
	})

	columns := make([]string, len(models.Columns))
	copy(columns, models.Columns)
	return &models.DisplayTable{Columns: columns, Rows: rows}
}

func displayRow(r models.Row) models.DisplayRow {
	return models.DisplayRow{
		Name:             r.Name,
		Symbol:           r.Symbol,
		Shares:           r.Shares,
		MarketValue:      models.Some(r.MarketValue),
		LastPrice:        r.LastPrice,
		DayChange:        r.DayChange,
		DayChangePct:     r.DayChangePct,
		DayGainLoss:      models.Some(r.DayGainLoss),
		CostBasis:        models.Some(r.CostBasis),
		TotalGainLoss:    models.Some(r.TotalGainLoss),
		OverallReturnPct: r.OverallReturnPct,
		Account:          r.Account,
		IsTotals:         r.IsTotals,
	}
}

func round(o models.Optional) models.Optional {
	return o.Map(Round2)
}

// Cell renders a numeric cell with two decimals, or "" when absent.
func Cell(o models.Optional) string {
	if !o.Valid() {
		return ""
	}
	return fmt.Sprintf("%.2f", o.Value())
}

// Cells renders a display row in column order.
func Cells(r models.DisplayRow) []string {
	return []string{
		r.Name,
		r.Symbol,
		Cell(r.Shares),
		Cell(r.MarketValue),
		Cell(r.LastPrice),
		Cell(r.DayChange),
		Cell(r.DayChangePct),
		Cell(r.DayGainLoss),
		Cell(r.CostBasis),
		Cell(r.TotalGainLoss),
		Cell(r.OverallReturnPct),
		r.Account,
	}
}
