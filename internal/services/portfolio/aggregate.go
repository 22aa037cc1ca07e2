package portfolio

import (
	"github.com/bobmcallan/portfoliology/internal/models"
)

// Aggregate derives the per-position metrics and the totals row.
//
// Per row, in dependency order: market value, day's gain/loss, total
// gain/loss, overall return and concentration. The totals row sums cost
// basis, market value and day's gain/loss; its total gain/loss and overall
// return are derived afterwards by the same rule as every other row.
func Aggregate(records []models.PositionRecord) *models.Snapshot {
	rows := make([]models.Row, len(records))
	var totalCost, totalValue, totalDayGain float64

	for i, rec := range records {
		row := models.Row{
			Name:         rec.Name,
			Symbol:       rec.Symbol,
			Shares:       models.Some(rec.Shares),
			LastPrice:    models.Some(rec.LastPrice),
			DayChange:    models.Some(rec.DayChange),
			DayChangePct: models.Some(rec.DayChangePct),
			CostBasis:    rec.CostBasis,
			MarketValue:  rec.Shares * rec.LastPrice,
			DayGainLoss:  rec.Shares * rec.DayChange,
			Account:      rec.Account,
		}
		deriveReturns(&row)

		totalCost += row.CostBasis
		totalValue += row.MarketValue
		totalDayGain += row.DayGainLoss
		rows[i] = row
	}

	for i := range rows {
		rows[i].ConcentrationPct = percentOf(rows[i].MarketValue, totalValue)
	}

	totals := models.Row{
		Name:         models.TotalsName,
		CostBasis:    totalCost,
		MarketValue:  totalValue,
		DayGainLoss:  totalDayGain,
		DayChangePct: percentOf(totalDayGain, totalValue),
		IsTotals:     true,
	}
	deriveReturns(&totals)

	return &models.Snapshot{
		Rows:   rows,
		Totals: totals,
	}
}

// deriveReturns fills total gain/loss and overall return from market value and cost basis.
func deriveReturns(row *models.Row) {
	row.TotalGainLoss = row.MarketValue - row.CostBasis
	row.OverallReturnPct = percentOf(row.TotalGainLoss, row.CostBasis)
}

// percentOf returns 100*part/whole, absent when whole is zero.
func percentOf(part, whole float64) models.Optional {
	if whole == 0 {
		return models.None()
	}
	return models.Some(100 * part / whole)
}
