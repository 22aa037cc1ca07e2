package models

import "time"

// TotalsName is the name of the synthesized totals row.
const TotalsName = "Totals"

// Row is a position record with its derived metrics.
type Row struct {
	Name             string   `json:"name"`
	Symbol           string   `json:"symbol"`
	Shares           Optional `json:"shares"`
	LastPrice        Optional `json:"last_price"`
	DayChange        Optional `json:"day_change"`
	DayChangePct     Optional `json:"day_change_pct"`
	CostBasis        float64  `json:"cost_basis"`
	MarketValue      float64  `json:"market_value"`
	DayGainLoss      float64  `json:"day_gain_loss"`
	TotalGainLoss    float64  `json:"total_gain_loss"`
	OverallReturnPct Optional `json:"overall_return_pct"`
	ConcentrationPct Optional `json:"concentration_pct"`
	Account          string   `json:"account"`
	IsTotals         bool     `json:"is_totals,omitempty"`
}

// Snapshot is the aggregated result of one refresh cycle.
type Snapshot struct {
	RefreshID string    `json:"refresh_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Rows      []Row     `json:"rows"`
	Totals    Row       `json:"totals"`
}

// Columns is the fixed column set of a display table, in order.
var Columns = []string{
	"Name",
	"Symbol",
	"Shares",
	"Market Value ($)",
	"Last Price ($)",
	"Day's Change ($)",
	"Day's Change (%)",
	"Day's Gain/Loss ($)",
	"Cost Basis ($)",
	"Total Gain/Loss ($)",
	"Overall Return (%)",
	"Account",
}

// DisplayRow is a formatted table row. Numeric cells are rounded and may be
// empty; use the report package to turn them into strings.
type DisplayRow struct {
	Name             string   `json:"name"`
	Symbol           string   `json:"symbol"`
	Shares           Optional `json:"shares"`
	MarketValue      Optional `json:"market_value"`
	LastPrice        Optional `json:"last_price"`
	DayChange        Optional `json:"day_change"`
	DayChangePct     Optional `json:"day_change_pct"`
	DayGainLoss      Optional `json:"day_gain_loss"`
	CostBasis        Optional `json:"cost_basis"`
	TotalGainLoss    Optional `json:"total_gain_loss"`
	OverallReturnPct Optional `json:"overall_return_pct"`
	Account          string   `json:"account"`
	IsTotals         bool     `json:"is_totals,omitempty"`
}

// DisplayTable is the presentation-ready summary table.
type DisplayTable struct {
	Columns []string     `json:"columns"`
	Rows    []DisplayRow `json:"rows"`
}

// Totals returns the totals row of the table.
func (t *DisplayTable) Totals() (DisplayRow, bool) {
	for _, r := range t.Rows {
		if r.IsTotals {
			return r, true
		}
	}
	return DisplayRow{}, false
}

// Summary is the positions overview: the display table plus cash figures.
type Summary struct {
	RefreshID    string             `json:"refresh_id"`
	Table        *DisplayTable      `json:"table"`
	Accounts     []string           `json:"accounts"`
	CashBalances map[string]float64 `json:"cash_balances"`
	TotalCash    float64            `json:"total_cash"`
	TotalValue   float64            `json:"total_value"`
	NumPositions int                `json:"num_positions"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// Analysis is the concentration view: per-position rows without a totals row.
type Analysis struct {
	RefreshID    string             `json:"refresh_id"`
	Rows         []Row              `json:"rows"`
	Accounts     []string           `json:"accounts"`
	CashBalances map[string]float64 `json:"cash_balances"`
	TotalCash    float64            `json:"total_cash"`
	TotalValue   float64            `json:"total_value"`
	NumPositions int                `json:"num_positions"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
