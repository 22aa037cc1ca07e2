package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// FormatMoney renders a dollar amount with thousands separators, e.g. $1,234.50.
func FormatMoney(v float64) string {
	return money.NewFromFloat(v, money.USD).Display()
}

// FormatTable renders a display table as a Markdown table. Empty cells stay empty.
func FormatTable(table *models.DisplayTable) string {
	var sb strings.Builder

	sb.WriteString("| " + strings.Join(table.Columns, " | ") + " |\n")
	sb.WriteString("|")
	for range table.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, r := range table.Rows {
		cells := Cells(r)
		if r.IsTotals {
			cells[0] = "**" + cells[0] + "**"
		}
		for i, c := range cells {
			cells[i] = escapeCell(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return sb.String()
}

// FormatSummary renders the positions overview as Markdown.
func FormatSummary(s *models.Summary) string {
	var sb strings.Builder

	sb.WriteString("# Positions\n\n")
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", FormatMoney(s.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Cash:** %s\n", FormatMoney(s.TotalCash)))
	sb.WriteString(fmt.Sprintf("**Positions:** %d\n\n", s.NumPositions))

	if len(s.Accounts) > 0 {
		sb.WriteString("## Cash Balances\n\n")
		sb.WriteString("| Account | Cash ($) |\n|---|---|\n")
		for _, name := range s.Accounts {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(name), FormatMoney(s.CashBalances[name])))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Holdings\n\n")
	sb.WriteString(FormatTable(s.Table))

	return sb.String()
}

// FormatAnalysis renders the concentration view as Markdown, largest position first.
func FormatAnalysis(a *models.Analysis) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Analysis\n\n")
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", FormatMoney(a.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Cash:** %s\n", FormatMoney(a.TotalCash)))
	sb.WriteString(fmt.Sprintf("**Positions:** %d\n\n", a.NumPositions))

	sb.WriteString("| Symbol | Market Value ($) | Concentration (%) | Overall Return (%) | Account |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, r := range ByConcentration(a.Rows) {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s | %s |\n",
			escapeCell(r.Symbol),
			Round2(r.MarketValue),
			Cell(round(r.ConcentrationPct)),
			Cell(round(r.OverallReturnPct)),
			escapeCell(r.Account),
		))
	}

	return sb.String()
}

// RenderTerminal styles Markdown for display in a terminal.
func RenderTerminal(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
