package report

import (
	"sort"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// ByConcentration returns a copy of rows sorted by concentration descending.
// Rows without a concentration sort last.
func ByConcentration(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].ConcentrationPct, out[j].ConcentrationPct
		if ci.Valid() != cj.Valid() {
			return ci.Valid()
		}
		return ci.Value() > cj.Value()
	})
	return out
}
