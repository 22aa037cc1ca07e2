package interfaces

import (
	"context"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// PositionFetcher refreshes quotes for a set of positions
type PositionFetcher interface {
	// FetchAll returns one record per position, or the first terminal error.
	FetchAll(ctx context.Context, positions []models.Position) ([]models.PositionRecord, error)
}

// PortfolioService builds the valuation views
type PortfolioService interface {
	// GetSummary refreshes all positions and returns the formatted summary table
	GetSummary(ctx context.Context) (*models.Summary, error)

	// GetAnalysis refreshes all positions and returns per-position concentration data
	GetAnalysis(ctx context.Context) (*models.Analysis, error)
}
