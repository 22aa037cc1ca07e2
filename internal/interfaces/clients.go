// Package interfaces defines service contracts for Portfoliology
package interfaces

import (
	"context"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// QuoteClient provides access to the quote provider
type QuoteClient interface {
	// GetQuote retrieves the latest quote for one symbol. Rate limiting by
	// the provider is retried internally; any returned error is terminal.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}
