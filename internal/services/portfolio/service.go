// Package portfolio provides the valuation views over stored positions
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/models"
	"github.com/bobmcallan/portfoliology/internal/services/report"
)

// ErrRefreshFailed marks a refresh aborted by a terminal quote failure.
var ErrRefreshFailed = errors.New("refresh positions")

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	fetcher interfaces.PositionFetcher
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, fetcher interfaces.PositionFetcher, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// cashSummary holds account names and balances in storage order.
type cashSummary struct {
	names    []string
	balances map[string]float64
	total    float64
}

// GetSummary refreshes every position and returns the formatted positions table.
// Any terminal quote failure aborts the refresh; no partial table is returned.
func (s *Service) GetSummary(ctx context.Context) (*models.Summary, error) {
	snap, cash, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}

	table := report.Format(snap)
	totals, _ := table.Totals()

	return &models.Summary{
		RefreshID:    snap.RefreshID,
		Table:        table,
		Accounts:     cash.names,
		CashBalances: cash.balances,
		TotalCash:    cash.total,
		TotalValue:   cash.total + totals.MarketValue.Or(0),
		NumPositions: len(table.Rows) - 1,
		GeneratedAt:  snap.FetchedAt,
	}, nil
}

// GetAnalysis refreshes every position and returns unformatted rows with
// concentration, without a totals row.
func (s *Service) GetAnalysis(ctx context.Context) (*models.Analysis, error) {
	snap, cash, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}

	var value float64
	for _, r := range snap.Rows {
		value += r.MarketValue
	}

	return &models.Analysis{
		RefreshID:    snap.RefreshID,
		Rows:         snap.Rows,
		Accounts:     cash.names,
		CashBalances: cash.balances,
		TotalCash:    cash.total,
		TotalValue:   cash.total + value,
		NumPositions: len(snap.Rows),
		GeneratedAt:  snap.FetchedAt,
	}, nil
}

// refresh loads positions and accounts, fetches quotes and aggregates.
func (s *Service) refresh(ctx context.Context) (*models.Snapshot, *cashSummary, error) {
	refreshID := uuid.NewString()
	start := s.now()

	positions, err := s.storage.PositionStorage().ListPositions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load positions: %w", err)
	}
	accounts, err := s.storage.AccountStorage().ListAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	s.logger.Debug().
		Str("refresh_id", refreshID).
		Int("positions", len(positions)).
		Msg("Refreshing positions")

	records, err := s.fetcher.FetchAll(ctx, positions)
	if err != nil {
		s.logger.Error().Str("refresh_id", refreshID).Err(err).Msg("Position refresh failed")
		return nil, nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	snap := Aggregate(records)
	snap.RefreshID = refreshID
	snap.FetchedAt = start

	s.logger.Info().
		Str("refresh_id", refreshID).
		Int("positions", len(records)).
		Float64("market_value", snap.Totals.MarketValue).
		Msg("Positions refreshed")

	return snap, summarizeCash(accounts), nil
}

func summarizeCash(accounts []models.Account) *cashSummary {
	cash := &cashSummary{
		names:    make([]string, 0, len(accounts)),
		balances: make(map[string]float64, len(accounts)),
	}
	for _, a := range accounts {
		cash.names = append(cash.names, a.Name)
		cash.balances[a.Name] = a.CashBalance
		cash.total += a.CashBalance
	}
	return cash
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
