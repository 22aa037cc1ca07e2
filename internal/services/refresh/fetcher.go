// Package refresh fetches quotes for a set of positions across a fixed worker pool
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/models"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 10

// ErrInvalidConcurrency is returned when the worker count is not positive.
var ErrInvalidConcurrency = errors.New("refresh concurrency must be positive")

// Fetcher turns positions into position records using N concurrent workers.
type Fetcher struct {
	quotes      interfaces.QuoteClient
	concurrency int
	logger      *common.Logger
}

// NewFetcher creates a fetcher with the given worker count.
// logger may be nil, in which case output is discarded.
func NewFetcher(quotes interfaces.QuoteClient, concurrency int, logger *common.Logger) (*Fetcher, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Fetcher{
		quotes:      quotes,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// Concurrency returns the number of workers launched per FetchAll.
func (f *Fetcher) Concurrency() int {
	return f.concurrency
}

// Partition splits positions into n interleaved partitions: the position at
// index i goes to partition i mod n. Order within a partition follows the input.
// Always returns n partitions, some possibly empty.
func Partition(positions []models.Position, n int) [][]models.Position {
	if n <= 0 {
		return nil
	}
	parts := make([][]models.Position, n)
	for i, p := range positions {
		parts[i%n] = append(parts[i%n], p)
	}
	return parts
}

// FetchAll launches exactly one worker per partition and waits for all of
// them. Each worker owns its result slice; slices are merged after the
// barrier. A failing worker stops at its first error without cancelling its
// siblings. When any worker failed, the error of the lowest-numbered
// failing worker is returned and no records are.
func (f *Fetcher) FetchAll(ctx context.Context, positions []models.Position) ([]models.PositionRecord, error) {
	start := time.Now()
	parts := Partition(positions, f.concurrency)

	results := make([][]models.PositionRecord, len(parts))
	errs := make([]error, len(parts))

	var g errgroup.Group
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			results[i], errs[i] = f.work(ctx, i, part)
			return errs[i]
		})
	}

	if err := g.Wait(); err != nil {
		for _, werr := range errs {
			if werr != nil {
				f.logger.Warn().
					Err(werr).
					Int("workers", len(parts)).
					Int("positions", len(positions)).
					Msg("Quote refresh failed")
				return nil, werr
			}
		}
	}

	records := make([]models.PositionRecord, 0, len(positions))
	for _, r := range results {
		records = append(records, r...)
	}

	f.logger.Info().
		Int("workers", len(parts)).
		Int("positions", len(positions)).
		Dur("duration", time.Since(start)).
		Msg("Quote refresh complete")

	return records, nil
}

// work processes one partition sequentially.
func (f *Fetcher) work(ctx context.Context, worker int, part []models.Position) ([]models.PositionRecord, error) {
	records := make([]models.PositionRecord, 0, len(part))
	for _, pos := range part {
		quote, err := f.quotes.GetQuote(ctx, pos.Symbol)
		if err != nil {
			f.logger.Debug().
				Int("worker", worker).
				Str("symbol", pos.Symbol).
				Err(err).
				Msg("Quote worker stopped")
			return nil, err
		}
		records = append(records, models.NewPositionRecord(pos, *quote))
	}

	f.logger.Debug().
		Int("worker", worker).
		Int("positions", len(part)).
		Msg("Quote worker finished")

	return records, nil
}

// Ensure Fetcher implements PositionFetcher
var _ interfaces.PositionFetcher = (*Fetcher)(nil)
