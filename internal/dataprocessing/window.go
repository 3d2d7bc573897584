package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"faopulse/internal/calendar"
	"faopulse/internal/config"
	apperrors "faopulse/internal/errors"
	"faopulse/pkg/contracts/domain"
)

// SnapshotSource yields raw snapshot bytes for a trading date. The fetch
// package's cache-or-fetch Fetcher satisfies this.
type SnapshotSource interface {
	Fetch(ctx context.Context, date time.Time) ([]byte, error)
}

// Window assembles the most recent N loadable snapshots by walking the
// trading calendar backward from a target date. Dates that fail to fetch or
// parse are skipped, not fatal; the walk only fails when nothing at all can
// be collected within the lookback budget.
type Window struct {
	source      SnapshotSource
	cal         *calendar.Calendar
	concurrency int
	logger      *slog.Logger
}

// NewWindow creates a window collector over the given source and calendar.
func NewWindow(source SnapshotSource, cal *calendar.Calendar, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		source:      source,
		cal:         cal,
		concurrency: config.DefaultFetchConcurrency,
		logger:      logger.With(slog.String("component", "window")),
	}
}

// Collect returns up to n snapshots for the most recent trading days at or
// before end, ordered oldest to newest. At most budget trading dates are
// attempted; a budget of zero or less selects a date-driven bound of 3n so a
// long holiday run cannot extend the walk indefinitely. Fewer than n results
// is not an error; zero results is ErrInsufficientData.
func (w *Window) Collect(ctx context.Context, end time.Time, n, budget int) ([]domain.Snapshot, error) {
	if n <= 0 {
		return nil, nil
	}
	if budget <= 0 {
		budget = 3 * n
	}

	// Candidate trading dates, newest first.
	candidates := make([]time.Time, 0, budget)
	d := w.cal.Resolve(end)
	for i := 0; i < budget; i++ {
		candidates = append(candidates, d)
		d = w.cal.PrevTradingDay(d)
	}

	collected := make([]domain.Snapshot, 0, n)
	for len(collected) < n && len(candidates) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := candidates
		if len(batch) > w.concurrency {
			batch = batch[:w.concurrency]
		}
		candidates = candidates[len(batch):]

		for i, data := range w.fetchBatch(ctx, batch) {
			if len(collected) == n {
				break
			}
			date := batch[i]
			if data.err != nil {
				w.logger.WarnContext(ctx, "skipping date, fetch failed",
					slog.String("date", date.Format("2006-01-02")),
					slog.String("error", data.err.Error()))
				continue
			}
			snap, err := ParseSnapshot(data.raw, date)
			if err != nil {
				w.logger.WarnContext(ctx, "skipping date, load failed",
					slog.String("date", date.Format("2006-01-02")),
					slog.String("error", err.Error()))
				continue
			}
			collected = append(collected, snap)
		}
	}

	if len(collected) == 0 {
		return nil, apperrors.ErrInsufficientData
	}

	// Walk order is newest first; callers want oldest first.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected, nil
}

// Pair returns the latest loadable snapshot at or before end together with
// the prior one, using the fixed pair lookback budget. When only a single
// snapshot exists within the budget the prior degrades to the snapshot
// itself, so delta metrics come out as all zeroes rather than an error.
func (w *Window) Pair(ctx context.Context, end time.Time) (current, prior domain.Snapshot, err error) {
	snaps, err := w.Collect(ctx, end, 2, config.PairLookbackAttempts)
	if err != nil {
		return domain.Snapshot{}, domain.Snapshot{}, err
	}

	current = snaps[len(snaps)-1]
	prior = snaps[0]
	if len(snaps) == 1 {
		prior = current
	}
	return current, prior, nil
}

type fetchResult struct {
	raw []byte
	err error
}

// fetchBatch fetches a batch of distinct dates in parallel. Per-date failures
// are carried in the result slice, never returned, so one bad date cannot
// abort its batch.
func (w *Window) fetchBatch(ctx context.Context, dates []time.Time) []fetchResult {
	results := make([]fetchResult, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, date := range dates {
		g.Go(func() error {
			raw, err := w.source.Fetch(gctx, date)
			results[i] = fetchResult{raw: raw, err: err}
			return nil
		})
	}
	g.Wait()

	return results
}
