package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"faopulse/internal/calendar"
	"faopulse/internal/config"
	"faopulse/internal/dataprocessing"
	"faopulse/internal/infrastructure"
)

// PositioningService runs the pipeline end to end for one request: resolve
// the trading day, collect snapshots, derive metrics. It holds no mutable
// state between requests; every call recomputes from the snapshot cache.
type PositioningService struct {
	window *dataprocessing.Window
	cal    *calendar.Calendar
	logger *slog.Logger
}

// NewPositioningService creates the positioning service.
func NewPositioningService(window *dataprocessing.Window, cal *calendar.Calendar, logger *slog.Logger) *PositioningService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositioningService{
		window: window,
		cal:    cal,
		logger: logger.With(slog.String("service", "positioning")),
	}
}

// Dashboard builds the full metrics contract for the latest trading day at
// or before asOf: latest and prior snapshots, single-day sentiment, deltas,
// the activity narrative with the overall trend, and the fixed-length
// sentiment trend series.
func (s *PositioningService) Dashboard(ctx context.Context, asOf time.Time) (dataprocessing.Dashboard, error) {
	ctx, span := infrastructure.StartSpan(ctx, "positioning.dashboard",
		attribute.String("as_of", asOf.Format("2006-01-02")))
	defer span.End()

	current, prior, err := s.window.Pair(ctx, asOf)
	if err != nil {
		return dataprocessing.Dashboard{}, err
	}

	// The pair came from the cache-or-fetch walk, so the trend collection
	// below is mostly cache hits. A trend shortfall never fails the
	// dashboard; at worst the series carries fewer days.
	trend, err := s.window.Collect(ctx, asOf, config.TrendWindowDays, 0)
	if err != nil {
		s.logger.WarnContext(ctx, "trend window unavailable",
			slog.String("as_of", asOf.Format("2006-01-02")),
			slog.String("error", err.Error()))
		trend = nil
	}

	dash := dataprocessing.BuildDashboard(prior, current, trend)
	s.logger.InfoContext(ctx, "dashboard computed",
		slog.String("date", dash.Date.Format("2006-01-02")),
		slog.String("prior_date", dash.PriorDate.Format("2006-01-02")),
		slog.Int("trend_points", len(dash.Trend)),
		slog.String("overall", string(dash.Overall.Label)))
	return dash, nil
}

// Trend returns the per-participant net sentiment series for up to days
// trading days ending at or before asOf.
func (s *PositioningService) Trend(ctx context.Context, asOf time.Time, days int) ([]dataprocessing.TrendPoint, error) {
	ctx, span := infrastructure.StartSpan(ctx, "positioning.trend",
		attribute.Int("days", days))
	defer span.End()

	window, err := s.window.Collect(ctx, asOf, days, 0)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Trend(window), nil
}

// TradingDay resolves an arbitrary date to the trading day the pipeline
// would report on.
func (s *PositioningService) TradingDay(d time.Time) time.Time {
	return s.cal.Resolve(d)
}
