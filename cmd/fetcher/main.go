// Command fetcher downloads participant open interest snapshots into the
// local cache, either for a single date, a date range, or the last N trading
// days. With -export it also writes the positioning reports for the latest
// downloaded day.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"faopulse/internal/calendar"
	"faopulse/internal/config"
	"faopulse/internal/dataprocessing"
	"faopulse/internal/exporter"
	"faopulse/internal/fetch"
	"faopulse/internal/infrastructure"
)

func main() {
	dateStr := flag.String("date", "", "trading date to download (YYYY-MM-DD); defaults to today")
	fromStr := flag.String("from", "", "range start date (YYYY-MM-DD)")
	toStr := flag.String("to", "", "range end date (YYYY-MM-DD); defaults to today when -from is set")
	days := flag.Int("days", 0, "download the last N trading days instead of a single date")
	export := flag.Bool("export", false, "write CSV reports and the activity workbook for the latest downloaded day")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}

	holidays, err := cfg.LoadHolidays()
	if err != nil {
		logger.Error("failed to load holiday table", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cal := calendar.New(holidays)
	fetcher := fetch.New(cfg.Source, cfg.GetDataDir(), logger)

	dates, err := targetDates(cal, *dateStr, *fromStr, *toStr, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	downloaded := 0
	for _, d := range dates {
		if _, err := fetcher.Fetch(ctx, d); err != nil {
			logger.Warn("snapshot unavailable",
				slog.String("date", d.Format("2006-01-02")),
				slog.String("error", err.Error()))
			continue
		}
		downloaded++
	}

	logger.Info("download run complete",
		slog.Int("requested", len(dates)),
		slog.Int("downloaded", downloaded))

	if downloaded == 0 {
		fmt.Fprintln(os.Stderr, "Error: no snapshots could be downloaded")
		os.Exit(1)
	}

	if *export {
		if err := writeReports(ctx, cfg, cal, fetcher, dates[len(dates)-1], logger); err != nil {
			logger.Error("report export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

// targetDates resolves the flag combination to an ordered list of trading
// dates, oldest first.
func targetDates(cal *calendar.Calendar, dateStr, fromStr, toStr string, days int) ([]time.Time, error) {
	switch {
	case fromStr != "":
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid -from date %q", fromStr)
		}
		to := time.Now()
		if toStr != "" {
			if to, err = time.Parse("2006-01-02", toStr); err != nil {
				return nil, fmt.Errorf("invalid -to date %q", toStr)
			}
		}
		if to.Before(from) {
			return nil, fmt.Errorf("-to is before -from")
		}
		var dates []time.Time
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if cal.IsTradingDay(d) {
				dates = append(dates, d)
			}
		}
		return dates, nil

	case days > 0:
		dates := make([]time.Time, days)
		d := cal.Resolve(time.Now())
		for i := days - 1; i >= 0; i-- {
			dates[i] = d
			d = cal.PrevTradingDay(d)
		}
		return dates, nil

	default:
		target := time.Now()
		if dateStr != "" {
			parsed, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return nil, fmt.Errorf("invalid -date %q", dateStr)
			}
			target = parsed
		}
		return []time.Time{cal.Resolve(target)}, nil
	}
}

// writeReports runs the metrics engine over the cached snapshots and writes
// the CSV tables and the activity workbook.
func writeReports(ctx context.Context, cfg *config.Config, cal *calendar.Calendar, fetcher *fetch.Fetcher, latest time.Time, logger *slog.Logger) error {
	window := dataprocessing.NewWindow(fetcher, cal, logger)

	current, prior, err := window.Pair(ctx, latest)
	if err != nil {
		return err
	}
	trend, err := window.Collect(ctx, latest, config.TrendWindowDays, 0)
	if err != nil {
		trend = nil
	}
	dash := dataprocessing.BuildDashboard(prior, current, trend)

	writer := exporter.NewCSVWriter(cfg.Paths.ReportsDir, logger)
	if err := writer.WriteDashboard(dash); err != nil {
		return err
	}

	workbook := filepath.Join(cfg.Paths.ReportsDir, "activity_"+dash.Date.Format("2006-01-02")+".xlsx")
	if err := exporter.WriteActivityWorkbook(dash, workbook); err != nil {
		return err
	}

	logger.Info("reports written",
		slog.String("reports_dir", cfg.Paths.ReportsDir),
		slog.String("date", dash.Date.Format("2006-01-02")))
	return nil
}
