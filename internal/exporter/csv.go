package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"faopulse/internal/dataprocessing"
)

// CSVWriter exports dashboard tables as CSV files under a reports directory.
type CSVWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at the given reports directory.
func NewCSVWriter(reportsDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		reportsDir: reportsDir,
		logger:     logger.With(slog.String("component", "exporter")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := filepath.Join(w.reportsDir, name)

	w.logger.Info("writing CSV report",
		slog.String("path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteDashboard writes the sentiment and delta tables for one trading day.
// File names carry the trading date so successive runs never clobber history.
func (w *CSVWriter) WriteDashboard(dash dataprocessing.Dashboard) error {
	datePart := dash.Date.Format("2006-01-02")

	sentiment := make([][]string, 0, len(dash.Sentiment))
	for _, row := range dash.Sentiment {
		sentiment = append(sentiment, []string{
			row.DisplayName,
			formatInt(row.CallDiff),
			formatInt(row.PutDiff),
			formatInt(row.NetSentiment),
		})
	}
	if err := w.WriteCSV("sentiment_"+datePart+".csv", WriteOptions{
		Headers:   []string{"Participant", "Call Diff", "Put Diff", "Net Sentiment"},
		Records:   sentiment,
		BOMPrefix: true,
	}); err != nil {
		return err
	}

	deltas := make([][]string, 0, len(dash.Deltas))
	for _, row := range dash.Deltas {
		deltas = append(deltas, []string{
			row.DisplayName,
			formatInt(row.IndexFutures.Longs),
			formatInt(row.IndexFutures.Shorts),
			formatFloat(row.IndexFutures.LongPct),
			formatFloat(row.IndexFutures.ShortPct),
			formatInt(row.IndexFutures.NetChange),
			formatInt(row.StockFutures.Longs),
			formatInt(row.StockFutures.Shorts),
			formatInt(row.StockFutures.NetChange),
		})
	}
	return w.WriteCSV("positioning_"+datePart+".csv", WriteOptions{
		Headers: []string{
			"Participant",
			"Index Longs", "Index Shorts", "Index Long %", "Index Short %", "Index Net Change",
			"Stock Longs", "Stock Shorts", "Stock Net Change",
		},
		Records:   deltas,
		BOMPrefix: true,
	})
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
