// Package fetch obtains raw participant-wise open interest snapshots, one CSV
// file per trading day, using a cache-or-fetch policy over a local data
// directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"faopulse/internal/config"
	apperrors "faopulse/internal/errors"
)

// Fetcher downloads per-day snapshot files and persists them in the data
// directory. Files for a historical date never change upstream, so a cache
// hit short-circuits the network unconditionally; concurrent writers for the
// same date produce identical bytes and the last write wins.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	referer   string
	dataDir   string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a fetcher for the configured snapshot source.
func New(cfg config.SourceConfig, dataDir string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 2
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		referer:   cfg.Referer,
		dataDir:   dataDir,
		limiter:   rate.NewLimiter(rate.Limit(rps), cfg.MaxConcurrency),
		logger:    logger.With(slog.String("component", "fetcher")),
	}
}

// DateString encodes a date in the DDMMYYYY form used by both the upstream
// file name and the cache key.
func DateString(date time.Time) string {
	return date.Format(config.SnapshotDateFormat)
}

// CachePath returns the local cache file path for a trading date.
func (f *Fetcher) CachePath(date time.Time) string {
	return filepath.Join(f.dataDir, DateString(date)+".csv")
}

// URL returns the upstream snapshot URL for a trading date.
func (f *Fetcher) URL(date time.Time) string {
	return fmt.Sprintf("%s/"+config.SnapshotFilePattern, f.baseURL, DateString(date))
}

// Fetch returns the raw snapshot bytes for the given trading day. The local
// cache is consulted first; on a miss the file is downloaded and persisted
// before returning. A non-2xx response or network error yields a FetchError,
// which callers walking a window treat as "no data for this date".
func (f *Fetcher) Fetch(ctx context.Context, date time.Time) ([]byte, error) {
	path := f.CachePath(date)

	if data, err := os.ReadFile(path); err == nil {
		cacheHits.Inc()
		f.logger.DebugContext(ctx, "snapshot cache hit",
			slog.String("date", DateString(date)),
			slog.String("path", path))
		return data, nil
	}
	cacheMisses.Inc()

	data, err := f.download(ctx, date)
	if err != nil {
		fetchFailures.Inc()
		return nil, err
	}

	if err := f.persist(ctx, path, data); err != nil {
		// The snapshot itself is good; a cache write failure only costs a
		// re-download next time.
		f.logger.WarnContext(ctx, "failed to persist snapshot to cache",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}

	return data, nil
}

// download performs the upstream GET for one date.
func (f *Fetcher) download(ctx context.Context, date time.Time) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewFetchError(date, err)
	}

	url := f.URL(date)
	f.logger.InfoContext(ctx, "downloading snapshot",
		slog.String("date", DateString(date)),
		slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(date, err)
	}

	// The archive rejects requests without browser headers.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", f.referer)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewFetchError(date, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewFetchError(date, err)
	}

	fetchBytes.Add(float64(len(data)))
	f.logger.InfoContext(ctx, "snapshot downloaded",
		slog.String("date", DateString(date)),
		slog.Int("bytes", len(data)))

	return data, nil
}

// persist writes snapshot bytes to the cache. Last writer wins: identical
// content for a given date makes races harmless.
func (f *Fetcher) persist(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create cache directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError("failed to write snapshot cache file", err)
	}
	return nil
}
