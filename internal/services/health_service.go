package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"faopulse/internal/config"
)

// HealthService reports process and pipeline health.
type HealthService struct {
	version   string
	dataDir   string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version"`
	Uptime    string       `json:"uptime"`
	Runtime   RuntimeStats `json:"runtime"`
	Cache     CacheStats   `json:"cache"`
}

// RuntimeStats carries process-level details.
type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Goroutines int    `json:"goroutines"`
}

// CacheStats summarizes the local snapshot cache.
type CacheStats struct {
	Snapshots  int   `json:"snapshots"`
	TotalBytes int64 `json:"total_bytes"`
}

// NewHealthService creates the health service.
func NewHealthService(dataDir string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   config.AppVersion,
		dataDir:   dataDir,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Health returns the current health status. The service is degraded only
// when the snapshot cache directory is unreadable; an empty cache is healthy
// (it fills on first request).
func (s *HealthService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: RuntimeStats{
			GoVersion:  runtime.Version(),
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Goroutines: runtime.NumGoroutine(),
		},
	}

	cache, err := s.cacheStats()
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot cache unreadable",
			slog.String("data_dir", s.dataDir),
			slog.String("error", err.Error()))
		status.Status = "degraded"
		return status
	}
	status.Cache = cache
	return status
}

// cacheStats counts the cached snapshot files under the data directory.
func (s *HealthService) cacheStats() (CacheStats, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return CacheStats{}, err
	}

	var stats CacheStats
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		stats.Snapshots++
		if info, err := entry.Info(); err == nil {
			stats.TotalBytes += info.Size()
		}
	}
	return stats, nil
}
