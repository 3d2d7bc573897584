package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faopulse_snapshot_cache_hits_total",
		Help: "Snapshot requests served from the local file cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faopulse_snapshot_cache_misses_total",
		Help: "Snapshot requests that required an upstream download",
	})
	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faopulse_snapshot_fetch_failures_total",
		Help: "Upstream snapshot downloads that failed (HTTP or network)",
	})
	fetchBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faopulse_snapshot_fetch_bytes_total",
		Help: "Bytes downloaded from the snapshot source",
	})
)
