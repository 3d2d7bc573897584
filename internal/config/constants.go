package config

import "time"

// Application constants for the FAO Pulse positioning service
const (
	AppName    = "FAO Pulse"
	AppVersion = "1.2.0"

	// Snapshot source. The archive publishes one participant-wise OI file per
	// trading day, named by the DDMMYYYY date string.
	DefaultBaseURL      = "https://nsearchives.nseindia.com/content/nsccl"
	SnapshotFilePattern = "fao_participant_oi_%s.csv"
	SnapshotDateFormat  = "02012006" // DDMMYYYY

	// The archive rejects requests without a browser User-Agent and Referer.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultReferer   = "https://www.nseindia.com"

	// Option chain source (collaborator input, JSON)
	OptionChainURL     = "https://www.nseindia.com/api/option-chain-indices?symbol=NIFTY"
	OptionChainReferer = "https://www.nseindia.com/option-chain"

	// Network timeouts
	DefaultFetchTimeout = 10 * time.Second

	// Fetch concurrency for multi-day windows
	DefaultFetchConcurrency = 5

	// Window walk limits
	PairLookbackAttempts = 10
	TrendWindowDays      = 5

	// API endpoints
	APIBasePath         = "/api"
	DashboardEndpoint   = "/api/dashboard"
	TrendEndpoint       = "/api/trend"
	OptionChainEndpoint = "/api/option-chain"
	HealthEndpoint      = "/api/health"
	MetricsEndpoint     = "/metrics"
)

// Snapshot CSV columns. Row 1 of each file is a disclaimer, row 2 the header;
// header cells may carry incidental padding and are trimmed before matching.
const (
	ColClientType           = "Client Type"
	ColFutureIndexLong      = "Future Index Long"
	ColFutureIndexShort     = "Future Index Short"
	ColFutureStockLong      = "Future Stock Long"
	ColFutureStockShort     = "Future Stock Short"
	ColOptionIndexCallLong  = "Option Index Call Long"
	ColOptionIndexPutLong   = "Option Index Put Long"
	ColOptionIndexCallShort = "Option Index Call Short"
	ColOptionIndexPutShort  = "Option Index Put Short"
)
