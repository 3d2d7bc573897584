package dataprocessing

import (
	"time"

	"faopulse/pkg/contracts/domain"
)

// SentimentRow carries the single-day derived metrics for one participant.
// All three values are exact integer arithmetic over contract counts.
type SentimentRow struct {
	Participant  domain.Participant `json:"participant"`
	DisplayName  string             `json:"display_name"`
	CallDiff     int64              `json:"call_diff"`
	PutDiff      int64              `json:"put_diff"`
	NetSentiment int64              `json:"net_sentiment"`
}

// FuturesPosition describes one futures bucket (index or stock) at the
// current snapshot: the raw long/short counts, their percentage split, and
// the net change against the prior snapshot. When a participant holds no
// contracts in the bucket both percentages default to 50.
type FuturesPosition struct {
	Longs     int64   `json:"longs"`
	Shorts    int64   `json:"shorts"`
	LongPct   float64 `json:"long_pct"`
	ShortPct  float64 `json:"short_pct"`
	NetChange int64   `json:"net_change"`
}

// DeltaRow carries the two-day metrics for one participant: the raw per-field
// change between prior and current, plus the positioning summary for each
// futures bucket.
type DeltaRow struct {
	Participant  domain.Participant       `json:"participant"`
	DisplayName  string                   `json:"display_name"`
	Change       domain.ParticipantRecord `json:"change"`
	IndexFutures FuturesPosition          `json:"index_futures"`
	StockFutures FuturesPosition          `json:"stock_futures"`
}

// Bucket identifies the instrument group an activity row describes.
type Bucket string

const (
	BucketFuture Bucket = "Future"
	BucketCall   Bucket = "Call"
	BucketPut    Bucket = "Put"
)

// Signal is the directional read of one activity row.
type Signal string

const (
	SignalBullish Signal = "Bullish"
	SignalBearish Signal = "Bearish"
)

// ActivityRow is one line of the bought/sold narrative: what a participant
// did in one instrument bucket between two days, and how to read it. The Put
// bucket's polarity is inverted relative to Future and Call: buying puts is a
// bearish signal.
type ActivityRow struct {
	Participant domain.Participant `json:"participant"`
	DisplayName string             `json:"display_name"`
	Bucket      Bucket             `json:"bucket"`
	Change      int64              `json:"change"`
	Activity    string             `json:"activity"`
	Signal      Signal             `json:"signal"`
}

// TrendLabel is the overall market read derived from FII activity alone.
type TrendLabel string

const (
	TrendBullish TrendLabel = "BULLISH"
	TrendBearish TrendLabel = "BEARISH"
	TrendNeutral TrendLabel = "NEUTRAL"
)

// OverallTrend is the signed FII activity score and its label. Futures moves
// weigh double the option moves.
type OverallTrend struct {
	Score int        `json:"score"`
	Label TrendLabel `json:"label"`
}

// TrendPoint is one sample of the N-day sentiment series. Days with no
// loadable snapshot are simply absent, never interpolated.
type TrendPoint struct {
	Date         time.Time          `json:"date"`
	Participant  domain.Participant `json:"participant"`
	NetSentiment int64              `json:"net_sentiment"`
}

// Dashboard is the full metrics contract consumed by the presentation layer:
// the latest snapshot with its single-day metrics, the prior snapshot with
// delta and activity metrics, and the multi-day sentiment trend.
type Dashboard struct {
	Date      time.Time       `json:"date"`
	PriorDate time.Time       `json:"prior_date"`
	Latest    domain.Snapshot `json:"latest"`
	Prior     domain.Snapshot `json:"prior"`
	Sentiment []SentimentRow  `json:"sentiment"`
	Deltas    []DeltaRow      `json:"deltas"`
	Activity  []ActivityRow   `json:"activity"`
	Overall   OverallTrend    `json:"overall"`
	Trend     []TrendPoint    `json:"trend,omitempty"`
}
