package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faopulse/pkg/contracts/domain"
)

// snapshotA and snapshotB are the two-day scenario used throughout: FII adds
// 50 long index futures, 10 long calls, and sheds 10 long puts on day B.
func snapshotA() domain.Snapshot {
	return domain.NewSnapshot(date(2025, 7, 16), map[domain.Participant]domain.ParticipantRecord{
		domain.ParticipantFII: {
			FutureIndexLong:      100,
			FutureIndexShort:     80,
			OptionIndexCallLong:  50,
			OptionIndexCallShort: 30,
			OptionIndexPutLong:   20,
			OptionIndexPutShort:  40,
		},
	})
}

func snapshotB() domain.Snapshot {
	return domain.NewSnapshot(date(2025, 7, 17), map[domain.Participant]domain.ParticipantRecord{
		domain.ParticipantFII: {
			FutureIndexLong:      150,
			FutureIndexShort:     80,
			OptionIndexCallLong:  60,
			OptionIndexCallShort: 30,
			OptionIndexPutLong:   10,
			OptionIndexPutShort:  40,
		},
	})
}

func findActivity(t *testing.T, rows []ActivityRow, p domain.Participant, bucket Bucket) ActivityRow {
	t.Helper()
	for _, row := range rows {
		if row.Participant == p && row.Bucket == bucket {
			return row
		}
	}
	t.Fatalf("no activity row for %s/%s", p, bucket)
	return ActivityRow{}
}

func TestSentimentFormulas(t *testing.T) {
	rows := Sentiment(snapshotB())
	require.Len(t, rows, 1, "absent participants are skipped, not errored")

	fii := rows[0]
	assert.Equal(t, domain.ParticipantFII, fii.Participant)
	assert.Equal(t, int64(30), fii.CallDiff)
	assert.Equal(t, int64(-30), fii.PutDiff)
	assert.Equal(t, int64(60), fii.NetSentiment)

	// The identities hold exactly, integer arithmetic throughout.
	assert.Equal(t, fii.NetSentiment, fii.CallDiff-fii.PutDiff)
}

func TestSentimentCanonicalOrder(t *testing.T) {
	records := map[domain.Participant]domain.ParticipantRecord{
		domain.ParticipantClient: {OptionIndexCallLong: 1},
		domain.ParticipantFII:    {OptionIndexCallLong: 2},
		domain.ParticipantDII:    {OptionIndexCallLong: 3},
		domain.ParticipantPro:    {OptionIndexCallLong: 4},
	}
	rows := Sentiment(domain.NewSnapshot(date(2025, 7, 17), records))

	require.Len(t, rows, 4)
	assert.Equal(t, domain.ParticipantFII, rows[0].Participant)
	assert.Equal(t, domain.ParticipantPro, rows[1].Participant)
	assert.Equal(t, domain.ParticipantDII, rows[2].Participant)
	assert.Equal(t, domain.ParticipantClient, rows[3].Participant)
	assert.Equal(t, "RETAIL", rows[3].DisplayName)
}

func TestDeltasPerFieldChange(t *testing.T) {
	rows := Deltas(snapshotA(), snapshotB())
	require.Len(t, rows, 1)

	change := rows[0].Change
	assert.Equal(t, int64(50), change.FutureIndexLong)
	assert.Equal(t, int64(0), change.FutureIndexShort)
	assert.Equal(t, int64(10), change.OptionIndexCallLong)
	assert.Equal(t, int64(-10), change.OptionIndexPutLong)
	assert.Equal(t, int64(0), change.OptionIndexPutShort)
}

func TestDeltasAntisymmetric(t *testing.T) {
	forward := Deltas(snapshotA(), snapshotB())[0].Change
	backward := Deltas(snapshotB(), snapshotA())[0].Change

	assert.Equal(t, forward.FutureIndexLong, -backward.FutureIndexLong)
	assert.Equal(t, forward.FutureIndexShort, -backward.FutureIndexShort)
	assert.Equal(t, forward.FutureStockLong, -backward.FutureStockLong)
	assert.Equal(t, forward.FutureStockShort, -backward.FutureStockShort)
	assert.Equal(t, forward.OptionIndexCallLong, -backward.OptionIndexCallLong)
	assert.Equal(t, forward.OptionIndexPutLong, -backward.OptionIndexPutLong)
	assert.Equal(t, forward.OptionIndexCallShort, -backward.OptionIndexCallShort)
	assert.Equal(t, forward.OptionIndexPutShort, -backward.OptionIndexPutShort)
}

func TestDeltasSelfComparisonIsZero(t *testing.T) {
	rows := Deltas(snapshotB(), snapshotB())
	require.Len(t, rows, 1)

	assert.Equal(t, domain.ParticipantRecord{}, rows[0].Change)
	assert.Equal(t, int64(0), rows[0].IndexFutures.NetChange)
}

func TestDeltasParticipantMissingFromPrior(t *testing.T) {
	prior := domain.NewSnapshot(date(2025, 7, 16), map[domain.Participant]domain.ParticipantRecord{})
	rows := Deltas(prior, snapshotB())
	require.Len(t, rows, 1)

	// Deltas against a zero record: the change equals the current values.
	assert.Equal(t, int64(150), rows[0].Change.FutureIndexLong)
	assert.Equal(t, int64(70), rows[0].IndexFutures.NetChange)
}

func TestFuturesPositionSplit(t *testing.T) {
	rows := Deltas(snapshotA(), snapshotB())
	idx := rows[0].IndexFutures

	assert.Equal(t, int64(150), idx.Longs)
	assert.Equal(t, int64(80), idx.Shorts)
	assert.InDelta(t, 65.2, idx.LongPct, 0.001)
	assert.InDelta(t, 34.8, idx.ShortPct, 0.001)
	assert.InDelta(t, 100, idx.LongPct+idx.ShortPct, 0.11)
	assert.Equal(t, int64(50), idx.NetChange)
}

func TestFuturesPositionZeroDenominator(t *testing.T) {
	// No stock futures held on either side: the split ties at 50/50.
	rows := Deltas(snapshotA(), snapshotB())
	stock := rows[0].StockFutures

	assert.Equal(t, float64(50), stock.LongPct)
	assert.Equal(t, float64(50), stock.ShortPct)
	assert.Equal(t, int64(0), stock.NetChange)
}

func TestActivityScenario(t *testing.T) {
	rows, overall := Activity(snapshotA(), snapshotB())

	// Future: (150-80)-(100-80) = 50 > 0.
	future := findActivity(t, rows, domain.ParticipantFII, BucketFuture)
	assert.Equal(t, int64(50), future.Change)
	assert.Equal(t, "Bought Futures", future.Activity)
	assert.Equal(t, SignalBullish, future.Signal)

	// Call: (60-30)-(50-30) = 10 > 0.
	call := findActivity(t, rows, domain.ParticipantFII, BucketCall)
	assert.Equal(t, int64(10), call.Change)
	assert.Equal(t, "Bought Calls", call.Activity)
	assert.Equal(t, SignalBullish, call.Signal)

	// Put: (10-40)-(20-40) = -10 <= 0, and selling puts reads bullish.
	put := findActivity(t, rows, domain.ParticipantFII, BucketPut)
	assert.Equal(t, int64(-10), put.Change)
	assert.Equal(t, "Sold Puts", put.Activity)
	assert.Equal(t, SignalBullish, put.Signal)

	// FII score: +2 futures, +1 calls, +1 puts.
	assert.Equal(t, 4, overall.Score)
	assert.Equal(t, TrendBullish, overall.Label)
}

func TestActivityPutPolarityInverted(t *testing.T) {
	// Same positive net change in every bucket: Future and Call read bullish,
	// Put reads bearish.
	prior := domain.NewSnapshot(date(2025, 7, 16), map[domain.Participant]domain.ParticipantRecord{
		domain.ParticipantFII: {},
	})
	current := domain.NewSnapshot(date(2025, 7, 17), map[domain.Participant]domain.ParticipantRecord{
		domain.ParticipantFII: {
			FutureIndexLong:     10,
			OptionIndexCallLong: 10,
			OptionIndexPutLong:  10,
		},
	})

	rows, _ := Activity(prior, current)

	assert.Equal(t, SignalBullish, findActivity(t, rows, domain.ParticipantFII, BucketFuture).Signal)
	assert.Equal(t, SignalBullish, findActivity(t, rows, domain.ParticipantFII, BucketCall).Signal)

	put := findActivity(t, rows, domain.ParticipantFII, BucketPut)
	assert.Equal(t, "Bought Puts", put.Activity)
	assert.Equal(t, SignalBearish, put.Signal)
}

func TestActivityScoreOnlyCountsFII(t *testing.T) {
	_, base := Activity(snapshotA(), snapshotB())

	// Pile a huge bearish move onto DII: the overall label must not move.
	withDII := func(s domain.Snapshot, rec domain.ParticipantRecord) domain.Snapshot {
		records := map[domain.Participant]domain.ParticipantRecord{
			domain.ParticipantFII: s.Records[domain.ParticipantFII],
			domain.ParticipantDII: rec,
		}
		return domain.NewSnapshot(s.Date, records)
	}
	prior := withDII(snapshotA(), domain.ParticipantRecord{FutureIndexLong: 1_000_000})
	current := withDII(snapshotB(), domain.ParticipantRecord{FutureIndexShort: 1_000_000})

	_, perturbed := Activity(prior, current)
	assert.Equal(t, base.Score, perturbed.Score)
	assert.Equal(t, base.Label, perturbed.Label)
}

func TestTrendLabelBands(t *testing.T) {
	tests := []struct {
		score int
		want  TrendLabel
	}{
		{4, TrendBullish},
		{2, TrendBullish},
		{1, TrendNeutral},
		{0, TrendNeutral},
		{-1, TrendNeutral},
		{-2, TrendBearish},
		{-4, TrendBearish},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trendLabel(tt.score), "score %d", tt.score)
	}
}

func TestTrendSeries(t *testing.T) {
	window := []domain.Snapshot{snapshotA(), snapshotB()}
	points := Trend(window)

	require.Len(t, points, 2, "one point per present participant per day")
	assert.Equal(t, date(2025, 7, 16), points[0].Date)
	assert.Equal(t, int64(40), points[0].NetSentiment) // (50-30)-(20-40)
	assert.Equal(t, date(2025, 7, 17), points[1].Date)
	assert.Equal(t, int64(60), points[1].NetSentiment)
}

func TestBuildDashboard(t *testing.T) {
	window := []domain.Snapshot{snapshotA(), snapshotB()}
	d := BuildDashboard(snapshotA(), snapshotB(), window)

	assert.Equal(t, date(2025, 7, 17), d.Date)
	assert.Equal(t, date(2025, 7, 16), d.PriorDate)
	assert.Len(t, d.Sentiment, 1)
	assert.Len(t, d.Deltas, 1)
	assert.Len(t, d.Activity, 12, "three buckets for each of the four categories")
	assert.Equal(t, TrendBullish, d.Overall.Label)
	assert.Len(t, d.Trend, 2)
}

// Engine inputs are borrowed, never mutated.
func TestEngineDoesNotMutateSnapshots(t *testing.T) {
	a, b := snapshotA(), snapshotB()
	before := a.Records[domain.ParticipantFII]

	BuildDashboard(a, b, []domain.Snapshot{a, b})

	assert.Equal(t, before, a.Records[domain.ParticipantFII])
}
