package dataprocessing

import (
	"math"

	"faopulse/pkg/contracts/domain"
)

// Sentiment computes the single-day derived metrics for every participant
// present in the snapshot, in canonical report order. It is a total function:
// absent participants are skipped, never errored.
func Sentiment(s domain.Snapshot) []SentimentRow {
	rows := make([]SentimentRow, 0, len(domain.Participants))
	for _, p := range domain.Participants {
		rec, ok := s.Record(p)
		if !ok {
			continue
		}
		callDiff := rec.OptionIndexCallLong - rec.OptionIndexCallShort
		putDiff := rec.OptionIndexPutLong - rec.OptionIndexPutShort
		rows = append(rows, SentimentRow{
			Participant:  p,
			DisplayName:  p.DisplayName(),
			CallDiff:     callDiff,
			PutDiff:      putDiff,
			NetSentiment: callDiff - putDiff,
		})
	}
	return rows
}

// Deltas computes the two-day metrics between prior and current for every
// participant present in the current snapshot: the raw per-field change plus
// the index and stock futures positioning at current. A participant missing
// from the prior snapshot deltas against a zero record.
func Deltas(prior, current domain.Snapshot) []DeltaRow {
	rows := make([]DeltaRow, 0, len(domain.Participants))
	for _, p := range domain.Participants {
		curr, ok := current.Record(p)
		if !ok {
			continue
		}
		prev, _ := prior.Record(p)

		rows = append(rows, DeltaRow{
			Participant: p,
			DisplayName: p.DisplayName(),
			Change:      fieldChanges(prev, curr),
			IndexFutures: futuresPosition(
				curr.FutureIndexLong, curr.FutureIndexShort,
				prev.FutureIndexLong, prev.FutureIndexShort),
			StockFutures: futuresPosition(
				curr.FutureStockLong, curr.FutureStockShort,
				prev.FutureStockLong, prev.FutureStockShort),
		})
	}
	return rows
}

// fieldChanges returns curr minus prev for every tracked field.
func fieldChanges(prev, curr domain.ParticipantRecord) domain.ParticipantRecord {
	return domain.ParticipantRecord{
		FutureIndexLong:      curr.FutureIndexLong - prev.FutureIndexLong,
		FutureIndexShort:     curr.FutureIndexShort - prev.FutureIndexShort,
		FutureStockLong:      curr.FutureStockLong - prev.FutureStockLong,
		FutureStockShort:     curr.FutureStockShort - prev.FutureStockShort,
		OptionIndexCallLong:  curr.OptionIndexCallLong - prev.OptionIndexCallLong,
		OptionIndexPutLong:   curr.OptionIndexPutLong - prev.OptionIndexPutLong,
		OptionIndexCallShort: curr.OptionIndexCallShort - prev.OptionIndexCallShort,
		OptionIndexPutShort:  curr.OptionIndexPutShort - prev.OptionIndexPutShort,
	}
}

// futuresPosition summarizes one futures bucket at the current snapshot. The
// percentage split defaults to 50/50 when the participant holds no contracts
// in the bucket, a defined tie-break rather than an error.
func futuresPosition(longs, shorts, prevLongs, prevShorts int64) FuturesPosition {
	pos := FuturesPosition{
		Longs:     longs,
		Shorts:    shorts,
		LongPct:   50,
		ShortPct:  50,
		NetChange: (longs - shorts) - (prevLongs - prevShorts),
	}
	if total := longs + shorts; total > 0 {
		pos.LongPct = round1(float64(longs) / float64(total) * 100)
		pos.ShortPct = round1(float64(shorts) / float64(total) * 100)
	}
	return pos
}

// round1 rounds to one decimal place, the precision the dashboard displays.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Activity builds the bought/sold narrative between two days and the overall
// trend label. For each participant and each instrument bucket the net
// position change decides the row: a positive change is a buy, otherwise a
// sell. Future and Call buys read bullish; Put polarity is inverted, so a Put
// buy reads bearish. The overall score accumulates from FII rows only, with
// futures weighted at 2 and each option bucket at 1.
func Activity(prior, current domain.Snapshot) ([]ActivityRow, OverallTrend) {
	rows := make([]ActivityRow, 0, 3*len(domain.Participants))
	score := 0

	for _, p := range domain.Participants {
		curr, _ := current.Record(p)
		prev, _ := prior.Record(p)

		buckets := []struct {
			bucket Bucket
			change int64
			weight int
		}{
			{BucketFuture, netChange(curr.FutureIndexLong, curr.FutureIndexShort, prev.FutureIndexLong, prev.FutureIndexShort), 2},
			{BucketCall, netChange(curr.OptionIndexCallLong, curr.OptionIndexCallShort, prev.OptionIndexCallLong, prev.OptionIndexCallShort), 1},
			{BucketPut, netChange(curr.OptionIndexPutLong, curr.OptionIndexPutShort, prev.OptionIndexPutLong, prev.OptionIndexPutShort), 1},
		}

		for _, b := range buckets {
			activity, signal := classify(b.bucket, b.change)
			rows = append(rows, ActivityRow{
				Participant: p,
				DisplayName: p.DisplayName(),
				Bucket:      b.bucket,
				Change:      b.change,
				Activity:    activity,
				Signal:      signal,
			})
			if p == domain.ParticipantFII {
				if signal == SignalBullish {
					score += b.weight
				} else {
					score -= b.weight
				}
			}
		}
	}

	return rows, OverallTrend{Score: score, Label: trendLabel(score)}
}

// netChange is the day-over-day move of a net (long minus short) position.
func netChange(currLong, currShort, prevLong, prevShort int64) int64 {
	return (currLong - currShort) - (prevLong - prevShort)
}

// classify maps a bucket and its net change to the narrative row. Buying puts
// is the one buy that reads bearish.
func classify(bucket Bucket, change int64) (string, Signal) {
	bought := change > 0
	switch bucket {
	case BucketFuture:
		if bought {
			return "Bought Futures", SignalBullish
		}
		return "Sold Futures", SignalBearish
	case BucketCall:
		if bought {
			return "Bought Calls", SignalBullish
		}
		return "Sold Calls", SignalBearish
	default:
		if bought {
			return "Bought Puts", SignalBearish
		}
		return "Sold Puts", SignalBullish
	}
}

// trendLabel maps the FII score to its label. The band between -2 and 2 is
// neutral.
func trendLabel(score int) TrendLabel {
	switch {
	case score >= 2:
		return TrendBullish
	case score <= -2:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// Trend flattens a snapshot window, oldest to newest, into the per-day
// sentiment series for every participant. Missing days are simply absent
// from the series.
func Trend(window []domain.Snapshot) []TrendPoint {
	points := make([]TrendPoint, 0, len(window)*len(domain.Participants))
	for _, snap := range window {
		for _, row := range Sentiment(snap) {
			points = append(points, TrendPoint{
				Date:         snap.Date,
				Participant:  row.Participant,
				NetSentiment: row.NetSentiment,
			})
		}
	}
	return points
}

// BuildDashboard assembles the full metrics contract from a snapshot pair
// and an optional trend window. The engine never mutates its inputs; every
// derived value is recomputed per call.
func BuildDashboard(prior, current domain.Snapshot, window []domain.Snapshot) Dashboard {
	activity, overall := Activity(prior, current)
	return Dashboard{
		Date:      current.Date,
		PriorDate: prior.Date,
		Latest:    current,
		Prior:     prior,
		Sentiment: Sentiment(current),
		Deltas:    Deltas(prior, current),
		Activity:  activity,
		Overall:   overall,
		Trend:     Trend(window),
	}
}
