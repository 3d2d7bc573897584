package domain

import (
	"time"
)

// ParticipantRecord holds one participant category's open interest for a
// single trading day, in contracts. The six index fields are present in every
// report era; the two stock fields were added later and default to zero when
// a file predates them.
type ParticipantRecord struct {
	FutureIndexLong      int64 `json:"future_index_long"`
	FutureIndexShort     int64 `json:"future_index_short"`
	FutureStockLong      int64 `json:"future_stock_long"`
	FutureStockShort     int64 `json:"future_stock_short"`
	OptionIndexCallLong  int64 `json:"option_index_call_long"`
	OptionIndexPutLong   int64 `json:"option_index_put_long"`
	OptionIndexCallShort int64 `json:"option_index_call_short"`
	OptionIndexPutShort  int64 `json:"option_index_put_short"`
}

// Snapshot is one trading day's participant-wise open interest table.
// It is immutable after construction: derived metrics are computed on demand
// and never written back onto a Snapshot.
type Snapshot struct {
	Date    time.Time                         `json:"date"`
	Records map[Participant]ParticipantRecord `json:"records"`
}

// NewSnapshot builds a snapshot for the given trading date. The records map
// is copied so the caller cannot mutate the snapshot afterwards.
func NewSnapshot(date time.Time, records map[Participant]ParticipantRecord) Snapshot {
	copied := make(map[Participant]ParticipantRecord, len(records))
	for p, rec := range records {
		copied[p] = rec
	}
	return Snapshot{Date: date, Records: copied}
}

// Record returns the row for a participant and whether it was present in the
// source file. Absent participants yield a zero-valued record.
func (s Snapshot) Record(p Participant) (ParticipantRecord, bool) {
	rec, ok := s.Records[p]
	return rec, ok
}

// Empty reports whether the snapshot carries no participant rows at all.
func (s Snapshot) Empty() bool {
	return len(s.Records) == 0
}
