package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faopulse/internal/calendar"
	apperrors "faopulse/internal/errors"
	"faopulse/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeSource serves canned snapshot bytes keyed by calendar date and records
// every date it was asked for.
type fakeSource struct {
	mu        sync.Mutex
	files     map[string][]byte
	requested []time.Time
}

func (s *fakeSource) Fetch(_ context.Context, date time.Time) ([]byte, error) {
	s.mu.Lock()
	s.requested = append(s.requested, date)
	s.mu.Unlock()

	if data, ok := s.files[date.Format("2006-01-02")]; ok {
		return data, nil
	}
	return nil, apperrors.NewFetchError(date, errors.New("no file published"))
}

// snapshotCSV builds a minimal valid file whose FII future index long count
// identifies the date it belongs to.
func snapshotCSV(fiiFutureLong int64) []byte {
	return []byte(fmt.Sprintf(`disclaimer
Client Type,Future Index Long,Future Index Short,Option Index Call Long,Option Index Put Long,Option Index Call Short,Option Index Put Short
FII,%d,80,50,20,30,40
DII,200,150,60,30,25,35
`, fiiFutureLong))
}

func newTestWindow(files map[string][]byte) (*Window, *fakeSource) {
	src := &fakeSource{files: files}
	return NewWindow(src, calendar.New(nil), nil), src
}

func fiiFutureLong(t *testing.T, snap domain.Snapshot) int64 {
	t.Helper()
	rec, ok := snap.Record(domain.ParticipantFII)
	require.True(t, ok)
	return rec.FutureIndexLong
}

func TestCollectShortWindow(t *testing.T) {
	// Five requested, only three loadable inside the lookback bound.
	w, _ := newTestWindow(map[string][]byte{
		"2025-07-17": snapshotCSV(17),
		"2025-07-15": snapshotCSV(15),
		"2025-07-10": snapshotCSV(10),
	})

	snaps, err := w.Collect(context.Background(), date(2025, time.July, 19), 5, 0)
	require.NoError(t, err, "a short window is not an error")
	require.Len(t, snaps, 3)

	// Oldest to newest.
	assert.Equal(t, int64(10), fiiFutureLong(t, snaps[0]))
	assert.Equal(t, int64(15), fiiFutureLong(t, snaps[1]))
	assert.Equal(t, int64(17), fiiFutureLong(t, snaps[2]))
	assert.True(t, snaps[0].Date.Before(snaps[1].Date))
	assert.True(t, snaps[1].Date.Before(snaps[2].Date))
}

func TestCollectNothingFound(t *testing.T) {
	w, _ := newTestWindow(nil)

	_, err := w.Collect(context.Background(), date(2025, time.July, 17), 5, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientData))
}

func TestCollectNeverTriesNonTradingDays(t *testing.T) {
	w, src := newTestWindow(map[string][]byte{
		"2025-07-18": snapshotCSV(18),
	})

	// Sunday input: the walk starts at Friday and stays on trading days.
	_, err := w.Collect(context.Background(), date(2025, time.July, 20), 2, 4)
	require.NoError(t, err)

	for _, d := range src.requested {
		wd := d.Weekday()
		assert.NotEqual(t, time.Saturday, wd, "requested %s", d)
		assert.NotEqual(t, time.Sunday, wd, "requested %s", d)
	}
}

func TestCollectSkipsCorruptFiles(t *testing.T) {
	w, _ := newTestWindow(map[string][]byte{
		"2025-07-17": snapshotCSV(17),
		"2025-07-16": []byte("not a snapshot at all"),
		"2025-07-15": snapshotCSV(15),
	})

	snaps, err := w.Collect(context.Background(), date(2025, time.July, 17), 2, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(15), fiiFutureLong(t, snaps[0]))
	assert.Equal(t, int64(17), fiiFutureLong(t, snaps[1]))
}

func TestPair(t *testing.T) {
	w, _ := newTestWindow(map[string][]byte{
		"2025-07-17": snapshotCSV(17),
		"2025-07-16": snapshotCSV(16),
	})

	current, prior, err := w.Pair(context.Background(), date(2025, time.July, 17))
	require.NoError(t, err)
	assert.Equal(t, int64(17), fiiFutureLong(t, current))
	assert.Equal(t, int64(16), fiiFutureLong(t, prior))
}

func TestPairSingleSnapshotSelfCompares(t *testing.T) {
	// Only one day exists in the whole lookback budget: the prior degrades to
	// the current snapshot so deltas come out zero.
	w, _ := newTestWindow(map[string][]byte{
		"2025-07-17": snapshotCSV(17),
	})

	current, prior, err := w.Pair(context.Background(), date(2025, time.July, 17))
	require.NoError(t, err)
	assert.Equal(t, current.Date, prior.Date)
	assert.Equal(t, fiiFutureLong(t, current), fiiFutureLong(t, prior))
}

func TestPairNoData(t *testing.T) {
	w, _ := newTestWindow(nil)

	_, _, err := w.Pair(context.Background(), date(2025, time.July, 17))
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientData))
}
