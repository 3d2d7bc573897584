package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParticipant(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Participant
		wantErr bool
	}{
		{name: "canonical FII", raw: "FII", want: ParticipantFII},
		{name: "old era Pro casing", raw: "Pro", want: ParticipantPro},
		{name: "old era Client casing", raw: "Client", want: ParticipantClient},
		{name: "padded DII", raw: "  DII  ", want: ParticipantDII},
		{name: "total footer row rejected", raw: "TOTAL", wantErr: true},
		{name: "empty cell rejected", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParticipant(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParticipantDisplayName(t *testing.T) {
	assert.Equal(t, "RETAIL", ParticipantClient.DisplayName())
	assert.Equal(t, "FII", ParticipantFII.DisplayName())
}

func TestNewSnapshotCopiesRecords(t *testing.T) {
	src := map[Participant]ParticipantRecord{
		ParticipantFII: {FutureIndexLong: 100},
	}
	snap := NewSnapshot(time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC), src)

	// Mutating the source map must not leak into the snapshot.
	src[ParticipantFII] = ParticipantRecord{FutureIndexLong: 999}

	rec, ok := snap.Record(ParticipantFII)
	require.True(t, ok)
	assert.Equal(t, int64(100), rec.FutureIndexLong)
}

func TestSnapshotAbsentParticipant(t *testing.T) {
	snap := NewSnapshot(time.Now(), nil)
	rec, ok := snap.Record(ParticipantDII)
	assert.False(t, ok)
	assert.Equal(t, ParticipantRecord{}, rec)
	assert.True(t, snap.Empty())
}
