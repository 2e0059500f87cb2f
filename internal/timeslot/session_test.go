package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawSession_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawSession
		wantOK   bool
		wantDate string
		wantMins int
	}{
		{
			name:     "time only with date",
			raw:      RawSession{ID: "s1", RoomID: "r1", Date: "2024-06-01", Start: "09:00:00", End: "10:30:00"},
			wantOK:   true,
			wantDate: "2024-06-01",
			wantMins: 90,
		},
		{
			name:     "full start without date takes its date",
			raw:      RawSession{ID: "s2", Start: "2024-06-02T14:00:00", End: "2024-06-02T15:00:00"},
			wantOK:   true,
			wantDate: "2024-06-02",
			wantMins: 60,
		},
		{
			name:   "time only without date is rejected",
			raw:    RawSession{ID: "s3", Start: "09:00:00", End: "10:00:00"},
			wantOK: false,
		},
		{
			name:   "end before start is rejected",
			raw:    RawSession{ID: "s4", Date: "2024-06-01", Start: "11:00:00", End: "10:00:00"},
			wantOK: false,
		},
		{
			name:   "garbage end is rejected",
			raw:    RawSession{ID: "s5", Date: "2024-06-01", Start: "11:00:00", End: "noon"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := tt.raw.Normalize()
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.raw.ID, s.ID)
			assert.Equal(t, tt.wantDate, s.Date.String())
			assert.Equal(t, tt.wantMins, s.Minutes())
		})
	}
}

func TestNormalizeAll_DropsMalformed(t *testing.T) {
	raws := []RawSession{
		{ID: "ok", Date: "2024-06-01", Start: "09:00:00", End: "10:00:00"},
		{ID: "bad", Date: "2024-06-01", Start: "whenever", End: "10:00:00"},
		{ID: "ok2", Date: "2024-06-01", Start: "10:00:00", End: "11:00:00"},
	}

	got := NormalizeAll(raws)
	require.Len(t, got, 2)
	assert.Equal(t, "ok", got[0].ID)
	assert.Equal(t, "ok2", got[1].ID)
}

func TestSession_Raw(t *testing.T) {
	orig := RawSession{ID: "s1", RoomID: "hall-a", Date: "2024-06-01", Start: "09:00:00", End: "10:00:00"}
	s, ok := orig.Normalize()
	require.True(t, ok)

	raw := s.Raw()
	assert.Equal(t, "2024-06-01T09:00:00", raw.Start)
	assert.Equal(t, "2024-06-01T10:00:00", raw.End)

	back, ok := raw.Normalize()
	require.True(t, ok)
	assert.Equal(t, s.Date, back.Date)
	assert.True(t, s.Interval.Start.Equal(back.Interval.Start))
	assert.True(t, s.Interval.End.Equal(back.Interval.End))
}

func TestSession_RawZoned(t *testing.T) {
	orig := RawSession{ID: "s1", RoomID: "hall-a", Start: "2024-06-01T09:00:00+02:00", End: "2024-06-01T10:00:00+02:00"}
	s, ok := orig.Normalize()
	require.True(t, ok)

	start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, DateOf(start.In(time.Local)), s.Date)

	raw := s.Raw()
	assert.Equal(t, start.In(time.Local).Format(FullLayout), raw.Start)

	back, ok := raw.Normalize()
	require.True(t, ok)
	assert.Equal(t, s.Date, back.Date)
	assert.True(t, start.Equal(back.Interval.Start))
	assert.True(t, start.Add(time.Hour).Equal(back.Interval.End))
}
