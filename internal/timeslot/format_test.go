package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want Format
	}{
		{"2024-06-01T09:00:00", FormatFull},
		{"2024-06-01T09:00:00Z", FormatFull},
		{"2024-06-01T09:00:00+07:00", FormatFull},
		{"2024-06-01T09:00:00.250Z", FormatFull},
		{"2024-06-01 09:00", FormatFull},
		{"2024-06-01", FormatFull},
		{"09:00:00", FormatTimeOnly},
		{"  23:59:59 ", FormatTimeOnly},
		{"9:00:00", FormatUnknown},
		{"09:00", FormatUnknown},
		{"24:00:00", FormatUnknown},
		{"09:60:00", FormatUnknown},
		{"not-a-time", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.raw))
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "full", FormatFull.String())
	assert.Equal(t, "timeOnly", FormatTimeOnly.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestParseTime(t *testing.T) {
	date := MustDate("2024-06-01")

	t.Run("time only is placed on the supplied date", func(t *testing.T) {
		got, ok := ParseTime("10:30:00", date)
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local)))
	})

	t.Run("full date-time ignores the supplied date", func(t *testing.T) {
		got, ok := ParseTime("2024-07-15T08:00:00Z", date)
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("garbage returns false", func(t *testing.T) {
		got, ok := ParseTime("not-a-time", date)
		assert.False(t, ok)
		assert.True(t, got.IsZero())
	})

	t.Run("empty returns false", func(t *testing.T) {
		_, ok := ParseTime("   ", date)
		assert.False(t, ok)
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		orig := now
		now = func() time.Time { return time.Date(2025, 1, 2, 8, 0, 0, 0, time.Local) }
		defer func() { now = orig }()

		got, ok := ParseTime("14:00:00", Date{})
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2025, 1, 2, 14, 0, 0, 0, time.Local)))
	})
}

func TestParseValue(t *testing.T) {
	date := MustDate("2024-06-01")
	s := "09:00:00"

	tests := []struct {
		name   string
		value  any
		wantOK bool
	}{
		{"string", "09:00:00", true},
		{"string pointer", &s, true},
		{"nil string pointer", (*string)(nil), false},
		{"time value", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), true},
		{"zero time", time.Time{}, false},
		{"number", 900, false},
		{"nil", nil, false},
		{"map", map[string]any{"start": "09:00:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseValue(tt.value, date)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestToTimeOnly(t *testing.T) {
	assert.Equal(t, "09:30:15", ToTimeOnly("2024-06-01T09:30:15"))
	assert.Equal(t, "09:30:15", ToTimeOnly("2024-06-01T09:30:15Z"))
	assert.Equal(t, "18:05:00", ToTimeOnly("18:05:00"))
	assert.Equal(t, ZeroTimeOnly, ToTimeOnly("garbage"))
	assert.Equal(t, ZeroTimeOnly, ToTimeOnly(""))
}

func TestFromTimeOnly(t *testing.T) {
	date := MustDate("2024-06-01")

	assert.Equal(t, "2024-06-01T09:30:00", FromTimeOnly("09:30:00", date))
	assert.Equal(t, "2024-07-01T11:00:00", FromTimeOnly("2024-07-01T11:00:00", date))
	assert.Equal(t, "", FromTimeOnly("9.30", date))
}

func TestTimeOnly_RoundTrip(t *testing.T) {
	inputs := []string{
		"2024-06-01T00:00:00",
		"2024-06-01T09:30:15",
		"2024-06-01T23:59:59",
		"2024-06-01T12:00:00Z",
		"2024-06-01T07:45:00+02:00",
		"2024-06-01 18:20:00",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			x, ok := ParseTime(raw, Date{})
			require.True(t, ok)

			back := FromTimeOnly(ToTimeOnly(raw), DateOf(x))
			y, ok := ParseTime(back, Date{})
			require.True(t, ok)

			assert.Equal(t, Clock(x), Clock(y))
			assert.Equal(t, DateOf(x), DateOf(y))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-06-01")
	require.True(t, ok)
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 1}, d)
	assert.Equal(t, "2024-06-01", d.String())

	d, ok = ParseDate("2024-06-01T22:00:00")
	require.True(t, ok)
	assert.Equal(t, 1, d.Day)

	_, ok = ParseDate("10:00:00")
	assert.False(t, ok)

	_, ok = ParseDate("")
	assert.False(t, ok)

	assert.Equal(t, "", Date{}.String())
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{From: MustDate("2024-06-01"), To: MustDate("2024-06-03")}

	assert.True(t, r.Contains(MustDate("2024-06-01")))
	assert.True(t, r.Contains(MustDate("2024-06-02")))
	assert.True(t, r.Contains(MustDate("2024-06-03")))
	assert.False(t, r.Contains(MustDate("2024-05-31")))
	assert.False(t, r.Contains(MustDate("2024-06-04")))
	assert.True(t, SingleDay(MustDate("2024-06-02")).Contains(MustDate("2024-06-02")))
}
