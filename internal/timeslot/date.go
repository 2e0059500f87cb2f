package timeslot

import (
	"strings"
	"time"
)

// Date is a calendar date in the local zone. The zero value means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "2006-01-02" or any full date-time, keeping only the
// calendar part.
func ParseDate(raw string) (Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, false
	}
	t, ok := parseFull(raw)
	if !ok {
		return Date{}, false
	}
	return DateOf(t), true
}

// MustDate is ParseDate for literals in tests and defaults. It panics on
// malformed input.
func MustDate(raw string) Date {
	d, ok := ParseDate(raw)
	if !ok {
		panic("timeslot: invalid date literal " + raw)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// At places the given wall-clock time on d in the local zone.
func (d Date) At(hour, minute, second int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, second, 0, time.Local)
}

// Start returns local midnight at the beginning of d.
func (d Date) Start() time.Time {
	return d.At(0, 0, 0)
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool {
	return d.Start().Before(o.Start())
}

// After reports whether d falls strictly after o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// String formats d as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Start().Format(DateLayout)
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	From Date
	To   Date
}

// SingleDay returns the range covering exactly d.
func SingleDay(d Date) DateRange {
	return DateRange{From: d, To: d}
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}
