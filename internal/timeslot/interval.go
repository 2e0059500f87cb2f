package timeslot

import "time"

// Interval is a half-open span [Start, End) with Start strictly before End.
// Build one with [NewInterval] or [IntervalOf]; the zero Interval is empty
// and never overlaps or fits anything.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns the interval [start, end), or false when end does not
// fall after start.
func NewInterval(start, end time.Time) (Interval, bool) {
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// IntervalOf parses both endpoints with [ParseTime] against date.
func IntervalOf(rawStart, rawEnd string, date Date) (Interval, bool) {
	start, ok := ParseTime(rawStart, date)
	if !ok {
		return Interval{}, false
	}
	end, ok := ParseTime(rawEnd, date)
	if !ok {
		return Interval{}, false
	}
	return NewInterval(start, end)
}

// IsZero reports whether i is the empty interval.
func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

// Overlaps reports whether the two intervals share any instant. Intervals
// that only touch at an endpoint do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	if i.IsZero() || o.IsZero() {
		return false
	}
	return overlaps(i.Start, i.End, o.Start, o.End)
}

// Within reports whether i lies inside span, both bounds inclusive.
func (i Interval) Within(span Interval) bool {
	if i.IsZero() || span.IsZero() {
		return false
	}
	return within(i.Start, i.End, span.Start, span.End)
}

// Minutes returns the length of i in whole minutes, rounded up.
func (i Interval) Minutes() int {
	return minutesBetween(i.Start, i.End)
}

// String renders the interval as HH:MM:SS-HH:MM:SS.
func (i Interval) String() string {
	if i.IsZero() {
		return "-"
	}
	return Clock(i.Start) + "-" + Clock(i.End)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// It returns false if any endpoint fails to parse.
func Overlaps(aStart, aEnd, bStart, bEnd string, date Date) bool {
	ts, ok := parseAll(date, aStart, aEnd, bStart, bEnd)
	if !ok {
		return false
	}
	return overlaps(ts[0], ts[1], ts[2], ts[3])
}

// FitsWithin reports whether the session span lies inside the outer span,
// both bounds inclusive. It returns false if any endpoint fails to parse.
func FitsWithin(sessionStart, sessionEnd, spanStart, spanEnd string, date Date) bool {
	ts, ok := parseAll(date, sessionStart, sessionEnd, spanStart, spanEnd)
	if !ok {
		return false
	}
	return within(ts[0], ts[1], ts[2], ts[3])
}

// DurationMinutes returns the minutes from start to end, rounded up. It is 0
// when either endpoint fails to parse or end does not fall after start.
func DurationMinutes(start, end string, date Date) int {
	ts, ok := parseAll(date, start, end)
	if !ok {
		return 0
	}
	return minutesBetween(ts[0], ts[1])
}

func parseAll(date Date, raws ...string) ([]time.Time, bool) {
	out := make([]time.Time, len(raws))
	for i, raw := range raws {
		t, ok := ParseTime(raw, date)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func within(start, end, spanStart, spanEnd time.Time) bool {
	return !start.Before(spanStart) && !end.After(spanEnd)
}

func minutesBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	d := end.Sub(start)
	m := int(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}
