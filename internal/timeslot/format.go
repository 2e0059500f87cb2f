// Package timeslot normalizes and compares session time intervals.
//
// Session times arrive in one of two wire shapes: a full date-time string
// ("2024-06-01T09:30:00", RFC 3339 with or without zone) or a bare time of
// day ("09:30:00") that only has meaning together with a separately supplied
// calendar date. The shape is resolved once at the boundary by [DetectFormat]
// and [ParseTime]; everything downstream works on [time.Time], [Interval] and
// [Session] values and never re-parses strings.
//
// Nothing in this package panics or returns an error on malformed input.
// Unparseable values surface as (zero, false), the "00:00:00" sentinel, or a
// false comparison, so that one bad record cannot abort validation of the rest.
//
// Key types:
//   - [Format] tags which wire shape a raw string uses
//   - [Date] is a calendar date without a clock
//   - [Interval] is a normalized half-open time span (Start < End)
//   - [Session] is a booking of a room on a date
package timeslot

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Format identifies the wire shape of a raw time string.
type Format int

const (
	// FormatUnknown marks a string that matches neither wire shape.
	FormatUnknown Format = iota
	// FormatFull marks a full date-time string.
	FormatFull
	// FormatTimeOnly marks a bare HH:MM:SS string.
	FormatTimeOnly
)

// String returns the wire name of the format.
func (f Format) String() string {
	switch f {
	case FormatFull:
		return "full"
	case FormatTimeOnly:
		return "timeOnly"
	default:
		return "unknown"
	}
}

const (
	// TimeOnlyLayout is the layout of a bare time of day.
	TimeOnlyLayout = "15:04:05"

	// FullLayout is the layout produced by [FromTimeOnly] and [Session.Raw].
	FullLayout = "2006-01-02T15:04:05"

	// DateLayout is the layout of a calendar date.
	DateLayout = "2006-01-02"

	// ZeroTimeOnly is returned by [ToTimeOnly] for unparseable input.
	ZeroTimeOnly = "00:00:00"
)

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
}

// localLayouts have no offset and are read in the local zone.
var localLayouts = []string{
	FullLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

var timeOnlyPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)

// now is swapped by tests that exercise the "no date supplied" path.
var now = time.Now

// DetectFormat reports which wire shape raw uses.
func DetectFormat(raw string) Format {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FormatUnknown
	}
	if _, ok := parseFull(raw); ok {
		return FormatFull
	}
	if _, _, _, ok := parseClock(raw); ok {
		return FormatTimeOnly
	}
	return FormatUnknown
}

// ParseTime resolves raw into an instant.
//
// A full date-time is tried first. Failing that, raw must match HH:MM:SS
// exactly and is placed on date, or on today's date when date is zero.
// Empty or unrecognized input returns false.
func ParseTime(raw string, date Date) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, ok := parseFull(raw); ok {
		return t, true
	}

	h, m, s, ok := parseClock(raw)
	if !ok {
		return time.Time{}, false
	}
	if date.IsZero() {
		date = DateOf(now())
	}
	return date.At(h, m, s), true
}

// ParseValue is [ParseTime] for untyped wire values such as decoded JSON or
// YAML fields. Anything other than a string or a non-zero time.Time is
// rejected.
func ParseValue(v any, date Date) (time.Time, bool) {
	switch val := v.(type) {
	case string:
		return ParseTime(val, date)
	case *string:
		if val == nil {
			return time.Time{}, false
		}
		return ParseTime(*val, date)
	case time.Time:
		return val, !val.IsZero()
	default:
		return time.Time{}, false
	}
}

// ToTimeOnly returns the wall-clock part of raw as HH:MM:SS, or
// [ZeroTimeOnly] when raw cannot be parsed.
func ToTimeOnly(raw string) string {
	t, ok := ParseTime(raw, Date{})
	if !ok {
		return ZeroTimeOnly
	}
	return Clock(t)
}

// Clock formats the wall-clock part of t as HH:MM:SS.
func Clock(t time.Time) string {
	return t.Format(TimeOnlyLayout)
}

// FromTimeOnly places a time of day on date and returns it in [FullLayout].
// A raw value that is already a full date-time is re-emitted in [FullLayout].
// Unparseable input yields "".
func FromTimeOnly(raw string, date Date) string {
	t, ok := ParseTime(raw, date)
	if !ok {
		return ""
	}
	return t.Format(FullLayout)
}

func parseFull(raw string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(raw string) (hour, minute, second int, ok bool) {
	m := timeOnlyPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, 0, false
	}
	// The pattern guarantees two digits in range for each field.
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	second, _ = strconv.Atoi(m[3])
	return hour, minute, second, true
}
