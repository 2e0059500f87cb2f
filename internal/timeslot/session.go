package timeslot

import "time"

// Session is a normalized booking of a room for an interval on a date.
type Session struct {
	ID       string
	RoomID   string
	Date     Date
	Interval Interval
}

// RawSession is the wire form of a session as it arrives from storage or
// from a step payload. Start and End may be full date-times or bare times of
// day; Date is required when they are bare.
type RawSession struct {
	ID     string `json:"id" yaml:"id" toml:"id"`
	RoomID string `json:"room_id" yaml:"room_id" toml:"room_id"`
	Date   string `json:"date" yaml:"date" toml:"date"`
	Start  string `json:"start" yaml:"start" toml:"start"`
	End    string `json:"end" yaml:"end" toml:"end"`
}

// Normalize resolves the raw fields into a [Session]. It returns false when
// the interval is malformed, or when the date is missing and cannot be taken
// from a full date-time start.
func (r RawSession) Normalize() (Session, bool) {
	date, hasDate := ParseDate(r.Date)
	if !hasDate && DetectFormat(r.Start) != FormatFull {
		return Session{}, false
	}

	iv, ok := IntervalOf(r.Start, r.End, date)
	if !ok {
		return Session{}, false
	}
	if !hasDate {
		date = DateOf(iv.Start.In(time.Local))
	}

	return Session{
		ID:       r.ID,
		RoomID:   r.RoomID,
		Date:     date,
		Interval: iv,
	}, true
}

// NormalizeAll normalizes every record, silently dropping malformed ones.
func NormalizeAll(raws []RawSession) []Session {
	out := make([]Session, 0, len(raws))
	for _, r := range raws {
		if s, ok := r.Normalize(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Raw returns the wire form of s with both endpoints in [FullLayout]. The
// layout carries no offset, so endpoints are written as local wall-clock
// times, the zone [RawSession.Normalize] reads them back in.
func (s Session) Raw() RawSession {
	return RawSession{
		ID:     s.ID,
		RoomID: s.RoomID,
		Date:   s.Date.String(),
		Start:  s.Interval.Start.In(time.Local).Format(FullLayout),
		End:    s.Interval.End.In(time.Local).Format(FullLayout),
	}
}

// Minutes returns the session length in minutes.
func (s Session) Minutes() int {
	return s.Interval.Minutes()
}
