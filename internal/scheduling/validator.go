// Package scheduling decides whether a session may be placed in a room.
//
// A placement is accepted only when it lies inside the active phase window
// and does not overlap another booking of the same room on the same date.
// The validator is read-only: it asks an [OccupancySource] for the room's
// bookings and never books anything itself.
package scheduling

import (
	"context"
	"errors"
	"fmt"

	"confradar/internal/timeslot"
)

// Rejection reasons. A [Result] carries errors wrapping these.
var (
	// ErrOutsidePhase means the placement does not fit inside the phase window.
	ErrOutsidePhase = errors.New("session is outside the phase window")

	// ErrRoomConflict means the placement overlaps another session in the
	// same room on the same date.
	ErrRoomConflict = errors.New("room is already booked")

	// ErrInvalidPlacement means the placement has no room or no valid interval.
	ErrInvalidPlacement = errors.New("invalid session placement")
)

// IsRejection reports whether err carries one of the rejection reasons, as
// opposed to a failure to reach the occupancy data.
func IsRejection(err error) bool {
	return errors.Is(err, ErrOutsidePhase) ||
		errors.Is(err, ErrRoomConflict) ||
		errors.Is(err, ErrInvalidPlacement)
}

// OccupancySource supplies the existing bookings of a room.
type OccupancySource interface {
	QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error)
}

// Placement is a proposed session.
type Placement struct {
	Session timeslot.Session

	// ExcludeID names an existing booking to ignore, usually the one being
	// moved. When empty the session's own ID is used.
	ExcludeID string
}

func (p Placement) excludeID() string {
	if p.ExcludeID != "" {
		return p.ExcludeID
	}
	return p.Session.ID
}

// PhaseWindow is the span a placement must fall inside. The zero window
// places no constraint.
type PhaseWindow struct {
	Name string
	Span timeslot.Interval
}

// PhaseWindowOf builds a window from raw endpoints in either wire format.
func PhaseWindowOf(name, rawStart, rawEnd string, date timeslot.Date) (PhaseWindow, bool) {
	span, ok := timeslot.IntervalOf(rawStart, rawEnd, date)
	if !ok {
		return PhaseWindow{}, false
	}
	return PhaseWindow{Name: name, Span: span}, true
}

// IsZero reports whether w places no constraint.
func (w PhaseWindow) IsZero() bool {
	return w.Span.IsZero()
}

func (w PhaseWindow) String() string {
	if w.Name == "" {
		return "phase " + w.Span.String()
	}
	return w.Name + " " + w.Span.String()
}

// Result is the outcome of validating one placement.
type Result struct {
	Placement Placement
	Accepted  bool

	// Reasons lists why the placement was rejected. Each wraps one of the
	// package's rejection errors.
	Reasons []error

	// Conflicts holds the bookings the placement overlaps.
	Conflicts []timeslot.Session
}

// Err joins the rejection reasons, or returns nil for an accepted placement.
func (r Result) Err() error {
	if r.Accepted {
		return nil
	}
	return errors.Join(r.Reasons...)
}

func (r *Result) reject(err error) {
	r.Accepted = false
	r.Reasons = append(r.Reasons, err)
}

// Validator checks placements against a phase window and room occupancy.
// Use [NewValidator] to create one.
type Validator struct {
	source OccupancySource
}

// NewValidator creates a Validator reading bookings from source.
func NewValidator(source OccupancySource) *Validator {
	return &Validator{source: source}
}

// Validate checks a single placement. Both the phase and the room check run
// so the result lists every reason. An error is returned only when the
// occupancy source fails.
func (v *Validator) Validate(ctx context.Context, p Placement, phase PhaseWindow) (Result, error) {
	res, ok := precheck(p, phase)
	if !ok {
		return res, nil
	}

	existing, err := v.occupancy(ctx, p.Session)
	if err != nil {
		return Result{}, err
	}
	res.addConflicts(timeslot.ConflictsWith(p.Session, existing, p.excludeID()))
	return res, nil
}

// ValidateAll checks a batch of placements, such as every session entry of
// one step payload. Besides the per-placement checks, two placements of the
// batch that overlap in the same room reject each other. Occupancy is queried
// once per room and date.
func (v *Validator) ValidateAll(ctx context.Context, placements []Placement, phase PhaseWindow) ([]Result, error) {
	type roomDay struct {
		room string
		date timeslot.Date
	}
	cache := make(map[roomDay][]timeslot.Session)

	results := make([]Result, len(placements))
	for i, p := range placements {
		res, ok := precheck(p, phase)
		results[i] = res
		if !ok {
			continue
		}

		key := roomDay{room: p.Session.RoomID, date: p.Session.Date}
		existing, cached := cache[key]
		if !cached {
			var err error
			existing, err = v.occupancy(ctx, p.Session)
			if err != nil {
				return nil, err
			}
			cache[key] = existing
		}
		results[i].addConflicts(timeslot.ConflictsWith(p.Session, existing, p.excludeID()))
	}

	for i := range placements {
		if placements[i].Session.Interval.IsZero() {
			continue
		}
		for j := range placements {
			if i == j || placements[j].Session.Interval.IsZero() {
				continue
			}
			if placements[i].Session.RoomID == "" || placements[i].Session.RoomID != placements[j].Session.RoomID {
				continue
			}
			if timeslot.HasConflict(placements[i].Session, []timeslot.Session{placements[j].Session}, "") {
				results[i].addConflicts([]timeslot.Session{placements[j].Session})
			}
		}
	}
	return results, nil
}

// precheck validates the shape of p and its phase fit. It returns false when
// the placement is malformed and the room check cannot run.
func precheck(p Placement, phase PhaseWindow) (Result, bool) {
	res := Result{Placement: p, Accepted: true}

	s := p.Session
	if s.RoomID == "" {
		res.reject(fmt.Errorf("%w: room is required", ErrInvalidPlacement))
		return res, false
	}
	if s.Interval.IsZero() {
		res.reject(fmt.Errorf("%w: start and end must be valid times with start before end", ErrInvalidPlacement))
		return res, false
	}

	if !phase.IsZero() && !s.Interval.Within(phase.Span) {
		res.reject(fmt.Errorf("%w: %s %s is not within %s", ErrOutsidePhase, s.Date, s.Interval, phase))
	}
	return res, true
}

func (r *Result) addConflicts(conflicts []timeslot.Session) {
	for _, c := range conflicts {
		r.Conflicts = append(r.Conflicts, c)
		r.reject(fmt.Errorf("%w: room %s on %s overlaps session %s (%s)",
			ErrRoomConflict, r.Placement.Session.RoomID, c.Date, describe(c), c.Interval))
	}
}

func (v *Validator) occupancy(ctx context.Context, s timeslot.Session) ([]timeslot.Session, error) {
	existing, err := v.source.QueryRoomOccupancy(ctx, s.RoomID, timeslot.SingleDay(s.Date))
	if err != nil {
		return nil, fmt.Errorf("failed to query occupancy of room %s: %w", s.RoomID, err)
	}
	return existing, nil
}

func describe(s timeslot.Session) string {
	if s.ID == "" {
		return "(unnamed)"
	}
	return s.ID
}
