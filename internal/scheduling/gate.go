package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confradar/internal/steps"
	"confradar/internal/timeslot"
	"confradar/internal/wizard"
)

// Payload keys read from the sessions step.
const (
	FieldSessions   = "sessions"
	FieldID         = "id"
	FieldRoom       = "room"
	FieldRoomID     = "room_id"
	FieldDate       = "date"
	FieldStart      = "start"
	FieldEnd        = "end"
	FieldPhaseStart = "phase_start"
	FieldPhaseEnd   = "phase_end"
)

// StepGate rejects a sessions step payload when any of its entries cannot
// be placed. It implements [wizard.StepGate] and ignores every other step.
type StepGate struct {
	validator *Validator
	phase     PhaseWindow
}

// NewStepGate creates a gate over v. phase is used when the payload carries
// no phase_start/phase_end of its own.
func NewStepGate(v *Validator, phase PhaseWindow) *StepGate {
	return &StepGate{validator: v, phase: phase}
}

// CheckStep validates every session entry of payload.
func (g *StepGate) CheckStep(ctx context.Context, step steps.Step, payload wizard.Payload) error {
	if !step.IsScheduling() {
		return nil
	}

	placements := DecodePlacements(payload)
	if len(placements) == 0 {
		return nil
	}

	phase := g.phase
	if w, ok := PayloadPhase(payload); ok {
		phase = w
	}

	results, err := g.validator.ValidateAll(ctx, placements, phase)
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range results {
		if !r.Accepted {
			errs = append(errs, fmt.Errorf("session %s: %w", describe(r.Placement.Session), r.Err()))
		}
	}
	return errors.Join(errs...)
}

// DecodePlacements reads the session entries of a step payload. Entries are
// taken from the "sessions" list, or from the payload itself when it holds a
// single flat entry. Malformed entries, including a "sessions" value that is
// not a list, decode to a placement with an empty interval so validation
// reports them instead of dropping them.
func DecodePlacements(payload wizard.Payload) []Placement {
	var entries []map[string]any
	switch list := payload[FieldSessions].(type) {
	case nil:
		if _, ok := payload[FieldStart]; ok {
			entries = append(entries, payload)
		}
	case []any:
		for _, e := range list {
			entries = append(entries, asMap(e))
		}
	case []map[string]any:
		entries = list
	case []wizard.Payload:
		for _, e := range list {
			entries = append(entries, e)
		}
	default:
		entries = append(entries, nil)
	}

	out := make([]Placement, 0, len(entries))
	for _, e := range entries {
		out = append(out, placementOf(e))
	}
	return out
}

// PayloadPhase reads a phase window carried by the payload itself.
func PayloadPhase(payload wizard.Payload) (PhaseWindow, bool) {
	start, end := stringValue(payload[FieldPhaseStart]), stringValue(payload[FieldPhaseEnd])
	if start == "" || end == "" {
		return PhaseWindow{}, false
	}
	date, _ := timeslot.ParseDate(stringValue(payload[FieldDate]))
	return PhaseWindowOf("phase", start, end, date)
}

func placementOf(e map[string]any) Placement {
	room := stringValue(e[FieldRoom])
	if room == "" {
		room = stringValue(e[FieldRoomID])
	}
	raw := timeslot.RawSession{
		ID:     stringValue(e[FieldID]),
		RoomID: room,
		Date:   stringValue(e[FieldDate]),
		Start:  stringValue(e[FieldStart]),
		End:    stringValue(e[FieldEnd]),
	}

	s, ok := raw.Normalize()
	if !ok {
		date, _ := timeslot.ParseDate(raw.Date)
		s = timeslot.Session{ID: raw.ID, RoomID: raw.RoomID, Date: date}
	}
	return Placement{Session: s}
}

// asMap returns nil for anything that is not a map.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case wizard.Payload:
		return m
	default:
		return nil
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(timeslot.FullLayout)
	case fmt.Stringer:
		return s.String()
	default:
		return ""
	}
}
