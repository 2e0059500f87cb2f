package wizard

import (
	"fmt"

	"confradar/internal/steps"
)

// State is the plain-data form of a [Session], for hosts that persist
// progress between visits.
type State struct {
	Mode           Mode        `json:"mode" toml:"mode"`
	Track          steps.Track `json:"track" toml:"track"`
	CurrentStep    int         `json:"current_step" toml:"current_step"`
	MaxStepReached int         `json:"max_step_reached" toml:"max_step_reached"`
	Completed      []int       `json:"completed,omitempty" toml:"completed,omitempty"`
	WithData       []int       `json:"with_data,omitempty" toml:"with_data,omitempty"`
	Dirty          []int       `json:"dirty,omitempty" toml:"dirty,omitempty"`
}

// State returns the plain-data form of s.
func (s Session) State() State {
	return State{
		Mode:           s.mode,
		Track:          s.track,
		CurrentStep:    s.currentStep,
		MaxStepReached: s.maxStepReached,
		Completed:      s.Completed(),
		WithData:       s.WithData(),
		Dirty:          s.Dirty(),
	}
}

// Restore rebuilds a [Session] from persisted state. Indices outside the
// track are dropped, and the current step and high-water mark are clamped
// so the session invariants hold even for stale records.
func Restore(g *steps.Graph, st State) (Session, error) {
	if !st.Mode.IsValid() {
		return Session{}, fmt.Errorf("unknown wizard mode %q", st.Mode)
	}

	var (
		s   Session
		err error
	)
	if st.Mode == ModeEdit {
		s, err = NewEditSession(g, st.Track, st.WithData)
	} else {
		s, err = NewCreateSession(g, st.Track)
	}
	if err != nil {
		return Session{}, err
	}

	last := s.LastStep()
	s.completed = setOf(st.Completed, last)
	s.withData = setOf(append(append([]int{}, st.WithData...), st.Completed...), last)
	s.dirty = setOf(st.Dirty, last)

	if s.mode == ModeCreate {
		s.maxStepReached = clamp(st.MaxStepReached, 1, last)
	}
	s.currentStep = clamp(st.CurrentStep, 1, last)
	if !s.Accessible(s.currentStep) {
		s.currentStep = s.maxStepReached
	}
	return s, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Payload is the field data of one step as exchanged with the host.
type Payload map[string]any

// Seed is what the host returns when it loads an existing conference.
type Seed struct {
	// State is the persisted wizard progress. Edit flows usually only fill
	// Mode, Track and WithData.
	State State

	// Payloads holds the saved field data per step index.
	Payloads map[int]Payload
}

// SessionFromSeed builds the session described by a loaded seed.
func SessionFromSeed(g *steps.Graph, seed Seed) (Session, error) {
	return Restore(g, seed.State)
}
