// Package wizard implements the conference authoring step state machine.
//
// A [Session] is an immutable value describing where an author is in the
// flow: the mode (create or edit), the track, the current step, the create
// mode high-water mark, and three step sets (completed, server-has-data,
// dirty). Every transition is a method returning a new Session plus whether
// the transition was applied; refused transitions return the receiver
// unchanged. Out-of-range step indices are never an error, only a no-op,
// because the host disables the matching control instead of handling one.
//
// Accessibility:
//   - create mode: a step is reachable when it has been completed or lies at
//     or below MaxStepReached
//   - edit mode: every step is reachable
//
// [Controller] binds a Session to host persistence and exposes the
// operations the UI wires to its buttons.
package wizard

import (
	"fmt"
	"sort"

	"confradar/internal/steps"
)

// Mode selects the accessibility and display rules of a session.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeCreate || m == ModeEdit
}

// StepSet is a set of step indices. Sets held by a [Session] are never
// mutated in place; transitions build new ones.
type StepSet map[int]bool

// Has reports whether i is in the set.
func (s StepSet) Has(i int) bool {
	return s[i]
}

// Sorted returns the members in ascending order.
func (s StepSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i, ok := range s {
		if ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func (s StepSet) with(i int) StepSet {
	if s.Has(i) {
		return s
	}
	out := make(StepSet, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[i] = true
	return out
}

func (s StepSet) without(i int) StepSet {
	if !s.Has(i) {
		return s
	}
	out := make(StepSet, len(s))
	for k, v := range s {
		if k != i {
			out[k] = v
		}
	}
	return out
}

func setOf(indices []int, last int) StepSet {
	out := make(StepSet, len(indices))
	for _, i := range indices {
		if i >= 1 && i <= last {
			out[i] = true
		}
	}
	return out
}

// SaveOptions controls [Session.RecordSaveSuccess].
type SaveOptions struct {
	// MarkCompleted adds the step to the completed and with-data sets.
	MarkCompleted bool
}

// Session is the state of one authoring flow.
type Session struct {
	mode           Mode
	track          steps.Track
	steps          []steps.Step
	currentStep    int
	maxStepReached int
	completed      StepSet
	withData       StepSet
	dirty          StepSet
}

// NewCreateSession starts a create flow on the first step of track.
// A nil graph means the built-in step table.
func NewCreateSession(g *steps.Graph, track steps.Track) (Session, error) {
	list, err := stepList(g, track)
	if err != nil {
		return Session{}, err
	}
	return Session{
		mode:           ModeCreate,
		track:          track,
		steps:          list,
		currentStep:    1,
		maxStepReached: 1,
		completed:      StepSet{},
		withData:       StepSet{},
		dirty:          StepSet{},
	}, nil
}

// NewEditSession opens an edit flow on the first step of track. withData
// lists the steps the server already holds data for; indices outside the
// track are ignored.
func NewEditSession(g *steps.Graph, track steps.Track, withData []int) (Session, error) {
	list, err := stepList(g, track)
	if err != nil {
		return Session{}, err
	}
	last := len(list)
	return Session{
		mode:           ModeEdit,
		track:          track,
		steps:          list,
		currentStep:    1,
		maxStepReached: last,
		completed:      StepSet{},
		withData:       setOf(withData, last),
		dirty:          StepSet{},
	}, nil
}

func stepList(g *steps.Graph, track steps.Track) ([]steps.Step, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: %q", steps.ErrUnknownTrack, track)
	}
	if g == nil {
		g = steps.Default()
	}
	list := g.StepsFor(track)
	if len(list) == 0 {
		return nil, fmt.Errorf("track %s has no steps", track)
	}
	return list, nil
}

// Mode returns the session mode.
func (s Session) Mode() Mode { return s.mode }

// Track returns the conference track.
func (s Session) Track() steps.Track { return s.track }

// CurrentStep returns the index of the displayed step.
func (s Session) CurrentStep() int { return s.currentStep }

// MaxStepReached returns the create-mode high-water mark. In edit mode it
// is always the last step.
func (s Session) MaxStepReached() int { return s.maxStepReached }

// Steps returns the ordered steps of the session's track.
func (s Session) Steps() []steps.Step {
	out := make([]steps.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Step returns the step at index.
func (s Session) Step(index int) (steps.Step, bool) {
	if !s.inRange(index) {
		return steps.Step{}, false
	}
	return s.steps[index-1], true
}

// Current returns the displayed step.
func (s Session) Current() steps.Step {
	st, _ := s.Step(s.currentStep)
	return st
}

// FirstStep returns the first step index.
func (s Session) FirstStep() int { return 1 }

// LastStep returns the last step index.
func (s Session) LastStep() int { return len(s.steps) }

// Completed returns the completed step indices in ascending order.
func (s Session) Completed() []int { return s.completed.Sorted() }

// WithData returns the indices the server holds data for, ascending.
func (s Session) WithData() []int { return s.withData.Sorted() }

// Dirty returns the indices with unsaved edits, ascending.
func (s Session) Dirty() []int { return s.dirty.Sorted() }

// IsDirty reports whether step has unsaved edits.
func (s Session) IsDirty(step int) bool { return s.dirty.Has(step) }

// HasSaved reports whether step was completed in this flow or already held
// data on the server.
func (s Session) HasSaved(step int) bool {
	return s.completed.Has(step) || s.withData.Has(step)
}

// HasUnsavedChanges reports whether any step is dirty.
func (s Session) HasUnsavedChanges() bool {
	return len(s.dirty) > 0
}

// RequiredSaved reports whether every non-optional step has been saved.
func (s Session) RequiredSaved() bool {
	for _, st := range s.steps {
		if !st.Optional && !s.HasSaved(st.Index) {
			return false
		}
	}
	return true
}

func (s Session) inRange(step int) bool {
	return step >= 1 && step <= len(s.steps)
}

// Accessible reports whether the author may navigate to step.
func (s Session) Accessible(step int) bool {
	if !s.inRange(step) {
		return false
	}
	if s.mode == ModeEdit {
		return true
	}
	return s.completed.Has(step) || step <= s.maxStepReached
}

// GoToStep moves to target when it is accessible.
func (s Session) GoToStep(target int) (Session, bool) {
	if !s.Accessible(target) {
		return s, false
	}
	s.currentStep = target
	return s, true
}

// MarkFieldChanged flags step as having unsaved edits.
func (s Session) MarkFieldChanged(step int) (Session, bool) {
	if !s.inRange(step) {
		return s, false
	}
	s.dirty = s.dirty.with(step)
	return s, true
}

// RecordSaveSuccess applies a confirmed save of step. The step is no longer
// dirty; with MarkCompleted it joins the completed and with-data sets. In
// create mode, saving the step at the high-water mark unlocks the next one.
func (s Session) RecordSaveSuccess(step int, opts SaveOptions) (Session, bool) {
	if !s.inRange(step) {
		return s, false
	}
	s.dirty = s.dirty.without(step)
	if opts.MarkCompleted {
		s.completed = s.completed.with(step)
		s.withData = s.withData.with(step)
	}
	if s.mode == ModeCreate && step == s.maxStepReached && step < s.LastStep() {
		s.maxStepReached = step + 1
	}
	return s, true
}

// Advance moves to the next step. It does not check that the current step
// was completed; the host gates the control.
func (s Session) Advance() (Session, bool) {
	if s.currentStep >= s.LastStep() {
		return s, false
	}
	s.currentStep++
	if s.mode == ModeCreate && s.currentStep > s.maxStepReached {
		s.maxStepReached = s.currentStep
	}
	return s, true
}

// Retreat moves to the previous step.
func (s Session) Retreat() (Session, bool) {
	if s.currentStep <= s.FirstStep() {
		return s, false
	}
	s.currentStep--
	return s, true
}

// ToEdit converts a finished create flow into an edit flow over the same
// data, keeping unsaved edits.
func (s Session) ToEdit() Session {
	s.mode = ModeEdit
	s.maxStepReached = s.LastStep()
	return s
}
