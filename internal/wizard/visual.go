package wizard

// Status is the primary visual state of a step in the step indicator.
type Status string

const (
	StatusCurrent   Status = "current"
	StatusDirty     Status = "dirty"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
)

// Visual is what the step indicator draws for one step.
type Visual struct {
	Status Status

	// Unsaved is the small warning overlay shown when a step has unsaved
	// edits but its primary status is not StatusDirty.
	Unsaved bool
}

// precedence resolves a step's flags into its visual state. It is the only
// place the ordering is encoded:
//
//  1. current beats everything; dirty shows as the overlay
//  2. edit mode: saved beats dirty; dirty shows as the overlay
//  3. dirty
//  4. saved (create mode only reaches here when not dirty)
//  5. empty
//
// Edit flows start with most steps pre-populated, so an edit must not make a
// saved step look unsaved.
func precedence(mode Mode, current, dirty, saved bool) Visual {
	switch {
	case current:
		return Visual{Status: StatusCurrent, Unsaved: dirty}
	case mode == ModeEdit && saved:
		return Visual{Status: StatusCompleted, Unsaved: dirty}
	case dirty:
		return Visual{Status: StatusDirty}
	case saved:
		return Visual{Status: StatusCompleted}
	default:
		return Visual{Status: StatusEmpty}
	}
}

// VisualState returns the indicator state of step. Out-of-range steps are
// empty.
func (s Session) VisualState(step int) Visual {
	if !s.inRange(step) {
		return Visual{Status: StatusEmpty}
	}
	return precedence(s.mode, step == s.currentStep, s.dirty.Has(step), s.HasSaved(step))
}

// Indicator returns the visual state of every step in order.
func (s Session) Indicator() []Visual {
	out := make([]Visual, len(s.steps))
	for i := range s.steps {
		out[i] = s.VisualState(i + 1)
	}
	return out
}
