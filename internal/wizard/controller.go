package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"confradar/internal/steps"
)

// Sentinel errors returned by [Controller] operations.
var (
	// ErrSaveRejected means the host did not confirm the save. The step
	// stays dirty so the unsaved-changes indicator remains visible.
	ErrSaveRejected = errors.New("step save rejected")

	// ErrStepBlocked means a [StepGate] refused the step payload before it
	// was sent for saving.
	ErrStepBlocked = errors.New("step payload blocked")

	// ErrWrongMode means the operation belongs to the other mode's controls
	// (for example OnSubmitAndAdvance in an edit flow).
	ErrWrongMode = errors.New("operation not available in this mode")

	// ErrUnsavedChanges is reported by [Controller.LeaveCheck] when the
	// navigation policy blocks leaving a dirty step.
	ErrUnsavedChanges = errors.New("current step has unsaved changes")
)

// SaveResult is the host's answer to a step save.
type SaveResult struct {
	Success bool
	Message string
}

// StepSaver persists one step's payload.
//
// SaveStep returns a transport error only when the call itself failed; a
// save the backend refused is reported with Success=false and a Message.
type StepSaver interface {
	SaveStep(ctx context.Context, step steps.Step, payload Payload) (SaveResult, error)
}

// Loader fetches an existing conference for an edit or resumed create flow.
type Loader interface {
	LoadExisting(ctx context.Context, conferenceID string) (Seed, error)
}

// StepGate validates a step payload before it is saved. Implementations
// decide which steps they care about and return nil for the rest.
type StepGate interface {
	CheckStep(ctx context.Context, step steps.Step, payload Payload) error
}

// ProgressCallback is invoked before each step save in [Controller.OnUpdateAll].
//
// The callback receives stepIndex (1-based position in the batch), totalSteps
// in the batch, and the step being saved.
type ProgressCallback func(stepIndex, totalSteps int, step steps.Step)

// NavigationPolicy decides whether navigation may leave a dirty step.
type NavigationPolicy string

const (
	// NavigationAllow lets the author leave a dirty step. The step keeps its
	// dirty flag, so the indicator keeps warning until it is saved.
	NavigationAllow NavigationPolicy = "allow"

	// NavigationBlock refuses navigation away from a dirty current step.
	NavigationBlock NavigationPolicy = "block"
)

// IsValid reports whether p is a known policy.
func (p NavigationPolicy) IsValid() bool {
	return p == NavigationAllow || p == NavigationBlock
}

// Controller binds a [Session] to host persistence.
//
// Controller is not safe for concurrent use; each authoring flow owns one.
// Saves are applied to the session before any advance that follows them, so
// callers never observe an advance past a step whose save is still pending.
// Use [NewController] to create one.
type Controller struct {
	session  Session
	saver    StepSaver
	gate     StepGate
	progress ProgressCallback
	policy   NavigationPolicy
}

// NewController creates a Controller over session that saves through saver.
// The navigation policy defaults to [NavigationAllow].
func NewController(session Session, saver StepSaver) *Controller {
	return &Controller{
		session: session,
		saver:   saver,
		policy:  NavigationAllow,
	}
}

// Open loads an existing conference through loader and returns a controller
// positioned on the restored step, together with the saved payloads.
func Open(ctx context.Context, loader Loader, saver StepSaver, g *steps.Graph, conferenceID string) (*Controller, map[int]Payload, error) {
	seed, err := loader.LoadExisting(ctx, conferenceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load conference %s: %w", conferenceID, err)
	}
	session, err := SessionFromSeed(g, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore conference %s: %w", conferenceID, err)
	}
	return NewController(session, saver), seed.Payloads, nil
}

// SetGate installs a payload gate consulted before every save.
func (c *Controller) SetGate(gate StepGate) {
	c.gate = gate
}

// SetProgressCallback configures an optional progress callback for batch saves.
func (c *Controller) SetProgressCallback(cb ProgressCallback) {
	c.progress = cb
}

// SetNavigationPolicy changes the dirty-step navigation policy. Unknown
// values are ignored.
func (c *Controller) SetNavigationPolicy(p NavigationPolicy) {
	if p.IsValid() {
		c.policy = p
	}
}

// Session returns the current session value.
func (c *Controller) Session() Session {
	return c.session
}

// LeaveCheck reports whether the current step may be left under the
// navigation policy. Hosts use it to disable navigation controls.
func (c *Controller) LeaveCheck() error {
	if c.policy == NavigationBlock && c.session.IsDirty(c.session.CurrentStep()) {
		return ErrUnsavedChanges
	}
	return nil
}

func (c *Controller) navigate(next Session, ok bool) bool {
	if !ok {
		return false
	}
	if next.CurrentStep() != c.session.CurrentStep() && c.LeaveCheck() != nil {
		return false
	}
	c.session = next
	return true
}

// OnStepClick navigates to step when it is accessible.
func (c *Controller) OnStepClick(step int) bool {
	return c.navigate(c.session.GoToStep(step))
}

// OnPrevious moves to the previous step.
func (c *Controller) OnPrevious() bool {
	return c.navigate(c.session.Retreat())
}

// OnNext moves to the next step without saving.
func (c *Controller) OnNext() bool {
	return c.navigate(c.session.Advance())
}

// OnSkip passes over the current step in a create flow when the step is
// skippable. The step is not marked completed.
func (c *Controller) OnSkip() bool {
	if c.session.Mode() != ModeCreate || !c.session.Current().Skippable {
		return false
	}
	return c.navigate(c.session.Advance())
}

// OnFieldChanged records a field edit on step.
func (c *Controller) OnFieldChanged(step int) {
	c.session, _ = c.session.MarkFieldChanged(step)
}

// OnSubmitAndAdvance saves the current step of a create flow and, once the
// save is confirmed, marks it completed and moves to the next step. On the
// last step the session stays put.
func (c *Controller) OnSubmitAndAdvance(ctx context.Context, payload Payload) error {
	if c.session.Mode() != ModeCreate {
		return ErrWrongMode
	}
	if err := c.save(ctx, c.session.Current(), payload); err != nil {
		return err
	}
	c.session, _ = c.session.Advance()
	return nil
}

// OnUpdateThisStep saves the current step of an edit flow.
func (c *Controller) OnUpdateThisStep(ctx context.Context, payload Payload) error {
	if c.session.Mode() != ModeEdit {
		return ErrWrongMode
	}
	return c.save(ctx, c.session.Current(), payload)
}

// OnUpdateAll saves every dirty step of an edit flow that has a payload in
// payloads, in step order. It stops at the first failure; steps saved before
// the failure stay saved.
func (c *Controller) OnUpdateAll(ctx context.Context, payloads map[int]Payload) error {
	if c.session.Mode() != ModeEdit {
		return ErrWrongMode
	}

	var batch []int
	for _, i := range c.session.Dirty() {
		if _, ok := payloads[i]; ok {
			batch = append(batch, i)
		}
	}
	sort.Ints(batch)

	for n, i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, _ := c.session.Step(i)
		if c.progress != nil {
			c.progress(n+1, len(batch), step)
		}
		if err := c.save(ctx, step, payloads[i]); err != nil {
			return fmt.Errorf("step %d (%s): %w", step.Index, step.Label, err)
		}
	}
	return nil
}

// save runs the gate and the saver for one step and records success.
func (c *Controller) save(ctx context.Context, step steps.Step, payload Payload) error {
	if c.gate != nil {
		if err := c.gate.CheckStep(ctx, step, payload); err != nil {
			return fmt.Errorf("%w: %w", ErrStepBlocked, err)
		}
	}

	res, err := c.saver.SaveStep(ctx, step, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveRejected, err)
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "save was not confirmed"
		}
		return fmt.Errorf("%w: %s", ErrSaveRejected, msg)
	}

	c.session, _ = c.session.RecordSaveSuccess(step.Index, SaveOptions{MarkCompleted: true})
	return nil
}
