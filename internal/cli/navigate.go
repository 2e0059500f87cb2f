package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"confradar/internal/steps"
	"confradar/internal/wizard"
)

type navOutcome int

const (
	navRefused navOutcome = iota
	navMoved
	navFinished // create flow done, switch to edit mode
)

// navigation moves the controller. The message is printed when the move is
// refused.
type navigation func(c *wizard.Controller) (navOutcome, string)

func newGotoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <conference-id> <step>",
		Short: "Jump to a step",
		Long: `Jump to a step by number or key. In create mode only steps up to the
furthest one reached are open; in edit mode every step is.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNavigation(cmd.Context(), args[0], func(c *wizard.Controller) (navOutcome, string) {
				st, err := resolveStep(c.Session(), args[1])
				if err != nil {
					return navRefused, err.Error()
				}
				if c.OnStepClick(st.Index) {
					return navMoved, ""
				}
				return navRefused, fmt.Sprintf("step %d (%s) is not reachable yet", st.Index, st.Label)
			})
		},
	}
}

func newNextCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next <conference-id>",
		Short: "Move to the next step without saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNavigation(cmd.Context(), args[0], func(c *wizard.Controller) (navOutcome, string) {
				s := c.Session()
				if s.Mode() == wizard.ModeCreate && !s.HasSaved(s.CurrentStep()) {
					return navRefused, fmt.Sprintf("save or skip step %d (%s) first", s.CurrentStep(), s.Current().Label)
				}
				if c.OnNext() {
					return navMoved, ""
				}
				return navRefused, "already on the last step"
			})
		},
	}
}

func newBackCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "back <conference-id>",
		Short: "Move to the previous step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNavigation(cmd.Context(), args[0], func(c *wizard.Controller) (navOutcome, string) {
				if c.OnPrevious() {
					return navMoved, ""
				}
				return navRefused, "already on the first step"
			})
		},
	}
}

func newSkipCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <conference-id>",
		Short: "Skip an optional step",
		Long: `Pass over the current step without saving it. Only optional steps of a
conference in create mode can be skipped. Skipping the last step finishes the
conference when every required step is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runNavigation(cmd.Context(), args[0], func(c *wizard.Controller) (navOutcome, string) {
				s := c.Session()
				if c.OnSkip() {
					return navMoved, ""
				}
				if s.Mode() != wizard.ModeCreate {
					return navRefused, "only steps of a conference in create mode can be skipped"
				}
				if !s.Current().Skippable {
					return navRefused, fmt.Sprintf("step %d (%s) cannot be skipped", s.CurrentStep(), s.Current().Label)
				}
				if s.CurrentStep() == s.LastStep() && s.RequiredSaved() {
					return navFinished, ""
				}
				return navRefused, "required steps are still missing"
			})
		},
	}
}

// runNavigation loads conference id, applies nav and stores the new position.
func (app *App) runNavigation(ctx context.Context, id string, nav navigation) error {
	c, _, err := app.openController(ctx, id)
	if err != nil {
		return app.fail(err, ExitCodeError)
	}

	outcome, refusal := nav(c)
	if outcome == navRefused {
		app.Printer.Warning(refusal)
		return NewExitError(ExitCodeError)
	}

	s := c.Session()
	if outcome == navFinished {
		s = app.finish(s)
	}
	if err := app.Conferences.Sync(ctx, id, s); err != nil {
		return app.fail(fmt.Errorf("failed to record position: %w", err), ExitCodeError)
	}
	app.Printer.StepIndicator(s)
	return nil
}

// finish switches a completed create flow to edit mode.
func (app *App) finish(s wizard.Session) wizard.Session {
	app.Printer.Success("all required steps saved, conference is now in edit mode")
	return s.ToEdit()
}

// resolveStep finds a step of the session's track by number or key.
func resolveStep(s wizard.Session, ref string) (steps.Step, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if st, ok := s.Step(n); ok {
			return st, nil
		}
		return steps.Step{}, fmt.Errorf("%s track has no step %d", s.Track(), n)
	}
	for _, st := range s.Steps() {
		if st.Key == ref {
			return st, nil
		}
	}
	return steps.Step{}, fmt.Errorf("%s track has no step %q", s.Track(), ref)
}
