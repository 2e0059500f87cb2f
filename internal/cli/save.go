package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"confradar/internal/occupancy"
	"confradar/internal/scheduling"
	"confradar/internal/wizard"
)

func newSaveCommand(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save <conference-id> <step> [key=value...]",
		Short: "Save one step",
		Long: `Save the fields of one step, given by number or key.

In create mode the step is saved and the wizard advances to the next one.
In edit mode the step is updated in place. Saving the last step of a create
flow switches the conference to edit mode.

Fields come from key=value arguments, from a YAML or JSON --file, or both
(arguments win). A sessions step is checked against the phase window and the
room bookings before it is saved, then its sessions are booked.

Examples:
  confradar save 3f2a basic title="GopherCon EU" city=Berlin
  confradar save 3f2a sessions --file sessions.yaml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := buildPayload(file, args[2:])
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			ctx := cmd.Context()
			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				return app.saveStep(ctx, store, args[0], args[1], payload)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read fields from a YAML or JSON file")
	return cmd
}

func (app *App) saveStep(ctx context.Context, store occupancy.Store, id, ref string, payload wizard.Payload) error {
	c, saved, err := app.openController(ctx, id)
	if err != nil {
		return app.fail(err, ExitCodeError)
	}

	st, err := resolveStep(c.Session(), ref)
	if err != nil {
		return app.fail(err, ExitCodeError)
	}
	if c.Session().CurrentStep() != st.Index && !c.OnStepClick(st.Index) {
		app.Printer.Warning(fmt.Sprintf("step %d (%s) is not reachable yet", st.Index, st.Label))
		return NewExitError(ExitCodeError)
	}

	phase, err := app.configuredPhase()
	if err != nil {
		return app.fail(err, ExitCodeError)
	}
	if st.IsScheduling() {
		assignSessionIDs(payload)
	}
	source := replacingSource{store: store, replaced: sessionIDs(saved[st.Index])}
	c.SetGate(scheduling.NewStepGate(scheduling.NewValidator(source), phase))

	c.OnFieldChanged(st.Index)
	if c.Session().Mode() == wizard.ModeCreate {
		err = c.OnSubmitAndAdvance(ctx, payload)
	} else {
		err = c.OnUpdateThisStep(ctx, payload)
	}
	if err != nil {
		return app.fail(err, exitCodeFor(err))
	}
	app.Printer.Success(fmt.Sprintf("saved %s", st.Label))

	if st.IsScheduling() {
		n, err := syncBookings(ctx, store, saved[st.Index], payload)
		if err != nil {
			return app.fail(err, ExitCodeError)
		}
		app.Printer.Info(fmt.Sprintf("booked %d sessions", n))
	}

	s := c.Session()
	if s.Mode() == wizard.ModeCreate && st.Index == s.LastStep() && s.RequiredSaved() {
		s = app.finish(s)
	}
	if err := app.Conferences.Sync(ctx, id, s); err != nil {
		return app.fail(fmt.Errorf("failed to record position: %w", err), ExitCodeError)
	}
	app.Printer.StepIndicator(s)
	return nil
}
