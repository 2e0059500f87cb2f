package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"confradar/internal/occupancy"
	"confradar/internal/scheduling"
	"confradar/internal/steps"
	"confradar/internal/wizard"
)

func newUpdateAllCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update-all <conference-id> <file>",
		Short: "Update several steps of a conference in edit mode",
		Long: `Update several steps at once. The YAML or JSON file maps step keys to
their fields:

  basic:
    title: GopherCon EU
  policies:
    refund: 14 days

Steps are saved in order and the update stops at the first failure. Steps
saved before the failure stay saved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			doc, err := readPayloadFile(args[1])
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			ctx := cmd.Context()
			c, saved, err := app.openController(ctx, id)
			if err != nil {
				return app.fail(err, ExitCodeError)
			}
			if c.Session().Mode() != wizard.ModeEdit {
				return app.fail(fmt.Errorf("conference %s: %w", id, wizard.ErrWrongMode), ExitCodeError)
			}

			keys := make([]string, 0, len(doc))
			for key := range doc {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			payloads := make(map[int]wizard.Payload, len(doc))
			var sessionsStep *steps.Step
			for _, key := range keys {
				st, err := resolveStep(c.Session(), key)
				if err != nil {
					return app.fail(err, ExitCodeError)
				}
				fields, ok := doc[key].(map[string]any)
				if !ok {
					return app.fail(fmt.Errorf("fields of step %q must be a mapping", key), ExitCodeError)
				}
				payload := wizard.Payload(fields)
				if st.IsScheduling() {
					assignSessionIDs(payload)
					sessionsStep = &st
				}
				payloads[st.Index] = payload
				c.OnFieldChanged(st.Index)
			}

			phase, err := app.configuredPhase()
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				replaced := map[string]bool{}
				if sessionsStep != nil {
					replaced = sessionIDs(saved[sessionsStep.Index])
				}
				c.SetGate(scheduling.NewStepGate(scheduling.NewValidator(replacingSource{store: store, replaced: replaced}), phase))
				c.SetProgressCallback(app.Printer.Progress)

				updateErr := c.OnUpdateAll(ctx, payloads)

				if sessionsStep != nil && !c.Session().IsDirty(sessionsStep.Index) {
					if _, err := syncBookings(ctx, store, saved[sessionsStep.Index], payloads[sessionsStep.Index]); err != nil {
						return app.fail(err, ExitCodeError)
					}
				}
				if updateErr != nil {
					return app.fail(updateErr, exitCodeFor(updateErr))
				}

				app.Printer.Success(fmt.Sprintf("updated %d steps", len(payloads)))
				app.Printer.StepIndicator(c.Session())
				return nil
			})
		},
	}
}
