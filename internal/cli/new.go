package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"confradar/internal/steps"
	"confradar/internal/wizard"
)

func newNewCommand(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new <track>",
		Short: "Start a new conference",
		Long: `Create a conference record in create mode, positioned on the first step.

Example:
  confradar new technical --title "GopherCon EU"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := steps.ParseTrack(args[0])
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			ctx := cmd.Context()
			r, err := app.Conferences.Create(ctx, title, track)
			if err != nil {
				return app.fail(fmt.Errorf("failed to create conference: %w", err), ExitCodeError)
			}

			s, err := wizard.SessionFromSeed(app.Graph, app.Conferences.SeedOf(r))
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			app.Printer.Success(fmt.Sprintf("created conference %s", r.ID))
			app.Printer.StepIndicator(s)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "conference title")
	return cmd
}
