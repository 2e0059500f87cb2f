package cli

import (
	"github.com/spf13/cobra"

	"confradar/internal/steps"
)

func newStepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <track>",
		Short: "List the setup steps of a track",
		Long: `List the setup steps of a conference track in order.

Tracks:
  research   - academic conferences, with a timeline step
  technical  - industry conferences`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := steps.ParseTrack(args[0])
			if err != nil {
				return app.fail(err, ExitCodeError)
			}
			app.Printer.StepList(track, app.Graph.StepsFor(track))
			return nil
		},
	}
}
