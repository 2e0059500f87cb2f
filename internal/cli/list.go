package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.Conferences.List(cmd.Context())
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			app.Printer.Title(fmt.Sprintf("conferences (%d)", len(records)))
			if len(records) == 0 {
				app.Printer.Info("  none yet, start one with: confradar new <track>")
				return nil
			}
			for _, r := range records {
				app.Printer.Info(fmt.Sprintf("  %s  %-9s %-6s step %d/%d  %s",
					r.ID, r.Track, r.Mode, r.CurrentStep, app.Graph.Len(r.Track), displayTitle(r.Title)))
			}
			return nil
		},
	}
}

func displayTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}
