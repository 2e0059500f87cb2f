package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"confradar/internal/conference"
	"confradar/internal/wizard"
)

func newStatusCommand(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status <conference-id>",
		Short: "Show the step indicator of a conference",
		Long: `Show every step of a conference with its state:

  ▶ current   ✓ saved   ● unsaved edits   ○ not started

With --watch the indicator is redrawn whenever the record changes on disk,
until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			if err := app.renderStatus(ctx, id); err != nil {
				return app.fail(err, ExitCodeError)
			}
			if !watch {
				return nil
			}
			if err := app.watchStatus(ctx, id); err != nil {
				return app.fail(err, ExitCodeError)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "redraw on every change")
	return cmd
}

func (app *App) renderStatus(ctx context.Context, id string) error {
	r, err := app.Conferences.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load conference %s: %w", id, err)
	}
	s, err := wizard.SessionFromSeed(app.Graph, app.Conferences.SeedOf(r))
	if err != nil {
		return fmt.Errorf("failed to restore conference %s: %w", id, err)
	}

	app.Printer.Title(fmt.Sprintf("%s (%s track)", displayTitle(r.Title), r.Track))
	app.Printer.StepIndicator(s)
	return nil
}

// watchStatus redraws the indicator of id on every record change until ctx
// is cancelled or the record is removed.
func (app *App) watchStatus(ctx context.Context, id string) error {
	if err := os.MkdirAll(app.Conferences.Dir(), 0755); err != nil {
		return err
	}

	w, err := conference.NewWatcher(app.Conferences)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if change.ID != id {
				continue
			}
			if change.Kind == conference.ChangeRemoved {
				app.Printer.Warning(fmt.Sprintf("conference %s was removed", id))
				return nil
			}
			if err := app.renderStatus(ctx, id); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}
