// Package cli wires the conference wizard and the room scheduler into cobra
// commands.
//
// Commands receive their collaborators through [App] so tests can swap the
// stores and capture output. Failures are returned as [ExitError] values and
// only [Execute] turns them into a process exit code.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"confradar/internal/conference"
	"confradar/internal/config"
	"confradar/internal/manifest"
	"confradar/internal/occupancy"
	"confradar/internal/output"
	"confradar/internal/scheduling"
	"confradar/internal/steps"
	"confradar/internal/timeslot"
	"confradar/internal/wizard"
)

// Exit codes returned by commands.
const (
	ExitCodeOK       = 0
	ExitCodeError    = 1
	ExitCodeRejected = 2
)

// OccupancyOpener opens the bookings backend for one command.
type OccupancyOpener func(ctx context.Context) (occupancy.Store, error)

// App holds the dependencies shared by every command.
type App struct {
	Config        *config.Config
	Printer       *output.Printer
	Graph         *steps.Graph
	Conferences   *conference.Store
	OpenOccupancy OccupancyOpener
}

// NewApp builds the production dependencies from cfg.
func NewApp(cfg *config.Config) (*App, error) {
	g := steps.Default()
	if cfg.Steps.Manifest != "" {
		m, err := manifest.Load(cfg.Steps.Manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load step manifest: %w", err)
		}
		g, err = steps.NewGraphFromManifest(m)
		if err != nil {
			return nil, fmt.Errorf("invalid step manifest %s: %w", cfg.Steps.Manifest, err)
		}
	}

	printer := output.NewPrinter()
	printer.SetColor(cfg.Output.Color)

	storage := cfg.Storage
	return &App{
		Config:      cfg,
		Printer:     printer,
		Graph:       g,
		Conferences: conference.NewStore(filepath.Join(storage.Dir, "conferences"), g),
		OpenOccupancy: func(ctx context.Context) (occupancy.Store, error) {
			return occupancy.Open(ctx, storage)
		},
	}, nil
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "confradar",
		Short: "Conference setup wizard and room scheduler",
		Long: `confradar walks a conference through its setup steps and keeps
session placements free of room conflicts.

A conference starts in create mode, where steps unlock one at a time. Once
the last step is saved it switches to edit mode and every step is open.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStepsCommand(app),
		newNewCommand(app),
		newListCommand(app),
		newStatusCommand(app),
		newGotoCommand(app),
		newNextCommand(app),
		newBackCommand(app),
		newSkipCommand(app),
		newSaveCommand(app),
		newUpdateAllCommand(app),
		newScheduleCommand(app),
	)

	return rootCmd
}

// ExecuteResult is the outcome of a CLI run.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// Execute runs the CLI with the loaded configuration and exits the process.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitCodeError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result := RunWithConfig(ctx, cfg, os.Args[1:])
	stop()
	os.Exit(result.ExitCode)
}

// RunWithConfig runs the CLI against cfg with the given arguments.
func RunWithConfig(ctx context.Context, cfg *config.Config, args []string) ExecuteResult {
	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return ExecuteResult{ExitCode: ExitCodeError, Err: err}
	}
	return Run(ctx, app, args)
}

// Run executes the root command for app. Errors that are not an
// [ExitError] are printed and mapped to exit code 1.
func Run(ctx context.Context, app *App, args []string) ExecuteResult {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		app.Printer.Error(err.Error())
		return ExecuteResult{ExitCode: ExitCodeError, Err: err}
	}
	return ExecuteResult{ExitCode: ExitCodeOK}
}

// withOccupancy opens the bookings backend, runs fn and closes it.
func (app *App) withOccupancy(ctx context.Context, fn func(occupancy.Store) error) error {
	store, err := app.OpenOccupancy(ctx)
	if err != nil {
		return fmt.Errorf("failed to open occupancy store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// configuredPhase returns the phase window from the scheduling config, or a
// zero window when no bounds are set.
func (app *App) configuredPhase() (scheduling.PhaseWindow, error) {
	sc := app.Config.Scheduling
	if sc.PhaseStart == "" && sc.PhaseEnd == "" {
		return scheduling.PhaseWindow{}, nil
	}
	w, ok := scheduling.PhaseWindowOf(sc.PhaseName, sc.PhaseStart, sc.PhaseEnd, timeslot.Date{})
	if !ok {
		return scheduling.PhaseWindow{}, fmt.Errorf("%w: scheduling phase %q to %q is not a valid window",
			config.ErrInvalidConfig, sc.PhaseStart, sc.PhaseEnd)
	}
	return w, nil
}

// openController loads conference id into a wizard controller using the
// configured navigation policy. The saved payloads are returned alongside.
func (app *App) openController(ctx context.Context, id string) (*wizard.Controller, map[int]wizard.Payload, error) {
	c, payloads, err := wizard.Open(ctx, app.Conferences, app.Conferences.Saver(id), app.Graph, id)
	if err != nil {
		return nil, nil, err
	}
	c.SetNavigationPolicy(wizard.NavigationPolicy(app.Config.Wizard.Navigation))
	return c, payloads, nil
}

// fail prints err and returns the matching exit error.
func (app *App) fail(err error, code int) error {
	app.Printer.Error(err.Error())
	return NewExitError(code)
}
