package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"confradar/internal/occupancy"
	"confradar/internal/scheduling"
	"confradar/internal/timeslot"
)

// placementFlags are the flags shared by schedule check and schedule book.
type placementFlags struct {
	id         string
	room       string
	date       string
	start      string
	end        string
	exclude    string
	phaseStart string
	phaseEnd   string
}

func (f *placementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "session id")
	cmd.Flags().StringVar(&f.room, "room", "", "room id")
	cmd.Flags().StringVar(&f.date, "date", "", "session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.start, "start", "", "start time (HH:MM:SS or YYYY-MM-DDTHH:MM:SS)")
	cmd.Flags().StringVar(&f.end, "end", "", "end time (HH:MM:SS or YYYY-MM-DDTHH:MM:SS)")
	cmd.Flags().StringVar(&f.exclude, "exclude", "", "booking id to ignore, defaults to --id")
	cmd.Flags().StringVar(&f.phaseStart, "phase-start", "", "phase window start, overrides scheduling.phase_start")
	cmd.Flags().StringVar(&f.phaseEnd, "phase-end", "", "phase window end, overrides scheduling.phase_end")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *placementFlags) placement() scheduling.Placement {
	raw := timeslot.RawSession{ID: f.id, RoomID: f.room, Date: f.date, Start: f.start, End: f.end}
	s, ok := raw.Normalize()
	if !ok {
		date, _ := timeslot.ParseDate(f.date)
		s = timeslot.Session{ID: f.id, RoomID: f.room, Date: date}
	}
	return scheduling.Placement{Session: s, ExcludeID: f.exclude}
}

// phase returns the window given on the command line, falling back to the
// configured one.
func (f *placementFlags) phase(app *App, date timeslot.Date) (scheduling.PhaseWindow, error) {
	if f.phaseStart == "" && f.phaseEnd == "" {
		return app.configuredPhase()
	}
	w, ok := scheduling.PhaseWindowOf("phase", f.phaseStart, f.phaseEnd, date)
	if !ok {
		return scheduling.PhaseWindow{}, fmt.Errorf("phase %q to %q is not a valid window", f.phaseStart, f.phaseEnd)
	}
	return w, nil
}

// check validates the placement described by f against store.
func (f *placementFlags) check(ctx context.Context, app *App, store occupancy.Store) (scheduling.Result, error) {
	p := f.placement()
	phase, err := f.phase(app, p.Session.Date)
	if err != nil {
		return scheduling.Result{}, err
	}
	return scheduling.NewValidator(store).Validate(ctx, p, phase)
}

func newScheduleCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Check and manage room bookings",
		Long: `Check session placements against the phase window and existing room
bookings, and manage the bookings themselves.

Exit codes:
  0 - placement accepted
  1 - error
  2 - placement rejected`,
	}

	cmd.AddCommand(
		newScheduleCheckCommand(app),
		newScheduleBookCommand(app),
		newScheduleCancelCommand(app),
		newScheduleListCommand(app),
	)
	return cmd
}

func newScheduleCheckCommand(app *App) *cobra.Command {
	var flags placementFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a session can be placed",
		Long: `Check a session placement without booking it.

Example:
  confradar schedule check --room hall-a --date 2024-06-01 --start 10:00:00 --end 10:45:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				res, err := flags.check(ctx, app, store)
				if err != nil {
					return app.fail(err, ExitCodeError)
				}
				app.Printer.Placement(res)
				if !res.Accepted {
					return NewExitError(ExitCodeRejected)
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newScheduleBookCommand(app *App) *cobra.Command {
	var flags placementFlags

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Check a session placement and book it",
		Long: `Check a session placement and book the room when it is accepted.
Booking an existing --id moves that booking.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				res, err := flags.check(ctx, app, store)
				if err != nil {
					return app.fail(err, ExitCodeError)
				}
				app.Printer.Placement(res)
				if !res.Accepted {
					return NewExitError(ExitCodeRejected)
				}

				booked, err := store.Book(ctx, res.Placement.Session)
				if err != nil {
					return app.fail(err, ExitCodeError)
				}
				app.Printer.Success(fmt.Sprintf("booked %s", booked.ID))
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newScheduleCancelCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				if err := store.Cancel(ctx, args[0]); err != nil {
					return app.fail(fmt.Errorf("failed to cancel %s: %w", args[0], err), ExitCodeError)
				}
				app.Printer.Success(fmt.Sprintf("cancelled %s", args[0]))
				return nil
			})
		},
	}
}

func newScheduleListCommand(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list <room>",
		Short: "List the bookings of a room",
		Long: `List the bookings of a room between two dates, both included.
--to defaults to --from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDateRange(from, to)
			if err != nil {
				return app.fail(err, ExitCodeError)
			}

			ctx := cmd.Context()
			return app.withOccupancy(ctx, func(store occupancy.Store) error {
				list, err := store.QueryRoomOccupancy(ctx, args[0], dates)
				if err != nil {
					return app.fail(err, ExitCodeError)
				}
				app.Printer.Sessions(args[0], list)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func parseDateRange(from, to string) (timeslot.DateRange, error) {
	start, ok := timeslot.ParseDate(from)
	if !ok {
		return timeslot.DateRange{}, fmt.Errorf("invalid --from date %q", from)
	}
	if to == "" {
		return timeslot.SingleDay(start), nil
	}
	end, ok := timeslot.ParseDate(to)
	if !ok {
		return timeslot.DateRange{}, fmt.Errorf("invalid --to date %q", to)
	}
	if end.Before(start) {
		return timeslot.DateRange{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return timeslot.DateRange{From: start, To: end}, nil
}
