// Package occupancy stores room bookings.
//
// Three backends implement [Store]: a YAML file ([FileStore]), a SQLite
// database ([SQLiteStore]) and PostgreSQL ([PostgresStore]). Bookings are
// kept in their wire form and normalized on the way out, so a malformed row
// is skipped instead of failing the whole query.
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"confradar/internal/config"
	"confradar/internal/timeslot"
)

var (
	// ErrNotFound is returned by Cancel when no booking has the given ID.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidBooking is returned by Book for a session without a room or
	// without a valid interval.
	ErrInvalidBooking = errors.New("invalid booking")
)

// Store is a room booking backend. Every backend satisfies
// scheduling.OccupancySource through QueryRoomOccupancy.
type Store interface {
	// QueryRoomOccupancy returns the bookings of roomID whose date lies in
	// dates, ordered by start time.
	QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error)

	// Book inserts s, or replaces the booking with the same ID. A session
	// without an ID gets a fresh one. The stored session is returned.
	Book(ctx context.Context, s timeslot.Session) (timeslot.Session, error)

	// Cancel removes the booking with the given ID.
	Cancel(ctx context.Context, id string) error

	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendYAML, "":
		return NewFileStore(ResolvePath(cfg.Dir, cfg.OccupancyFile)), nil
	case config.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, DefaultSQLiteFile)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("occupancy: create database dir: %w", err)
		}
		return NewSQLiteStore(ctx, path)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// prepare validates s for booking and assigns an ID when it has none.
func prepare(s timeslot.Session) (timeslot.Session, timeslot.RawSession, error) {
	if s.RoomID == "" {
		return s, timeslot.RawSession{}, fmt.Errorf("%w: room is required", ErrInvalidBooking)
	}
	if s.Interval.IsZero() {
		return s, timeslot.RawSession{}, fmt.Errorf("%w: session %s has no interval", ErrInvalidBooking, s.ID)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s, s.Raw(), nil
}

// normalize drops malformed rows and orders the rest by start time.
func normalize(raws []timeslot.RawSession) []timeslot.Session {
	out := timeslot.NormalizeAll(raws)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out
}
