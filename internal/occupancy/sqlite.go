package occupancy

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"confradar/internal/timeslot"
)

// DefaultSQLiteFile is the database file name used under the storage dir.
const DefaultSQLiteFile = "occupancy.db"

// sqliteSchema is safe to run on every open.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bookings (
    id         TEXT PRIMARY KEY,
    room_id    TEXT NOT NULL,
    date       TEXT NOT NULL,
    start_at   TEXT NOT NULL,
    end_at     TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS bookings_room_date ON bookings (room_id, date);
`

// SQLiteStore keeps bookings in a local SQLite database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path, enables WAL mode
// and a busy timeout, and creates the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("occupancy: open database: %w", err)
	}

	// SQLite has a single writer; one connection avoids SQLITE_BUSY between
	// pooled connections that would each need their own PRAGMAs.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("occupancy: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("occupancy: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("occupancy: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// QueryRoomOccupancy implements [Store]. Dates are stored as YYYY-MM-DD so
// the range filter compares them as text.
func (s *SQLiteStore) QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error) {
	const q = `
		SELECT id, room_id, date, start_at, end_at
		FROM bookings
		WHERE room_id = ? AND date >= ? AND date <= ?
		ORDER BY start_at`
	rows, err := s.db.QueryContext(ctx, q, roomID, dates.From.String(), dates.To.String())
	if err != nil {
		return nil, fmt.Errorf("occupancy: query room %q: %w", roomID, err)
	}
	defer rows.Close()

	var raws []timeslot.RawSession
	for rows.Next() {
		var r timeslot.RawSession
		if err := rows.Scan(&r.ID, &r.RoomID, &r.Date, &r.Start, &r.End); err != nil {
			return nil, fmt.Errorf("occupancy: scan booking: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("occupancy: query room %q: %w", roomID, err)
	}
	return normalize(raws), nil
}

// Book implements [Store].
func (s *SQLiteStore) Book(ctx context.Context, session timeslot.Session) (timeslot.Session, error) {
	session, raw, err := prepare(session)
	if err != nil {
		return timeslot.Session{}, err
	}

	const q = `
		INSERT INTO bookings (id, room_id, date, start_at, end_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			date = excluded.date,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, q, raw.ID, raw.RoomID, raw.Date, raw.Start, raw.End); err != nil {
		return timeslot.Session{}, fmt.Errorf("occupancy: book %q: %w", raw.ID, err)
	}
	return session, nil
}

// Cancel implements [Store].
func (s *SQLiteStore) Cancel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("occupancy: cancel %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("occupancy: cancel %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
