package occupancy

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"confradar/internal/timeslot"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS bookings (
    id         TEXT PRIMARY KEY,
    room_id    TEXT NOT NULL,
    date       DATE NOT NULL,
    start_at   TIMESTAMP NOT NULL,
    end_at     TIMESTAMP NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_room_date ON bookings (room_id, date);
`

// Timestamps are read back as text in the full wire layout so they are
// normalized the same way as every other backend.
const pgTimestampFormat = `'YYYY-MM-DD"T"HH24:MI:SS'`

// PostgresStore keeps bookings in PostgreSQL. A pgx.Conn is not safe for
// concurrent use, so calls are serialized.
type PostgresStore struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// NewPostgresStore connects to dsn, pings the server and creates the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("occupancy: parse postgres config: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("occupancy: connect postgres: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("occupancy: ping postgres: %w", err)
	}

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("occupancy: create schema: %w", err)
	}

	return &PostgresStore{conn: conn}, nil
}

// QueryRoomOccupancy implements [Store].
func (s *PostgresStore) QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := `
SELECT id, room_id, to_char(date, 'YYYY-MM-DD'),
       to_char(start_at, ` + pgTimestampFormat + `),
       to_char(end_at, ` + pgTimestampFormat + `)
FROM bookings
WHERE room_id = $1
  AND date >= $2::date
  AND date <= $3::date
ORDER BY start_at
`
	rows, err := s.conn.Query(ctx, q, roomID, dates.From.String(), dates.To.String())
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
func (s *PostgresStore) Book(ctx context.Context, session timeslot.Session) (timeslot.Session, error) {
	session, raw, err := prepare(session)
	if err != nil {
		return timeslot.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(ctx, `
INSERT INTO bookings (id, room_id, date, start_at, end_at)
VALUES ($1, $2, $3::date, $4::timestamp, $5::timestamp)
ON CONFLICT (id) DO UPDATE SET
    room_id = EXCLUDED.room_id,
    date = EXCLUDED.date,
    start_at = EXCLUDED.start_at,
    end_at = EXCLUDED.end_at,
    updated_at = now()
`, raw.ID, raw.RoomID, raw.Date, raw.Start, raw.End)
	if err != nil {
		return timeslot.Session{}, fmt.Errorf("occupancy: book %q: %w", raw.ID, err)
	}
	return session, nil
}

// Cancel implements [Store].
func (s *PostgresStore) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.conn.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("occupancy: cancel %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the connection.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close(context.Background())
}
