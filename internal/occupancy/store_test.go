package occupancy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confradar/internal/config"
	"confradar/internal/scheduling"
	"confradar/internal/timeslot"
)

var _ scheduling.OccupancySource = Store(nil)

func booking(t *testing.T, id, room, date, start, end string) timeslot.Session {
	t.Helper()
	s, ok := timeslot.RawSession{ID: id, RoomID: room, Date: date, Start: start, End: end}.Normalize()
	require.True(t, ok)
	return s
}

func ids(sessions []timeslot.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	june1 := timeslot.MustDate("2024-06-01")
	june2 := timeslot.MustDate("2024-06-02")

	t.Run("empty room", func(t *testing.T) {
		got, err := store.QueryRoomOccupancy(ctx, "r1", timeslot.SingleDay(june1))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("book and query", func(t *testing.T) {
		for _, b := range []timeslot.Session{
			booking(t, "late", "r1", "2024-06-01", "14:00:00", "15:00:00"),
			booking(t, "early", "r1", "2024-06-01", "09:00:00", "10:00:00"),
			booking(t, "next-day", "r1", "2024-06-02", "09:00:00", "10:00:00"),
			booking(t, "other-room", "r2", "2024-06-01", "09:00:00", "10:00:00"),
		} {
			_, err := store.Book(ctx, b)
			require.NoError(t, err)
		}

		got, err := store.QueryRoomOccupancy(ctx, "r1", timeslot.SingleDay(june1))
		require.NoError(t, err)
		assert.Equal(t, []string{"early", "late"}, ids(got))
		assert.Equal(t, "09:00:00-10:00:00", got[0].Interval.String())
		assert.Equal(t, june1, got[0].Date)

		got, err = store.QueryRoomOccupancy(ctx, "r1", timeslot.DateRange{From: june1, To: june2})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("rebooking replaces", func(t *testing.T) {
		_, err := store.Book(ctx, booking(t, "late", "r1", "2024-06-01", "16:00:00", "17:00:00"))
		require.NoError(t, err)

		got, err := store.QueryRoomOccupancy(ctx, "r1", timeslot.SingleDay(june1))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "16:00:00-17:00:00", got[1].Interval.String())
	})

	t.Run("assigns an id", func(t *testing.T) {
		b, err := store.Book(ctx, booking(t, "", "r3", "2024-06-01", "09:00:00", "10:00:00"))
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)

		got, err := store.QueryRoomOccupancy(ctx, "r3", timeslot.SingleDay(june1))
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID}, ids(got))
	})

	t.Run("rejects invalid bookings", func(t *testing.T) {
		_, err := store.Book(ctx, timeslot.Session{ID: "x", RoomID: "r1"})
		assert.ErrorIs(t, err, ErrInvalidBooking)

		_, err = store.Book(ctx, booking(t, "x", "", "2024-06-01", "09:00:00", "10:00:00"))
		assert.ErrorIs(t, err, ErrInvalidBooking)
	})

	t.Run("cancel", func(t *testing.T) {
		require.NoError(t, store.Cancel(ctx, "early"))

		got, err := store.QueryRoomOccupancy(ctx, "r1", timeslot.SingleDay(june1))
		require.NoError(t, err)
		assert.Equal(t, []string{"late"}, ids(got))

		assert.ErrorIs(t, store.Cancel(ctx, "early"), ErrNotFound)
	})

	t.Run("feeds the validator", func(t *testing.T) {
		v := scheduling.NewValidator(store)
		res, err := v.Validate(ctx, scheduling.Placement{
			Session: booking(t, "talk", "r1", "2024-06-01", "16:30:00", "17:30:00"),
		}, scheduling.PhaseWindow{})
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, []string{"late"}, ids(res.Conflicts))
	})

	t.Run("zoned bookings keep their instant", func(t *testing.T) {
		zoned, ok := timeslot.RawSession{
			ID: "zoned", RoomID: "r4",
			Start: "2024-06-01T09:00:00+02:00", End: "2024-06-01T10:00:00+02:00",
		}.Normalize()
		require.True(t, ok)
		_, err := store.Book(ctx, zoned)
		require.NoError(t, err)

		start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
		got, err := store.QueryRoomOccupancy(ctx, "r4", timeslot.SingleDay(timeslot.DateOf(start.In(time.Local))))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, start.Equal(got[0].Interval.Start), "stored start %s", got[0].Interval.Start)
		assert.True(t, start.Add(time.Hour).Equal(got[0].Interval.End))

		overlap, ok := timeslot.RawSession{
			ID: "utc-talk", RoomID: "r4",
			Start: "2024-06-01T07:15:00Z", End: "2024-06-01T07:45:00Z",
		}.Normalize()
		require.True(t, ok)

		res, err := scheduling.NewValidator(store).Validate(ctx, scheduling.Placement{Session: overlap}, scheduling.PhaseWindow{})
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, []string{"zoned"}, ids(res.Conflicts))
	})
}

func TestFileStore(t *testing.T) {
	t.Setenv("CONFRADAR_OCCUPANCY_PATH", "")
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "occupancy.yaml"))
	exerciseStore(t, store)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "occupancy.db"))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("CONFRADAR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CONFRADAR_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.conn.Exec(ctx, "TRUNCATE bookings")
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestFileStore_Read(t *testing.T) {
	t.Run("missing file reads as empty", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "occupancy.yaml"))
		doc, err := store.Read()
		require.NoError(t, err)
		assert.Empty(t, doc.Bookings)
	})

	t.Run("malformed rows are skipped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupancy.yaml")
		content := `bookings:
  - id: good
    room_id: r1
    date: "2024-06-01"
    start: "10:00:00"
    end: "11:00:00"
  - id: backwards
    room_id: r1
    date: "2024-06-01"
    start: "12:00:00"
    end: "11:00:00"
  - id: garbage
    room_id: r1
    date: "2024-06-01"
    start: soon
    end: later
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		got, err := NewFileStore(path).QueryRoomOccupancy(context.Background(), "r1", timeslot.SingleDay(timeslot.MustDate("2024-06-01")))
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, ids(got))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupancy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bookings: {not: [valid"), 0644))

		_, err := NewFileStore(path).Read()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read occupancy")
	})
}

func TestFileStore_NoTempFileLeft(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "occupancy.yaml"))

	_, err := store.Book(context.Background(), booking(t, "a", "r1", "2024-06-01", "09:00:00", "10:00:00"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "occupancy.yaml.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestResolvePath(t *testing.T) {
	t.Run("relative file joins dir", func(t *testing.T) {
		t.Setenv("CONFRADAR_OCCUPANCY_PATH", "")
		assert.Equal(t, filepath.Join("data", "rooms.yaml"), ResolvePath("data", "rooms.yaml"))
		assert.Equal(t, filepath.Join("data", DefaultFileName), ResolvePath("data", ""))
		assert.Equal(t, "/abs/rooms.yaml", ResolvePath("data", "/abs/rooms.yaml"))
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("CONFRADAR_OCCUPANCY_PATH", "/env/rooms.yaml")
		assert.Equal(t, "/env/rooms.yaml", ResolvePath("data", "rooms.yaml"))
	})
}

func TestOpen(t *testing.T) {
	t.Setenv("CONFRADAR_OCCUPANCY_PATH", "")
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(ctx, config.StorageConfig{Backend: config.BackendYAML, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, Dir: filepath.Join(dir, "db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.StorageConfig{Backend: "mongo"})
	assert.Error(t, err)
}
