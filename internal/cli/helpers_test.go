package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"confradar/internal/conference"
	"confradar/internal/config"
	"confradar/internal/occupancy"
	"confradar/internal/output"
	"confradar/internal/steps"
	"confradar/internal/timeslot"
	"confradar/internal/wizard"
)

// syncBuffer is a bytes.Buffer safe for a command writing from another
// goroutine while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// testEnv bundles an App over temporary stores with its captured output.
type testEnv struct {
	App      *App
	Out      *syncBuffer
	Bookings *occupancy.FileStore
	Dir      string
}

// newTestEnv creates an App whose records and bookings live in a temporary
// directory and whose output is captured without styling.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = dir

	out := &syncBuffer{}
	printer := output.NewPrinterWithWriter(out)
	printer.SetColor(false)

	bookings := occupancy.NewFileStore(filepath.Join(dir, occupancy.DefaultFileName))
	app := &App{
		Config:      cfg,
		Printer:     printer,
		Graph:       steps.Default(),
		Conferences: conference.NewStore(filepath.Join(dir, "conferences"), nil),
		OpenOccupancy: func(ctx context.Context) (occupancy.Store, error) {
			return bookings, nil
		},
	}
	return &testEnv{App: app, Out: out, Bookings: bookings, Dir: dir}
}

// run executes the CLI with args and returns the result.
func (e *testEnv) run(args ...string) ExecuteResult {
	return Run(context.Background(), e.App, args)
}

// newConference creates a conference in create mode and returns its id.
func (e *testEnv) newConference(t *testing.T, title string, track steps.Track) string {
	t.Helper()
	r, err := e.App.Conferences.Create(context.Background(), title, track)
	require.NoError(t, err)
	return r.ID
}

// editConference creates a technical conference already in edit mode with
// its basic step saved.
func (e *testEnv) editConference(t *testing.T, title string) string {
	t.Helper()
	ctx := context.Background()

	r, err := e.App.Conferences.Create(ctx, title, steps.TrackTechnical)
	require.NoError(t, err)
	r.Mode = wizard.ModeEdit
	r.MaxStepReached = e.App.Graph.Len(steps.TrackTechnical)
	r.Steps[steps.KeyBasic] = &conference.StepRecord{
		Completed: true,
		Payload:   map[string]any{"title": title},
	}
	require.NoError(t, e.App.Conferences.Put(ctx, r))
	return r.ID
}

// record reads conference id back from the store.
func (e *testEnv) record(t *testing.T, id string) *conference.Record {
	t.Helper()
	r, err := e.App.Conferences.Get(context.Background(), id)
	require.NoError(t, err)
	return r
}

// book places a booking directly in the occupancy store.
func (e *testEnv) book(t *testing.T, raw timeslot.RawSession) {
	t.Helper()
	s, ok := raw.Normalize()
	require.True(t, ok, "invalid booking fixture %+v", raw)
	_, err := e.Bookings.Book(context.Background(), s)
	require.NoError(t, err)
}

// bookings returns every stored booking.
func (e *testEnv) bookings(t *testing.T) []timeslot.RawSession {
	t.Helper()
	doc, err := e.Bookings.Read()
	require.NoError(t, err)
	return doc.Bookings
}

// writeFile creates a file under the environment directory.
func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.Dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// failingStore is an occupancy store whose every call fails.
type failingStore struct {
	Err error
}

func (f *failingStore) QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error) {
	return nil, f.Err
}

func (f *failingStore) Book(ctx context.Context, s timeslot.Session) (timeslot.Session, error) {
	return timeslot.Session{}, f.Err
}

func (f *failingStore) Cancel(ctx context.Context, id string) error {
	return f.Err
}

func (f *failingStore) Close() error {
	return nil
}

var errBackendDown = errors.New("backend down")
