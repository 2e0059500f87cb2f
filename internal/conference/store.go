// Package conference persists conference records for the reference host.
//
// Each record is a TOML file named after the conference ID. [Store]
// implements the wizard's host interfaces: it loads a record as a
// [wizard.Seed] and saves step payloads, so a [wizard.Controller] can run
// over it without knowing how records are kept.
package conference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"confradar/internal/steps"
	"confradar/internal/wizard"
)

const (
	recordVersion = 1
	recordExt     = ".toml"
)

// ErrNotFound is returned when no record exists for a conference ID.
var ErrNotFound = errors.New("conference not found")

// StepRecord is the saved state of one step.
type StepRecord struct {
	Completed bool           `toml:"completed"`
	SavedAt   time.Time      `toml:"saved_at"`
	Payload   map[string]any `toml:"payload,omitempty"`
}

// Record is a conference as stored on disk. Steps are keyed by step key so
// a record survives reordering of the step table.
type Record struct {
	Version        int                    `toml:"version"`
	ID             string                 `toml:"id"`
	Title          string                 `toml:"title"`
	Track          steps.Track            `toml:"track"`
	Mode           wizard.Mode            `toml:"mode"`
	CurrentStep    int                    `toml:"current_step"`
	MaxStepReached int                    `toml:"max_step_reached"`
	CreatedAt      time.Time              `toml:"created_at"`
	UpdatedAt      time.Time              `toml:"updated_at"`
	Steps          map[string]*StepRecord `toml:"steps"`
}

// Store reads and writes records under a directory.
// Use [NewStore] to create one.
type Store struct {
	dir   string
	graph *steps.Graph
	now   func() time.Time
}

// NewStore creates a store over dir. A nil graph means the built-in step
// table.
func NewStore(dir string, g *steps.Graph) *Store {
	if g == nil {
		g = steps.Default()
	}
	return &Store{dir: dir, graph: g, now: time.Now}
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file of conference id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

// Create starts a new conference in create mode on the first step.
func (s *Store) Create(ctx context.Context, title string, track steps.Track) (*Record, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: %q", steps.ErrUnknownTrack, track)
	}
	now := s.now()
	r := &Record{
		Version:        recordVersion,
		ID:             uuid.NewString(),
		Title:          title,
		Track:          track,
		Mode:           wizard.ModeCreate,
		CurrentStep:    1,
		MaxStepReached: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
		Steps:          make(map[string]*StepRecord),
	}
	if err := s.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get reads the record of conference id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading conference %s: %w", id, err)
	}

	var r Record
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing conference %s: %w", id, err)
	}
	if r.Steps == nil {
		r.Steps = make(map[string]*StepRecord)
	}
	return &r, nil
}

// Put writes r atomically (write temp + rename).
func (s *Store) Put(ctx context.Context, r *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating conference dir: %w", err)
	}

	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling conference %s: %w", r.ID, err)
	}

	path := s.Path(r.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp conference file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming conference file: %w", err)
	}
	return nil
}

// List returns every record in the directory, ordered by creation time.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing conferences: %w", err)
	}

	var out []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		r, err := s.Get(ctx, strings.TrimSuffix(e.Name(), recordExt))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// LoadExisting implements [wizard.Loader].
func (s *Store) LoadExisting(ctx context.Context, id string) (wizard.Seed, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return wizard.Seed{}, err
	}
	return s.SeedOf(r), nil
}

// SeedOf converts r into the wizard's view. Step records whose key is not
// part of the track are ignored.
func (s *Store) SeedOf(r *Record) wizard.Seed {
	seed := wizard.Seed{
		State: wizard.State{
			Mode:           r.Mode,
			Track:          r.Track,
			CurrentStep:    r.CurrentStep,
			MaxStepReached: r.MaxStepReached,
		},
		Payloads: make(map[int]wizard.Payload),
	}

	for key, sr := range r.Steps {
		st, ok := s.graph.Lookup(r.Track, key)
		if !ok || sr == nil {
			continue
		}
		seed.State.WithData = append(seed.State.WithData, st.Index)
		if sr.Completed {
			seed.State.Completed = append(seed.State.Completed, st.Index)
		}
		if sr.Payload != nil {
			seed.Payloads[st.Index] = wizard.Payload(sr.Payload)
		}
	}
	sort.Ints(seed.State.WithData)
	sort.Ints(seed.State.Completed)
	return seed
}

// Sync records the navigation state of session on conference id.
func (s *Store) Sync(ctx context.Context, id string, session wizard.Session) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	r.Mode = session.Mode()
	r.CurrentStep = session.CurrentStep()
	r.MaxStepReached = session.MaxStepReached()
	r.UpdatedAt = s.now()
	return s.Put(ctx, r)
}

// Saver returns a [wizard.StepSaver] writing step payloads into conference id.
func (s *Store) Saver(id string) wizard.StepSaver {
	return &stepSaver{store: s, id: id}
}

type stepSaver struct {
	store *Store
	id    string
}

// SaveStep stores payload under the step key. A basic step without a title
// is refused the way a backend would refuse it, with Success=false.
func (ss *stepSaver) SaveStep(ctx context.Context, step steps.Step, payload wizard.Payload) (wizard.SaveResult, error) {
	r, err := ss.store.Get(ctx, ss.id)
	if err != nil {
		return wizard.SaveResult{}, err
	}

	if step.Key == steps.KeyBasic {
		title, _ := payload["title"].(string)
		if title == "" {
			title = r.Title
		}
		if strings.TrimSpace(title) == "" {
			return wizard.SaveResult{Success: false, Message: "title is required"}, nil
		}
		r.Title = title
	}

	now := ss.store.now()
	r.Steps[step.Key] = &StepRecord{
		Completed: true,
		SavedAt:   now,
		Payload:   map[string]any(payload),
	}
	r.UpdatedAt = now

	if err := ss.store.Put(ctx, r); err != nil {
		return wizard.SaveResult{}, err
	}
	return wizard.SaveResult{Success: true, Message: fmt.Sprintf("saved %s", step.Label)}, nil
}
