package occupancy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"confradar/internal/timeslot"
)

// DefaultFileName is the bookings file name used when none is configured.
const DefaultFileName = "occupancy.yaml"

// ResolvePath locates the bookings file.
//
// Resolution order:
//  1. CONFRADAR_OCCUPANCY_PATH environment variable (used as-is if set)
//  2. file, joined to dir when relative
//  3. dir/occupancy.yaml
func ResolvePath(dir, file string) string {
	if envPath := os.Getenv("CONFRADAR_OCCUPANCY_PATH"); envPath != "" {
		return envPath
	}
	if file == "" {
		file = DefaultFileName
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// Document is the on-disk form of the bookings file.
type Document struct {
	Bookings []timeslot.RawSession `yaml:"bookings"`
}

// FileStore keeps bookings in a YAML file. Every write replaces the file
// atomically; a mutex serializes writers within the process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store over the YAML file at path. The file is
// created on the first booking.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the bookings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Read reads and parses the bookings file. A missing file reads as empty.
func (s *FileStore) Read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read occupancy: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read occupancy: %w", err)
	}
	return &doc, nil
}

func (s *FileStore) write(doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal occupancy: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to write occupancy: %w", err)
	}

	// Write to temp, then rename.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write occupancy: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write occupancy: %w", err)
	}
	return nil
}

// QueryRoomOccupancy implements [Store].
func (s *FileStore) QueryRoomOccupancy(ctx context.Context, roomID string, dates timeslot.DateRange) ([]timeslot.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}

	var out []timeslot.Session
	for _, b := range normalize(doc.Bookings) {
		if b.RoomID == roomID && dates.Contains(b.Date) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Book implements [Store].
func (s *FileStore) Book(ctx context.Context, session timeslot.Session) (timeslot.Session, error) {
	if err := ctx.Err(); err != nil {
		return timeslot.Session{}, err
	}
	session, raw, err := prepare(session)
	if err != nil {
		return timeslot.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Read()
	if err != nil {
		return timeslot.Session{}, err
	}

	replaced := false
	for i := range doc.Bookings {
		if doc.Bookings[i].ID == raw.ID {
			doc.Bookings[i] = raw
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Bookings = append(doc.Bookings, raw)
	}

	if err := s.write(doc); err != nil {
		return timeslot.Session{}, err
	}
	return session, nil
}

// Cancel implements [Store].
func (s *FileStore) Cancel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Read()
	if err != nil {
		return err
	}

	kept := doc.Bookings[:0]
	for _, b := range doc.Bookings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(doc.Bookings) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.Bookings = kept
	return s.write(doc)
}

// Close implements [Store]. The file store holds no open handles.
func (s *FileStore) Close() error {
	return nil
}
