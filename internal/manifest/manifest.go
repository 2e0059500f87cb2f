// Package manifest reads conference step manifests.
//
// A step manifest lists the authoring steps of each conference track in
// display order, so a deployment can relabel steps or mark them optional
// without a code change. Manifests come in two encodings.
//
// CSV format:
//
//	track,key,label,optional,skippable
//	technical,basic,Basic information,false,false
//	technical,price,Pricing,false,false
//	technical,sessions,Sessions,false,false
//	research,basic,Basic information,false,false
//	research,timeline,Timeline & phases,false,false
//
// YAML format (see [ReadYAMLFromFile]):
//
//	steps:
//	  - track: technical
//	    key: basic
//	    label: Basic information
//
// Rows are ordered by step sequence within each track. The optional and
// skippable columns may be omitted and default to false.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// StepEntry represents a single row in the step manifest.
type StepEntry struct {
	// Track is the conference track the step belongs to ("research", "technical").
	Track string `yaml:"track"`

	// Key is the stable step identifier (e.g., "basic", "sessions").
	Key string `yaml:"key"`

	// Label is the human-readable step title.
	Label string `yaml:"label"`

	// Optional marks a step whose data is not required to publish.
	Optional bool `yaml:"optional"`

	// Skippable marks a step the author may pass without saving.
	Skippable bool `yaml:"skippable"`
}

// Manifest holds all step entries parsed from a manifest file.
type Manifest struct {
	// Entries are the step entries in display order.
	Entries []StepEntry
}

// ReadFromFile reads and parses a step manifest CSV file.
func ReadFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a step manifest from a CSV string.
// This is useful for testing and for embedding manifest data.
func ReadFromString(data string) (*Manifest, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []StepEntry
	lineNum := 1 // header was line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest line %d: %w", lineNum, err)
		}

		optional, err := parseFlag(getField(record, colIndex, "optional"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: optional: %w", lineNum, err)
		}
		skippable, err := parseFlag(getField(record, colIndex, "skippable"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: skippable: %w", lineNum, err)
		}

		entry := StepEntry{
			Track:     strings.ToLower(getField(record, colIndex, "track")),
			Key:       getField(record, colIndex, "key"),
			Label:     getField(record, colIndex, "label"),
			Optional:  optional,
			Skippable: skippable,
		}

		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNum, err)
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest contains no step entries")
	}

	return &Manifest{Entries: entries}, nil
}

func (e StepEntry) validate() error {
	if e.Track == "" {
		return fmt.Errorf("track is required")
	}
	if e.Key == "" {
		return fmt.Errorf("step key is required")
	}
	if e.Label == "" {
		return fmt.Errorf("label is required for step %s", e.Key)
	}
	return nil
}

// requiredColumns are the columns that must be present in the manifest CSV.
var requiredColumns = []string{"track", "key", "label"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("manifest missing required column: %s", col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// Tracks returns the distinct track names in order of first appearance.
func (m *Manifest) Tracks() []string {
	seen := make(map[string]bool)
	var tracks []string
	for _, e := range m.Entries {
		if !seen[e.Track] {
			seen[e.Track] = true
			tracks = append(tracks, e.Track)
		}
	}
	return tracks
}

// EntriesForTrack returns the entries of one track in manifest order.
func (m *Manifest) EntriesForTrack(track string) []StepEntry {
	var entries []StepEntry
	for _, e := range m.Entries {
		if e.Track == track {
			entries = append(entries, e)
		}
	}
	return entries
}

// HasStep returns true if the track lists a step with the given key.
func (m *Manifest) HasStep(track, key string) bool {
	for _, e := range m.Entries {
		if e.Track == track && e.Key == key {
			return true
		}
	}
	return false
}
