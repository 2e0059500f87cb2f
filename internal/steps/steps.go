// Package steps defines the ordered authoring steps of each conference track.
//
// A technical conference is authored in six steps. A research conference
// adds a "Timeline & phases" step right after the basic information, where
// submission, review and camera-ready windows are entered; every other step
// is shared between the tracks.
//
// The step table can be the built-in default ([NewGraph]) or come from a
// step manifest ([NewGraphFromManifest]). Package-level [StepsFor] and
// [StepLabel] use the default table.
//
// Step indices are 1-based and dense within a track.
package steps

import (
	"errors"
	"fmt"
	"strings"

	"confradar/internal/manifest"
)

// Track is the conference category that fixes which steps exist.
type Track string

const (
	TrackResearch  Track = "research"
	TrackTechnical Track = "technical"
)

// Tracks lists every known track.
var Tracks = []Track{TrackTechnical, TrackResearch}

// IsValid reports whether t is a known track.
func (t Track) IsValid() bool {
	return t == TrackResearch || t == TrackTechnical
}

// ErrUnknownTrack is returned when a track name is not recognized.
var ErrUnknownTrack = errors.New("unknown conference track")

// ParseTrack converts a user-supplied name into a [Track].
func ParseTrack(s string) (Track, error) {
	t := Track(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
	}
	return t, nil
}

// Stable step keys used to route step payloads.
const (
	KeyBasic    = "basic"
	KeyTimeline = "timeline"
	KeyPrice    = "price"
	KeySessions = "sessions"
	KeyPolicies = "policies"
	KeyMedia    = "media"
	KeySponsors = "sponsors"
)

// Step is one screen of the authoring flow with its own save boundary.
type Step struct {
	// Index is the 1-based position of the step within its track.
	Index int

	// Key is the stable identifier of the step.
	Key string

	// Label is the title shown in the step indicator.
	Label string

	// Optional steps are not required before the conference can be published.
	Optional bool

	// Skippable steps may be passed without saving.
	Skippable bool
}

// IsScheduling reports whether the step collects session placements.
func (s Step) IsScheduling() bool {
	return s.Key == KeySessions
}

// Graph holds the step sequence of every track.
type Graph struct {
	tracks map[Track][]Step
}

// NewGraph creates a [Graph] with the built-in step table.
//
// Technical: basic → price → sessions → policies → media → sponsors.
// Research:  basic → timeline → price → sessions → policies → media → sponsors.
func NewGraph() *Graph {
	shared := []Step{
		{Key: KeyPrice, Label: "Tickets & pricing"},
		{Key: KeySessions, Label: "Sessions"},
		{Key: KeyPolicies, Label: "Policies"},
		{Key: KeyMedia, Label: "Media", Optional: true, Skippable: true},
		{Key: KeySponsors, Label: "Sponsors", Optional: true, Skippable: true},
	}
	basic := Step{Key: KeyBasic, Label: "Basic information"}
	timeline := Step{Key: KeyTimeline, Label: "Timeline & phases"}

	technical := append([]Step{basic}, shared...)
	research := append([]Step{basic, timeline}, shared...)

	return &Graph{
		tracks: map[Track][]Step{
			TrackTechnical: numbered(technical),
			TrackResearch:  numbered(research),
		},
	}
}

// NewGraphFromManifest creates a [Graph] from a step manifest.
//
// Entry order within a track becomes the step order. Every track must be
// known and must list the basic step, which carries the conference title.
// Duplicate keys within a track are rejected. A track absent from the
// manifest has no steps.
func NewGraphFromManifest(m *manifest.Manifest) (*Graph, error) {
	g := &Graph{tracks: make(map[Track][]Step)}

	for _, name := range m.Tracks() {
		track, err := ParseTrack(name)
		if err != nil {
			return nil, fmt.Errorf("manifest track %q: %w", name, err)
		}
		if !m.HasStep(name, KeyBasic) {
			return nil, fmt.Errorf("manifest track %s has no %q step", track, KeyBasic)
		}

		seen := make(map[string]bool)
		var list []Step
		for _, entry := range m.EntriesForTrack(name) {
			if seen[entry.Key] {
				return nil, fmt.Errorf("duplicate step %q in track %s", entry.Key, track)
			}
			seen[entry.Key] = true
			list = append(list, Step{
				Key:       entry.Key,
				Label:     entry.Label,
				Optional:  entry.Optional,
				Skippable: entry.Skippable,
			})
		}
		g.tracks[track] = numbered(list)
	}
	return g, nil
}

func numbered(list []Step) []Step {
	out := make([]Step, len(list))
	for i, s := range list {
		s.Index = i + 1
		out[i] = s
	}
	return out
}

// StepsFor returns the ordered steps of track. The returned slice is a copy.
// Unknown tracks have no steps.
func (g *Graph) StepsFor(track Track) []Step {
	list := g.tracks[track]
	out := make([]Step, len(list))
	copy(out, list)
	return out
}

// Step returns the step at index within track.
func (g *Graph) Step(track Track, index int) (Step, bool) {
	list := g.tracks[track]
	if index < 1 || index > len(list) {
		return Step{}, false
	}
	return list[index-1], true
}

// StepLabel returns the label of the step at index, or "" when out of range.
func (g *Graph) StepLabel(track Track, index int) string {
	s, ok := g.Step(track, index)
	if !ok {
		return ""
	}
	return s.Label
}

// Lookup returns the step of track with the given key.
func (g *Graph) Lookup(track Track, key string) (Step, bool) {
	for _, s := range g.tracks[track] {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}

// Len returns the number of steps in track.
func (g *Graph) Len(track Track) int {
	return len(g.tracks[track])
}

// defaultGraph is the package-level graph used by [StepsFor] and [StepLabel].
var defaultGraph = NewGraph()

// Default returns the built-in graph.
func Default() *Graph {
	return defaultGraph
}

// StepsFor returns the ordered steps of track from the built-in table.
func StepsFor(track Track) []Step {
	return defaultGraph.StepsFor(track)
}

// StepLabel returns the label of a built-in step, or "" when out of range.
func StepLabel(track Track, index int) string {
	return defaultGraph.StepLabel(track, index)
}
