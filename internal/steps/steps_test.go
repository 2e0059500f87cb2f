package steps

import (
	"errors"
	"strings"
	"testing"

	"confradar/internal/manifest"
)

func keys(list []Step) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Key
	}
	return out
}

func TestStepsFor(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		wantKeys []string
	}{
		{
			name:     "technical track has six steps",
			track:    TrackTechnical,
			wantKeys: []string{"basic", "price", "sessions", "policies", "media", "sponsors"},
		},
		{
			name:     "research track inserts timeline after basic",
			track:    TrackResearch,
			wantKeys: []string{"basic", "timeline", "price", "sessions", "policies", "media", "sponsors"},
		},
		{
			name:     "unknown track has no steps",
			track:    Track("workshop"),
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(StepsFor(tt.track))
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("StepsFor(%q) = %v, want %v", tt.track, got, tt.wantKeys)
			}
			for i := range got {
				if got[i] != tt.wantKeys[i] {
					t.Errorf("StepsFor(%q)[%d] = %q, want %q", tt.track, i, got[i], tt.wantKeys[i])
				}
			}
		})
	}
}

func TestStepsFor_IndicesAreDenseAndOneBased(t *testing.T) {
	for _, track := range Tracks {
		for i, s := range StepsFor(track) {
			if s.Index != i+1 {
				t.Errorf("%s step %q has index %d, want %d", track, s.Key, s.Index, i+1)
			}
		}
	}
}

func TestStepsFor_SharedStepsMatch(t *testing.T) {
	research := StepsFor(TrackResearch)
	technical := StepsFor(TrackTechnical)

	var withoutTimeline []Step
	for _, s := range research {
		if s.Key != KeyTimeline {
			withoutTimeline = append(withoutTimeline, s)
		}
	}

	if len(withoutTimeline) != len(technical) {
		t.Fatalf("research minus timeline has %d steps, technical has %d", len(withoutTimeline), len(technical))
	}
	for i := range technical {
		if withoutTimeline[i].Key != technical[i].Key || withoutTimeline[i].Label != technical[i].Label {
			t.Errorf("shared step %d differs: %+v vs %+v", i, withoutTimeline[i], technical[i])
		}
	}
}

func TestStepsFor_ReturnsCopy(t *testing.T) {
	list := StepsFor(TrackTechnical)
	list[0].Label = "changed"

	if got := StepLabel(TrackTechnical, 1); got != "Basic information" {
		t.Errorf("StepLabel after mutation = %q, want unchanged", got)
	}
}

func TestStepLabel(t *testing.T) {
	tests := []struct {
		track Track
		index int
		want  string
	}{
		{TrackTechnical, 1, "Basic information"},
		{TrackTechnical, 3, "Sessions"},
		{TrackResearch, 2, "Timeline & phases"},
		{TrackResearch, 4, "Sessions"},
		{TrackTechnical, 0, ""},
		{TrackTechnical, 7, ""},
		{Track("unknown"), 1, ""},
	}

	for _, tt := range tests {
		if got := StepLabel(tt.track, tt.index); got != tt.want {
			t.Errorf("StepLabel(%q, %d) = %q, want %q", tt.track, tt.index, got, tt.want)
		}
	}
}

func TestGraph_Lookup(t *testing.T) {
	g := NewGraph()

	s, ok := g.Lookup(TrackResearch, KeySessions)
	if !ok || s.Index != 4 || !s.IsScheduling() {
		t.Errorf("Lookup(research, sessions) = %+v, %v", s, ok)
	}

	if _, ok := g.Lookup(TrackTechnical, KeyTimeline); ok {
		t.Error("technical track should not have a timeline step")
	}

	media, _ := g.Lookup(TrackTechnical, KeyMedia)
	if !media.Optional || !media.Skippable {
		t.Errorf("media step should be optional and skippable: %+v", media)
	}
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		in      string
		want    Track
		wantErr error
	}{
		{"research", TrackResearch, nil},
		{" Technical ", TrackTechnical, nil},
		{"workshop", "", ErrUnknownTrack},
		{"", "", ErrUnknownTrack},
	}

	for _, tt := range tests {
		got, err := ParseTrack(tt.in)
		if got != tt.want {
			t.Errorf("ParseTrack(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseTrack(%q) err = %v, want %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr == nil && err != nil {
			t.Errorf("ParseTrack(%q) unexpected err: %v", tt.in, err)
		}
	}
}

// --- Manifest-driven graph tests ---

func TestNewGraphFromManifest(t *testing.T) {
	m, err := manifest.ReadFromString(`track,key,label,optional,skippable
technical,basic,General,false,false
technical,sessions,Agenda,false,false
research,basic,General,false,false
research,timeline,Phases,false,false
research,sessions,Agenda,false,false
research,sponsors,Partners,true,true
`)
	if err != nil {
		t.Fatalf("ReadFromString: %v", err)
	}

	g, err := NewGraphFromManifest(m)
	if err != nil {
		t.Fatalf("NewGraphFromManifest: %v", err)
	}

	if g.Len(TrackTechnical) != 2 || g.Len(TrackResearch) != 4 {
		t.Fatalf("lengths = %d/%d, want 2/4", g.Len(TrackTechnical), g.Len(TrackResearch))
	}
	if got := g.StepLabel(TrackTechnical, 2); got != "Agenda" {
		t.Errorf("technical step 2 label = %q, want Agenda", got)
	}
	s, ok := g.Step(TrackResearch, 4)
	if !ok || s.Key != "sponsors" || !s.Optional || s.Index != 4 {
		t.Errorf("research step 4 = %+v", s)
	}
}

func TestNewGraphFromManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown track", "track,key,label\nworkshop,basic,General\n"},
		{"duplicate key", "track,key,label\ntechnical,basic,General\ntechnical,basic,Again\n"},
		{"track without basic step", "track,key,label\ntechnical,basic,General\nresearch,sessions,Agenda\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := manifest.ReadFromString(tt.data)
			if err != nil {
				t.Fatalf("ReadFromString: %v", err)
			}
			if _, err := NewGraphFromManifest(m); err == nil {
				t.Error("expected error")
			} else if !strings.Contains(err.Error(), "manifest track") && !strings.Contains(err.Error(), "duplicate step") {
				t.Errorf("error %q does not name the track", err)
			}
		})
	}
}
