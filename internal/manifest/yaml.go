package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// stepManifestFile represents the raw YAML structure of a step manifest.
type stepManifestFile struct {
	Steps []StepEntry `yaml:"steps"`
}

// ReadYAMLFromFile reads and parses a step manifest YAML file.
func ReadYAMLFromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step manifest: %w", err)
	}

	return ReadYAMLFromBytes(data)
}

// ReadYAMLFromBytes parses a step manifest from YAML bytes.
func ReadYAMLFromBytes(data []byte) (*Manifest, error) {
	var raw stepManifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse step manifest: %w", err)
	}

	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("manifest contains no step entries")
	}

	for i := range raw.Steps {
		raw.Steps[i].Track = strings.ToLower(strings.TrimSpace(raw.Steps[i].Track))
		if err := raw.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("step at index %d: %w", i, err)
		}
	}

	return &Manifest{Entries: raw.Steps}, nil
}

// Load reads a manifest, choosing the decoder from the file extension:
// .yaml and .yml are YAML, anything else is CSV.
func Load(path string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAMLFromFile(path)
	default:
		return ReadFromFile(path)
	}
}
