// Package config provides configuration loading for confradar.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The defaults work out of the box: bookings
// and conference records go to a .confradar directory under the working
// directory, in YAML and TOML files respectively.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [StorageConfig] selects the occupancy backend and record location
//
// Configuration priority (highest to lowest):
//  1. Environment variables (CONFRADAR_ prefix, dots become underscores)
//  2. Config file specified by CONFRADAR_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/confradar/config.yaml
//     - macOS: ~/Library/Application Support/confradar/config.yaml
//     - Windows: %APPDATA%\confradar\config.yaml
//  4. ./confradar.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"errors"
	"fmt"
)

// Storage backends for room bookings.
const (
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Navigation policies for leaving a step with unsaved edits.
const (
	NavigationAllow = "allow"
	NavigationBlock = "block"
)

// ErrInvalidConfig is wrapped by every [Config.Validate] failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader] and used
// throughout the application. Use [DefaultConfig] to get sensible defaults.
type Config struct {
	// Wizard controls authoring flow behavior.
	Wizard WizardConfig `mapstructure:"wizard"`

	// Steps points at an optional step manifest.
	Steps StepsConfig `mapstructure:"steps"`

	// Scheduling holds the default phase window for session placement.
	Scheduling SchedulingConfig `mapstructure:"scheduling"`

	// Storage selects where bookings and conference records live.
	Storage StorageConfig `mapstructure:"storage"`

	// Output contains terminal output formatting configuration.
	Output OutputConfig `mapstructure:"output"`
}

// WizardConfig controls the authoring flow.
type WizardConfig struct {
	// Navigation is "allow" (default) to let authors leave a step with
	// unsaved edits, or "block" to refuse until the step is saved.
	Navigation string `mapstructure:"navigation"`
}

// StepsConfig locates a step manifest.
type StepsConfig struct {
	// Manifest is a CSV or YAML file redefining the steps of each track.
	// Empty means the built-in step table.
	Manifest string `mapstructure:"manifest"`
}

// SchedulingConfig holds the phase window sessions must fall inside.
//
// Both bounds are full date-times (2006-01-02T15:04:05). When either is
// empty, placements are only checked against room occupancy.
type SchedulingConfig struct {
	PhaseName  string `mapstructure:"phase_name"`
	PhaseStart string `mapstructure:"phase_start"`
	PhaseEnd   string `mapstructure:"phase_end"`
}

// StorageConfig selects the occupancy backend and record location.
type StorageConfig struct {
	// Backend is one of "yaml" (default), "sqlite" or "postgres".
	Backend string `mapstructure:"backend"`

	// Dir holds conference records and, for file backends, the bookings.
	// Default: ".confradar"
	Dir string `mapstructure:"dir"`

	// OccupancyFile is the YAML bookings file. Relative paths are resolved
	// against Dir. Can be overridden with CONFRADAR_OCCUPANCY_PATH.
	OccupancyFile string `mapstructure:"occupancy_file"`

	// SQLitePath is the SQLite database file. Empty means Dir/occupancy.db.
	SQLitePath string `mapstructure:"sqlite_path"`

	// PostgresDSN is the connection string for the postgres backend.
	// Can be set with CONFRADAR_POSTGRES_DSN.
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// OutputConfig contains terminal output formatting configuration.
type OutputConfig struct {
	// Color enables lipgloss styling. Default: true
	Color bool `mapstructure:"color"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Wizard: WizardConfig{
			Navigation: NavigationAllow,
		},
		Scheduling: SchedulingConfig{
			PhaseName: "conference days",
		},
		Storage: StorageConfig{
			Backend:       BackendYAML,
			Dir:           ".confradar",
			OccupancyFile: "occupancy.yaml",
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// Validate rejects unknown enum values and incomplete backend settings.
func (c *Config) Validate() error {
	switch c.Wizard.Navigation {
	case NavigationAllow, NavigationBlock:
	default:
		return fmt.Errorf("%w: wizard.navigation must be %q or %q, got %q",
			ErrInvalidConfig, NavigationAllow, NavigationBlock, c.Wizard.Navigation)
	}

	switch c.Storage.Backend {
	case BackendYAML, BackendSQLite:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: storage.postgres_dsn is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if (c.Scheduling.PhaseStart == "") != (c.Scheduling.PhaseEnd == "") {
		return fmt.Errorf("%w: scheduling.phase_start and scheduling.phase_end must be set together", ErrInvalidConfig)
	}
	return nil
}
