package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appName        = "confradar"
	configFileName = "config.yaml"
	localFileName  = "confradar.yaml"
	envPrefix      = "CONFRADAR"
	envConfigPath  = "CONFRADAR_CONFIG_PATH"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// Load reads configuration from the first config file found (see the
// package documentation for the search order), then applies environment
// overrides. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.bindEnv()

	path, err := l.findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	return l.unmarshal()
}

// LoadFromFile loads configuration from a specific file. Environment
// overrides still apply.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.setDefaults()
	l.bindEnv()

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can see it.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("wizard.navigation", d.Wizard.Navigation)
	l.v.SetDefault("steps.manifest", d.Steps.Manifest)
	l.v.SetDefault("scheduling.phase_name", d.Scheduling.PhaseName)
	l.v.SetDefault("scheduling.phase_start", d.Scheduling.PhaseStart)
	l.v.SetDefault("scheduling.phase_end", d.Scheduling.PhaseEnd)
	l.v.SetDefault("storage.backend", d.Storage.Backend)
	l.v.SetDefault("storage.dir", d.Storage.Dir)
	l.v.SetDefault("storage.occupancy_file", d.Storage.OccupancyFile)
	l.v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	l.v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	l.v.SetDefault("output.color", d.Output.Color)
}

func (l *Loader) bindEnv() {
	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// Short aliases for the settings most often set per shell.
	_ = l.v.BindEnv("storage.postgres_dsn", "CONFRADAR_POSTGRES_DSN", "CONFRADAR_STORAGE_POSTGRES_DSN")
	_ = l.v.BindEnv("storage.backend", "CONFRADAR_BACKEND", "CONFRADAR_STORAGE_BACKEND")
}

// findConfigFile returns the first existing config file, or "" when none
// exists. CONFRADAR_CONFIG_PATH is returned as-is so a typo surfaces as a
// read error.
func (l *Loader) findConfigFile() (string, error) {
	if p := os.Getenv(envConfigPath); p != "" {
		return p, nil
	}

	var candidates []string
	if userPath, err := DefaultConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}
	candidates = append(candidates, localFileName)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", nil
}

// ConfigDir returns the platform-specific confradar configuration directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// DefaultConfigPath returns the config file path in [ConfigDir].
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
