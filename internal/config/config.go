package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".hdrenum.yaml"

// DefaultInclude selects headers when a directory is given as input.
var DefaultInclude = []string{"**/*.h"}

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Config represents the hdrenum configuration.
type Config struct {
	// RepeatPerFile re-emits every grouping seen so far after each input
	// file instead of emitting once at the end.
	RepeatPerFile bool `yaml:"repeat_per_file,omitempty"`

	// TypedefNames names anonymous enums after their typedef.
	TypedefNames bool `yaml:"typedef_names,omitempty"`

	ConstEnum bool     `yaml:"const_enum,omitempty"`
	Header    string   `yaml:"header,omitempty"`
	Output    string   `yaml:"output,omitempty"`
	Include   []string `yaml:"include,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
	LogLevel  string   `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Include:  append([]string(nil), DefaultInclude...),
		LogLevel: "warn",
	}
}

// ConfigPath returns the path to the config file in dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration at path. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Include) == 0 {
		cfg.Include = append([]string(nil), DefaultInclude...)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return cfg, nil
}

// Resolve loads the config at explicit, which must exist, or else the
// optional config file in dir, or else the defaults.
func Resolve(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	cfg, err := Load(ConfigPath(dir))
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}
