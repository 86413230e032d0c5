/*
Package config handles loading and saving the recommender configuration.

Configuration is stored in ~/.luxestream-recommender.json. Every field is
optional; defaults are applied on load so a missing or empty file yields a
working engine.

Schema:

	{
	  "dataDir": "/var/lib/recommender",
	  "settings": {
	    "mixWeight": 0.6,
	    "topK": 10,
	    "timeoutSeconds": 30,
	    "modelRetentionDays": 90
	  }
	}
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when the config file omits a value.
const (
	DefaultMixWeight          = 0.6
	DefaultTopK               = 10
	DefaultTimeoutSeconds     = 30
	DefaultModelRetentionDays = 90
)

// Config represents the root configuration structure.
type Config struct {
	// DataDir holds the model database. Defaults to
	// ~/.luxestream-recommender.
	DataDir string `json:"dataDir,omitempty"`

	// Settings contains engine tuning options.
	Settings *Settings `json:"settings,omitempty"`
}

// Settings contains engine tuning options.
type Settings struct {
	// MixWeight is the affinity share of the final score, in (0,1].
	// The preference match takes the remainder.
	MixWeight float64 `json:"mixWeight,omitempty"`

	// TopK is the number of recommendations returned per predict call.
	// Negative disables truncation.
	TopK int `json:"topK,omitempty"`

	// TimeoutSeconds bounds a single worker invocation.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`

	// ModelRetentionDays controls how long unused trained models are kept.
	ModelRetentionDays int `json:"modelRetentionDays,omitempty"`
}

// NewConfig creates a configuration with all defaults applied.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued fields.
func (c *Config) applyDefaults() {
	if c.Settings == nil {
		c.Settings = &Settings{}
	}
	if c.Settings.MixWeight <= 0 || c.Settings.MixWeight > 1 {
		c.Settings.MixWeight = DefaultMixWeight
	}
	if c.Settings.TopK == 0 {
		c.Settings.TopK = DefaultTopK
	}
	if c.Settings.TimeoutSeconds <= 0 {
		c.Settings.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Settings.ModelRetentionDays <= 0 {
		c.Settings.ModelRetentionDays = DefaultModelRetentionDays
	}
}

// GetDefaultConfigPath returns the path to ~/.luxestream-recommender.json.
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".luxestream-recommender.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path and applies
// defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrCreate loads the default config file, creating it with defaults if
// it does not exist yet.
func LoadOrCreate() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(configPath); statErr == nil {
		// File exists but failed to load; surface the real error instead of
		// silently overwriting a broken config.
		return nil, err
	}

	cfg = NewConfig()
	if err := Save(cfg, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveDataDir returns the configured data directory, defaulting to
// ~/.luxestream-recommender.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".luxestream-recommender"), nil
}

// DatabasePath returns the model database path inside the data directory.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models.db"), nil
}

// WorkerTimeout returns the configured worker timeout as a duration.
func (c *Config) WorkerTimeout() time.Duration {
	return time.Duration(c.Settings.TimeoutSeconds) * time.Second
}

// ModelRetention returns the configured model retention as a duration.
func (c *Config) ModelRetention() time.Duration {
	return time.Duration(c.Settings.ModelRetentionDays) * 24 * time.Hour
}
