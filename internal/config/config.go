// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"measureconvert/core/types"
	"measureconvert/internal/errors"
	"measureconvert/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// RateCache contains the currency rate cache's timing configuration
	RateCache RateCacheConfig `json:"rate_cache"`

	// Registry contains the default unit settings applied when a caller
	// supplies none
	Registry RegistryConfig `json:"registry"`

	// HTTP contains the rate-fetch HTTP client configuration
	HTTP HTTPConfig `json:"http"`

	// Storage contains the persistent key/value store configuration
	Storage StorageConfig `json:"storage"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// RateCacheConfig holds the four durations from spec §4.5, each
// configurable so tests can shrink them well below their production
// defaults.
type RateCacheConfig struct {
	// CacheTimeout is how long a fetched rate is considered fresh.
	CacheTimeout time.Duration `json:"cache_timeout"`

	// InactivityThreshold is how long since the last activity ping before
	// the user is considered idle.
	InactivityThreshold time.Duration `json:"inactivity_threshold"`

	// StaleThreshold is the age at which a cache entry becomes eligible
	// for background prefetch even though it is still technically valid.
	StaleThreshold time.Duration `json:"stale_threshold"`

	// RefreshThreshold is the age at which refreshCacheIfNeeded re-fetches
	// a cached base; it also doubles as the scheduler alarm's period.
	RefreshThreshold time.Duration `json:"refresh_threshold"`
}

// RegistryConfig holds the process-wide default UserSettings applied when
// a caller passes zero-value settings.
type RegistryConfig struct {
	Preset       types.Preset `json:"preset"`
	CurrencyUnit string       `json:"currency_unit"`
	TimezoneUnit string       `json:"timezone_unit"`
	Is12hr       bool         `json:"is_12hr"`
}

// HTTPConfig configures the primary/fallback rate-fetch HTTP clients per
// spec §6.4.
type HTTPConfig struct {
	PrimaryBaseURL  string        `json:"primary_base_url"`
	FallbackBaseURL string        `json:"fallback_base_url"`
	Timeout         time.Duration `json:"timeout"`
}

// StorageConfig selects and configures the key/value store backend per
// spec §6.3.
type StorageConfig struct {
	// Backend is "memory" or "file".
	Backend string `json:"backend"`

	// Path is the JSON file backing a "file" backend; ignored otherwise.
	Path string `json:"path"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	storagePath := filepath.Join(homeDir, ".measureconvert", "store.json")

	return &Config{
		Version: "1.0",
		RateCache: RateCacheConfig{
			CacheTimeout:        60 * time.Minute,
			InactivityThreshold: 5 * time.Minute,
			StaleThreshold:      45 * time.Minute,
			RefreshThreshold:    50 * time.Minute,
		},
		Registry: RegistryConfig{
			Preset:       types.PresetMetric,
			CurrencyUnit: "USD",
			TimezoneUnit: "auto",
			Is12hr:       true,
		},
		HTTP: HTTPConfig{
			PrimaryBaseURL:  "https://open.er-api.com/v6",
			FallbackBaseURL: "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies",
			Timeout:         10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    storagePath,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid config file "+path, err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultUserSettings builds a types.UserSettings from the registry
// section, leaving per-dimension unit fields empty so the converter falls
// back to the unit registry's own defaults.
func (c *Config) DefaultUserSettings() types.UserSettings {
	return types.UserSettings{
		TimezoneUnit: c.Registry.TimezoneUnit,
		CurrencyUnit: c.Registry.CurrencyUnit,
		Is12hr:       c.Registry.Is12hr,
		Preset:       c.Registry.Preset,
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
