package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the canonical display zone
	// (e.g. "America/New_York"). Schedule resolution is done in this zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// ScheduleDir is a local directory holding schedule documents:
	//   - <YYYY-MM-DD>.json for a week-specific override (Sunday ISO date)
	//   - normal.json for the default schedule
	ScheduleDir string `yaml:"schedule_dir" json:"schedule_dir"`

	// ScheduleURL is an optional base URL serving the same two documents.
	// If set, it takes precedence over ScheduleDir; fetched documents are
	// cached on disk with conditional requests.
	ScheduleURL string `yaml:"schedule_url" json:"schedule_url"`

	// CacheDir is where fetched schedule documents are cached.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// TickMillis is the display recomputation period in milliseconds.
	TickMillis int `yaml:"tick_millis" json:"tick_millis"`

	// ReloadCron is a cron-style schedule string for the full schedule
	// reload. The default fires at local midnight so a new week (or a
	// same-week override published overnight) is picked up.
	ReloadCron string `yaml:"reload" json:"reload"`

	// CompactDefault is the initial state of the "compact display" toggle
	// (omit seconds when more than five minutes remain).
	CompactDefault bool `yaml:"compact_default" json:"compact_default"`

	// SnapshotCron, if non-empty, periodically captures a PNG snapshot of
	// the countdown page via headless Chromium.
	SnapshotCron string `yaml:"snapshot" json:"snapshot"`

	// SnapshotPath is where the PNG snapshot is written.
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "America/New_York",
		ScheduleDir:    "./schedules",
		ScheduleURL:    "",
		CacheDir:       "./cache/schedules",
		TickMillis:     200,
		ReloadCron:     "0 0 * * *",
		CompactDefault: false,
		SnapshotCron:   "",
		SnapshotPath:   "./cache/preview.png",
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.ScheduleDir == "" && c.ScheduleURL == "" {
		c.ScheduleDir = "./schedules"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./cache/schedules"
	}
	if c.TickMillis <= 0 {
		c.TickMillis = 200
	}
	if c.ReloadCron == "" {
		c.ReloadCron = "0 0 * * *"
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "./cache/preview.png"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".classclock-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
