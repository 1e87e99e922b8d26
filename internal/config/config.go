// Package config loads the TOML configuration file and carries the
// resolved settings through the rest of the application.
//
// Nothing in this package talks to the network or the database; it only
// turns a config file plus environment overrides into a Config value that
// the Jira client, the store, and the commands receive by injection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// TokenEnvVar overrides [jira].token when set, so the secret can stay out
// of the config file.
const TokenEnvVar = "WORKLOG_TOKEN"

// Defaults applied when the remote time-tracking configuration has not
// been fetched yet.
const (
	DefaultHoursPerDay = 7.5
	DefaultDaysPerWeek = 5.0
)

// Config is the fully resolved application configuration.
type Config struct {
	Jira            JiraConfig            `toml:"jira"`
	Tracking        TrackingConfig        `toml:"tracking"`
	ApplicationData ApplicationDataConfig `toml:"application_data"`
	Log             LogConfig             `toml:"log"`
}

// JiraConfig holds the remote endpoint and credentials.
type JiraConfig struct {
	URL   string `toml:"url"`
	User  string `toml:"user"`
	Token string `toml:"token"`
}

// TrackingConfig holds the projects being tracked and the working-time
// calibration used by duration parsing.
type TrackingConfig struct {
	Projects    []string `toml:"projects"`
	HoursPerDay float64  `toml:"hours_per_day"`
	DaysPerWeek float64  `toml:"days_per_week"`
}

// ApplicationDataConfig points at the local cache database.
type ApplicationDataConfig struct {
	LocalWorklog string `toml:"local_worklog"`
}

// LogConfig controls log level and the optional rotating log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultPath returns the conventional config file location,
// $XDG_CONFIG_HOME/worklog/config.toml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "worklog", "config.toml"), nil
}

// Load reads and validates the config file at path. Unknown keys are
// rejected so a typo fails loudly instead of being silently ignored.
func Load(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Parse decodes a config document from a string. Used by tests and by
// callers that already hold the file contents.
func Parse(doc string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if tok := os.Getenv(TokenEnvVar); tok != "" {
		c.Jira.Token = tok
	}
	if c.Tracking.HoursPerDay == 0 {
		c.Tracking.HoursPerDay = DefaultHoursPerDay
	}
	if c.Tracking.DaysPerWeek == 0 {
		c.Tracking.DaysPerWeek = DefaultDaysPerWeek
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.ApplicationData.LocalWorklog == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.ApplicationData.LocalWorklog = filepath.Join(dir, "worklog", "worklog.db")
		}
	}
	c.ApplicationData.LocalWorklog = expandHome(c.ApplicationData.LocalWorklog)
	c.Log.File = expandHome(c.Log.File)
}

func (c *Config) validate() error {
	if c.Jira.URL == "" {
		return fmt.Errorf("jira.url is required")
	}
	if c.Jira.Token == "" {
		return fmt.Errorf("jira.token is required (or set %s)", TokenEnvVar)
	}
	if c.ApplicationData.LocalWorklog == "" {
		return fmt.Errorf("application_data.local_worklog is required")
	}
	return nil
}

// DatabasePath returns the local cache location with its parent directory
// created.
func (c *Config) DatabasePath() (string, error) {
	path := c.ApplicationData.LocalWorklog
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return path, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
