// Package config handles dashclone configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/dashclone/dashboard"
)

// Settle modes.
const (
	SettleFixed = "fixed" // sleep a fixed delay per stage
	SettleQuiet = "quiet" // wait until the document stops changing, bounded
	SettleNone  = "none"
)

// Config is the top-level dashclone configuration.
type Config struct {
	Browser   BrowserConfig     `yaml:"browser"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
	Markers   dashboard.Markers `yaml:"markers"`
	Wait      WaitConfig        `yaml:"wait"`
	Settle    SettleConfig      `yaml:"settle"`
	Journal   JournalConfig     `yaml:"journal"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Headful          bool          `yaml:"headful"`
	Bin              string        `yaml:"bin"`
	UserDataDir      string        `yaml:"user_data_dir"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// DashboardConfig locates the dashboard.
type DashboardConfig struct {
	URL string `yaml:"url"`
}

// WaitConfig controls element waits.
type WaitConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SettleConfig controls the settle delays of the edit workflows.
type SettleConfig struct {
	Mode   string        `yaml:"mode"` // fixed | quiet | none
	Boot   time.Duration `yaml:"boot"`
	Toggle time.Duration `yaml:"toggle"`
	Panel  time.Duration `yaml:"panel"`
	// Quiet mode: a stage ends after Quiet without any change, or at its
	// stage delay times CeilingFactor.
	Quiet         time.Duration `yaml:"quiet"`
	CeilingFactor int           `yaml:"ceiling_factor"`
}

// JournalConfig controls the run journal. An empty DBPath disables it.
type JournalConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration of an empty file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	c.Markers = c.Markers.WithDefaults()
	if c.Wait.Timeout <= 0 {
		c.Wait.Timeout = 10 * time.Second
	}
	if c.Wait.PollInterval <= 0 {
		c.Wait.PollInterval = 250 * time.Millisecond
	}
	if c.Settle.Mode == "" {
		c.Settle.Mode = SettleFixed
	}
	if c.Settle.Boot <= 0 {
		c.Settle.Boot = dashboard.DefaultSettleDelay
	}
	if c.Settle.Toggle <= 0 {
		c.Settle.Toggle = dashboard.DefaultSettleDelay
	}
	if c.Settle.Panel <= 0 {
		c.Settle.Panel = dashboard.DefaultSettleDelay
	}
	if c.Settle.Quiet <= 0 {
		c.Settle.Quiet = 150 * time.Millisecond
	}
	if c.Settle.CeilingFactor <= 0 {
		c.Settle.CeilingFactor = 4
	}
}

func (c *Config) validate() error {
	switch c.Settle.Mode {
	case SettleFixed, SettleQuiet, SettleNone:
	default:
		return fmt.Errorf("config: settle.mode %q: want fixed, quiet or none", c.Settle.Mode)
	}
	return nil
}
