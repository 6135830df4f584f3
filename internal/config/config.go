package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Viewport is the canvas size clients report by default.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Animations configures window mount/exit transition timings.
type Animations struct {
	MountDelayMs   int `yaml:"mount_delay_ms"`
	ExitDurationMs int `yaml:"exit_duration_ms"`
}

// Persistence configures durable write throttling.
type Persistence struct {
	FlushIntervalMs int `yaml:"flush_interval_ms"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
}

// Config is the daemon configuration.
type Config struct {
	ListenAddr  string        `yaml:"listen_addr"`
	StateDir    string        `yaml:"state_dir"`
	Viewport    Viewport      `yaml:"viewport"`
	Animations  Animations    `yaml:"animations"`
	Persistence Persistence   `yaml:"persistence"`
	Logging     LoggingConfig `yaml:"logging"`

	// PlaylistFile optionally points at a yaml playlist imported on boot.
	PlaylistFile string `yaml:"playlist_file,omitempty"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "lofideck", "config.yaml"), nil
}

func defaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lofideck"
	}
	return filepath.Join(homeDir, ".local", "share", "lofideck")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:7856",
		StateDir:   defaultStateDir(),
		Viewport:   Viewport{Width: 1920, Height: 1080},
		Animations: Animations{
			MountDelayMs:   50,
			ExitDurationMs: 200,
		},
		Persistence: Persistence{FlushIntervalMs: 250},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration from the standard location, falling back to
// defaults when no file exists.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and merges configuration from a specific file over the
// defaults. A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment overrides. The env file itself is loaded by
// the caller (godotenv) before this runs.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LOFIDECK_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOFIDECK_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("LOFIDECK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Animations.ExitDurationMs < 0 || c.Animations.MountDelayMs < 0 {
		return fmt.Errorf("animation timings must not be negative")
	}
	if c.Persistence.FlushIntervalMs <= 0 {
		return fmt.Errorf("flush_interval_ms must be positive")
	}
	return nil
}

// MountDelay returns the mount delay as a duration.
func (c *Config) MountDelay() time.Duration {
	return time.Duration(c.Animations.MountDelayMs) * time.Millisecond
}

// ExitDuration returns the exit transition duration.
func (c *Config) ExitDuration() time.Duration {
	return time.Duration(c.Animations.ExitDurationMs) * time.Millisecond
}

// FlushInterval returns the durable-write flush interval.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Persistence.FlushIntervalMs) * time.Millisecond
}
