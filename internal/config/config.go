// Package config loads brushtimer settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/daemon"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/db"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/ledger"
	"github.com/ArthurO-CSULB/Dentistry-App-sub000/internal/timer"
)

// Config holds every tunable setting. Zero values are filled from Default.
type Config struct {
	Duration         time.Duration `yaml:"duration"`
	Tick             time.Duration `yaml:"tick"`
	DemoFinish       bool          `yaml:"demo_finish"`
	Sound            bool          `yaml:"sound"`
	Volume           float64       `yaml:"volume"`
	PointsPerSession int           `yaml:"points_per_session"`
	DBPath           string        `yaml:"db_path"`
	SocketPath       string        `yaml:"socket_path"`
	LogPath          string        `yaml:"log_path"`
	LogLevel         string        `yaml:"log_level"`
	FactsPath        string        `yaml:"facts_path"`
}

// Dir returns the brushtimer configuration directory.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "brushtimer")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Duration:         timer.DefaultDuration,
		Tick:             timer.DefaultTick,
		Sound:            true,
		Volume:           0.6,
		PointsPerSession: ledger.DefaultPointsPerSession,
		DBPath:           db.DefaultDBPath(),
		SocketPath:       daemon.DefaultSocketPath(),
		LogPath:          filepath.Join(Dir(), "brushtimer.log"),
		LogLevel:         "info",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings for values the timer cannot run with.
func (c Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	if c.Duration <= timer.TongueThreshold {
		return fmt.Errorf("duration must exceed %v, got %v", timer.TongueThreshold, c.Duration)
	}
	if c.Duration%c.Tick != 0 {
		return fmt.Errorf("duration %v is not a whole number of %v ticks", c.Duration, c.Tick)
	}
	if c.PointsPerSession < 0 {
		return fmt.Errorf("points_per_session must not be negative, got %d", c.PointsPerSession)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be within [0, 1], got %v", c.Volume)
	}
	return nil
}

// Write saves cfg to path as YAML, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
