// Package config loads runtime tuning from YAML on top of built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/cyber-clicker/minigame"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the full runtime configuration
type Config struct {
	Tick     TickConfig     `yaml:"tick"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Offline  OfflineConfig  `yaml:"offline"`
	Firewall FirewallConfig `yaml:"firewall"`
	Glitch   GlitchConfig   `yaml:"glitch"`
	Breach   BreachConfig   `yaml:"breach"`
	Prestige PrestigeConfig `yaml:"prestige"`
	Storage  StorageConfig  `yaml:"storage"`
	Audio    AudioConfig    `yaml:"audio"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

type TickConfig struct {
	// Interval is the accrual loop period; credit always uses the measured delta
	Interval time.Duration `yaml:"interval"`
}

type AutosaveConfig struct {
	Interval time.Duration `yaml:"interval"`
	// MinInterval throttles saves triggered by purchases and unlocks
	MinInterval time.Duration `yaml:"min_interval"`
}

type OfflineConfig struct {
	// Threshold is the absence below which no catch-up is credited
	Threshold time.Duration `yaml:"threshold"`
	// Cap bounds the credited absence
	Cap time.Duration `yaml:"cap"`
}

type FirewallConfig struct {
	Interval time.Duration `yaml:"interval"`
	Chance   float64       `yaml:"chance"`
	// Reward is the span of unpenalized rate credited on a clear
	Reward time.Duration `yaml:"reward"`
}

type GlitchConfig struct {
	MinDelay  time.Duration `yaml:"min_delay"`
	MaxDelay  time.Duration `yaml:"max_delay"`
	Lifetime  time.Duration `yaml:"lifetime"`
	MinReward int           `yaml:"min_reward"`
	MaxReward int           `yaml:"max_reward"`
	// AutoMinDelay and AutoMaxDelay bound the auto-glitch reaction time
	AutoMinDelay time.Duration `yaml:"auto_min_delay"`
	AutoMaxDelay time.Duration `yaml:"auto_max_delay"`
}

type BreachConfig struct {
	minigame.BreachConfig `yaml:",inline"`
	Reward                time.Duration `yaml:"reward"`
}

type PrestigeConfig struct {
	// Confirm requires a second keystroke before a reboot
	Confirm bool `yaml:"confirm"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Dir holds the save, audio settings and logs; empty means the user config dir
	Dir     string `yaml:"dir"`
	History int    `yaml:"history"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

type CatalogConfig struct {
	// Path is an optional YAML file merged over the built-in catalog by id
	Path string `yaml:"path"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Tick:     TickConfig{Interval: 100 * time.Millisecond},
		Autosave: AutosaveConfig{Interval: 15 * time.Second, MinInterval: 2 * time.Second},
		Offline:  OfflineConfig{Threshold: 10 * time.Second, Cap: 24 * time.Hour},
		Firewall: FirewallConfig{Interval: 60 * time.Second, Chance: 0.1, Reward: 300 * time.Second},
		Glitch: GlitchConfig{
			MinDelay:     60 * time.Second,
			MaxDelay:     180 * time.Second,
			Lifetime:     10 * time.Second,
			MinReward:    1,
			MaxReward:    5,
			AutoMinDelay: 100 * time.Millisecond,
			AutoMaxDelay: 500 * time.Millisecond,
		},
		Breach:   BreachConfig{BreachConfig: minigame.DefaultBreachConfig(), Reward: 300 * time.Second},
		Prestige: PrestigeConfig{Confirm: true},
		Storage:  StorageConfig{Backend: BackendFile, History: 10},
		Audio:    AudioConfig{Enabled: true, Volume: 0.5},
	}
}

// Load reads path over the defaults; an empty path or missing file yields the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}

	positive("tick.interval", c.Tick.Interval)
	positive("autosave.interval", c.Autosave.Interval)
	positive("autosave.min_interval", c.Autosave.MinInterval)
	positive("offline.cap", c.Offline.Cap)
	if c.Offline.Threshold < 0 {
		errs = append(errs, errors.New("offline.threshold must not be negative"))
	}
	positive("firewall.interval", c.Firewall.Interval)
	if c.Firewall.Chance < 0 || c.Firewall.Chance > 1 {
		errs = append(errs, fmt.Errorf("firewall.chance must be in [0,1], got %v", c.Firewall.Chance))
	}
	positive("firewall.reward", c.Firewall.Reward)

	positive("glitch.min_delay", c.Glitch.MinDelay)
	positive("glitch.lifetime", c.Glitch.Lifetime)
	if c.Glitch.MaxDelay < c.Glitch.MinDelay {
		errs = append(errs, fmt.Errorf("glitch.max_delay %v below min_delay %v", c.Glitch.MaxDelay, c.Glitch.MinDelay))
	}
	if c.Glitch.MinReward < 0 || c.Glitch.MaxReward < c.Glitch.MinReward {
		errs = append(errs, fmt.Errorf("glitch reward range [%d,%d] invalid", c.Glitch.MinReward, c.Glitch.MaxReward))
	}
	if c.Glitch.AutoMinDelay < 0 || c.Glitch.AutoMaxDelay < c.Glitch.AutoMinDelay {
		errs = append(errs, fmt.Errorf("glitch auto delay range [%v,%v] invalid", c.Glitch.AutoMinDelay, c.Glitch.AutoMaxDelay))
	}

	if err := c.Breach.BreachConfig.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("breach: %w", err))
	}
	positive("breach.reward", c.Breach.Reward)

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q unknown", c.Storage.Backend))
	}
	if c.Storage.History < 1 {
		errs = append(errs, errors.New("storage.history must be at least 1"))
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be in [0,1], got %v", c.Audio.Volume))
	}

	return errors.Join(errs...)
}
