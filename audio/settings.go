package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the sound settings file within the data directory
const SettingsFileName = "audio.yaml"

// Settings are the player's persisted sound preferences
type Settings struct {
	Muted  bool    `yaml:"muted"`
	Volume float64 `yaml:"volume"`
}

// Validate checks the volume range
func (s Settings) Validate() error {
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, s.Volume)
	}
	return nil
}

// LoadSettings reads settings from path, returning def when the file does not exist
func LoadSettings(path string, def Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	s := def
	if err := yaml.Unmarshal(data, &s); err != nil {
		return def, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return def, err
	}
	return s, nil
}

// SaveSettings writes settings to path, creating the directory if needed
func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
