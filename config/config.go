package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MIDIConfig selects the synth output port
type MIDIConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"` // base channel, voices stack upward
}

// MusicConfig stores the musical context restored at startup
type MusicConfig struct {
	Tempo         int    `json:"tempo,omitempty"`
	Key           string `json:"key,omitempty"`
	Scale         string `json:"scale,omitempty"`
	AllowNonScale bool   `json:"allowNonScale,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI  MIDIConfig  `json:"midi,omitempty"`
	Music MusicConfig `json:"music,omitempty"`
	Debug bool        `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{Channel: 1},
		Music: MusicConfig{
			Tempo: 120,
			Key:   "C",
			Scale: "Major",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gridseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
