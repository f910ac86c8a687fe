package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/hops/internal/profile"
)

// fileConfig is the on-disk shape written by WriteDefault.
type fileConfig struct {
	Brewfile string                        `yaml:"brewfile" toml:"brewfile"`
	Reminder int                           `yaml:"reminder" toml:"reminder"`
	Machines map[string]profile.PackageSet `yaml:"machines" toml:"machines"`
}

// defaultConfig carries a few example packages to show the structure.
func defaultConfig() fileConfig {
	return fileConfig{
		Brewfile: "~/Brewfile",
		Reminder: DefaultReminderDays,
		Machines: map[string]profile.PackageSet{
			profile.Shared: {
				Taps:     []string{"homebrew/bundle"},
				Formulae: []string{"coreutils"},
				Casks:    []string{"1password", "raycast", "spotify"},
			},
			"personal": {Casks: []string{"adobe-creative-cloud"}},
			"work":     {Casks: []string{"loom", "slack"}},
		},
	}
}

// WriteDefault writes the example configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return &ConfigError{Path: path, Msg: "config file already exists"}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &ConfigError{Path: path, Msg: "unable to access config", Err: err}
	}

	data, err := encodeDefault(path)
	if err != nil {
		return &ConfigError{Path: path, Msg: "unable to encode default config", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ConfigError{Path: path, Msg: "unable to create config directory", Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ConfigError{Path: path, Msg: "unable to write config", Err: err}
	}
	return nil
}

func encodeDefault(path string) ([]byte, error) {
	cfg := defaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		return data, nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return data, nil
}
