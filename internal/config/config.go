// Package config loads the hops configuration file.
//
// The file declares where the generated Brewfile lives and the package sets
// of each machine profile:
//
//	brewfile: ~/Brewfile
//	reminder: 7
//	machines:
//	  shared:
//	    taps: [homebrew/bundle]
//	    formulae: [coreutils]
//	  work:
//	    casks: [slack]
//
// YAML is the default format; a path ending in .toml is read as TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/blackwell-systems/hops/internal/logging"
	"github.com/blackwell-systems/hops/internal/profile"
)

const (
	// EnvConfig overrides the config file location.
	EnvConfig = "HOPS_CONFIG"

	// DefaultFileName is the config file name under the home directory.
	DefaultFileName = "hops.yml"

	// DefaultReminderDays is used when the config does not set reminder.
	DefaultReminderDays = 7

	// keyDelim separates koanf key paths. Machine names may contain dots.
	keyDelim = "::"
)

// Config is the parsed configuration file.
type Config struct {
	// Brewfile is the absolute path of the generated manifest.
	Brewfile string

	// Machines maps profile names to their declared packages.
	Machines map[string]profile.PackageSet

	// Reminder is the number of days after which a reminder is shown.
	// Zero disables reminders.
	Reminder int

	// Floating overrides the parser rules for `brew bundle cleanup` output.
	Floating FloatingRules

	// Path is the file the config was read from.
	Path string
}

// FloatingRules mirrors the floating-package parser rules so they can be
// adjusted when brew changes its wording. Empty lists keep the defaults.
type FloatingRules struct {
	Version     string   `koanf:"version"`
	Sections    []string `koanf:"sections"`
	Terminators []string `koanf:"terminators"`
	Ignore      []string `koanf:"ignore"`
}

type rawProfile struct {
	Taps     []string `koanf:"taps"`
	Formulae []string `koanf:"formulae"`
	Formula  []string `koanf:"formula"` // accepted for older configs
	Casks    []string `koanf:"casks"`
}

type rawConfig struct {
	Brewfile string                `koanf:"brewfile"`
	Machines map[string]rawProfile `koanf:"machines"`
	Reminder int                   `koanf:"reminder"`
	Floating FloatingRules         `koanf:"floating_rules"`
}

// Path returns the config file path, honouring HOPS_CONFIG.
func Path() (string, error) {
	logger := logging.GetLogger("config")

	if input := strings.TrimSpace(os.Getenv(EnvConfig)); input != "" {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", EnvConfig, err)
		}
		return abs, nil
	}

	logger.Debug().Str("env", EnvConfig).Msg("Config env variable not set, falling back to default")
	if xdg.Home == "" {
		return "", errors.New("failed to get user home directory")
	}
	return filepath.Join(xdg.Home, DefaultFileName), nil
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Msg: "config not found"}
		}
		return nil, &ConfigError{Path: path, Msg: "unable to access config", Err: err}
	}

	k := koanf.New(keyDelim)
	defaults := map[string]interface{}{"reminder": DefaultReminderDays}
	if err := k.Load(confmap.Provider(defaults, keyDelim), nil); err != nil {
		return nil, &ConfigError{Path: path, Msg: "unable to load defaults", Err: err}
	}
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, &ConfigError{Path: path, Msg: "unable to parse config", Err: err}
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, &ConfigError{Path: path, Msg: "invalid config format", Err: err}
	}

	if strings.TrimSpace(raw.Brewfile) == "" {
		return nil, &ConfigError{Path: path, Msg: "invalid config format: 'brewfile' is not defined"}
	}
	if raw.Machines == nil {
		return nil, &ConfigError{Path: path, Msg: "invalid config format: 'machines' is not defined"}
	}
	if raw.Reminder < 0 {
		return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("invalid config format: 'reminder' must not be negative (got %d)", raw.Reminder)}
	}

	cfg := &Config{
		Brewfile: expandPath(raw.Brewfile, filepath.Dir(path)),
		Machines: make(map[string]profile.PackageSet, len(raw.Machines)),
		Reminder: raw.Reminder,
		Floating: raw.Floating,
		Path:     path,
	}
	for name, p := range raw.Machines {
		set := profile.PackageSet{
			Taps:     p.Taps,
			Formulae: append(append([]string{}, p.Formulae...), p.Formula...),
			Casks:    p.Casks,
		}
		if bad, ok := invalidName(set); ok {
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("invalid config format: package %q in machine %q contains a quote, backslash or newline", bad, name)}
		}
		cfg.Machines[name] = set
	}

	return cfg, nil
}

// invalidName returns the first package name the Brewfile cannot quote.
func invalidName(set profile.PackageSet) (string, bool) {
	for _, list := range [][]string{set.Taps, set.Formulae, set.Casks} {
		for _, name := range list {
			if strings.ContainsAny(name, "\"\\\n\r") {
				return name, true
			}
		}
	}
	return "", false
}

// Target returns the merged package set for machine.
func (c *Config) Target(machine string) (profile.PackageSet, error) {
	set, err := profile.Select(c.Machines, machine)
	if err != nil {
		return profile.PackageSet{}, &ConfigError{Path: c.Path, Msg: "unable to select machine", Err: err}
	}
	return set, nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}

// expandPath resolves ~ against the home directory and relative paths
// against the config file's directory.
func expandPath(p, baseDir string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "~":
		return xdg.Home
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(xdg.Home, p[2:])
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return filepath.Join(baseDir, p)
	}
}
