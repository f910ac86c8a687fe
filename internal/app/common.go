package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/blackwell-systems/hops/internal/brew"
	"github.com/blackwell-systems/hops/internal/brewfile"
	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/logging"
	"github.com/blackwell-systems/hops/internal/output"
	"github.com/blackwell-systems/hops/internal/profile"
	"github.com/blackwell-systems/hops/internal/state"
	"github.com/blackwell-systems/hops/internal/version"
)

// EnvBrew selects the brew executable when --brew is not given.
const EnvBrew = "HOPS_BREW"

// statePath locates the last apply record. Tests replace it.
var statePath = state.DefaultPath

// writeManifest regenerates the Brewfile for machine.
func writeManifest(cfg *config.Config, machine string, target profile.PackageSet) error {
	return brewfile.Write(cfg.Brewfile, target, brewfile.Header{
		Version:    version.String(),
		ConfigPath: cfg.Path,
		Machine:    machine,
	})
}

// brewBinary picks the brew executable: flag, then $HOPS_BREW, then brew.
func brewBinary(flag string) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(EnvBrew)); env != "" {
		return env
	}
	return brew.DefaultBinary
}

// newBundle returns a brew bundle adapter bound to the config's Brewfile.
func newBundle(cfg *config.Config, binary string, stdout, stderr io.Writer) *brew.Bundle {
	b := brew.NewBundle(cfg.Brewfile)
	b.Binary = brewBinary(binary)
	b.Rules = brew.DefaultFloatingRules().Override(brew.FloatingRules{
		Version:     cfg.Floating.Version,
		Sections:    cfg.Floating.Sections,
		Terminators: cfg.Floating.Terminators,
		Ignore:      cfg.Floating.Ignore,
	})
	b.Stdout = stdout
	b.Stderr = stderr
	return b
}

// openTracker returns the last apply tracker, or nil when the state
// directory cannot be located.
func openTracker() (*state.Tracker, error) {
	path, err := statePath()
	if err != nil {
		return nil, err
	}
	return state.NewTracker(path), nil
}

// printRunHeader shows what is about to be applied and when it last was.
func printRunHeader(console *output.Console, cfg *config.Config, machine string, tracker *state.Tracker) {
	lines := []string{
		"Version: " + version.String(),
		"Config: " + cfg.Path,
		"Machine: " + machine,
	}
	if tracker == nil {
		console.Info(strings.Join(lines, "\n"))
		return
	}

	last, applied, err := tracker.LastApplyTime()
	if err != nil {
		console.Info(strings.Join(lines, "\n"))
		console.Warn(fmt.Sprintf("Could not read last apply time: %v", err))
		return
	}

	now := time.Now()
	lines = append(lines, "Last apply: "+state.FormatLastApply(last, applied, now))
	console.Info(strings.Join(lines, "\n"))

	if days, due := state.ReminderDue(last, applied, cfg.Reminder, now); due {
		console.Warn(fmt.Sprintf("It has been %s since the last apply", state.FormatDays(days)))
	}
	logger := logging.GetLogger("app")
	logger.Debug().Str("state", tracker.Path()).Bool("applied", applied).Msg("Read last apply record")
}
