// Package reconcile drives an apply run: load the config, generate the
// Brewfile, show what is declared, remove floating packages once the user
// agrees, then install and verify.
//
// Each step is a Phase. Steps that change installed packages stop the run on
// the first error. Verification and recording the apply time only warn.
package reconcile

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/hops/internal/brew"
	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/profile"
)

// Tool is the brew bundle surface an apply run needs.
type Tool interface {
	ListTaps(ctx context.Context) ([]string, error)
	ListFormulae(ctx context.Context) ([]string, error)
	ListCasks(ctx context.Context) ([]string, error)
	DetectFloating(ctx context.Context) ([]string, error)
	ForceCleanup(ctx context.Context) error
	Install(ctx context.Context) error
	Check(ctx context.Context) (brew.CheckResult, error)
}

// Confirmer asks a yes/no question. An error means the prompt was
// cancelled and is treated as a decline.
type Confirmer func(prompt string) (bool, error)

// Recorder persists the time of a successful apply.
type Recorder interface {
	RecordApply() error
}

// Reporter receives user-facing progress.
type Reporter interface {
	Step(title string)
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	List(items []string)

	// Gutter is called right before brew streams its own output.
	Gutter()
}

// Engine holds the collaborators of an apply run.
type Engine struct {
	LoadConfig    func() (*config.Config, error)
	WriteManifest func(cfg *config.Config, machine string, target profile.PackageSet) error
	NewTool       func(cfg *config.Config) Tool

	// Confirm gates cleanup. A nil Confirm declines.
	Confirm Confirmer

	// Recorder may be nil.
	Recorder Recorder

	// Reporter may be nil.
	Reporter Reporter

	Logger zerolog.Logger
}

// Result describes a finished run.
type Result struct {
	RunID string

	// Phase is Done, Aborted or Failed.
	Phase Phase
	Trail []Phase

	Target   profile.PackageSet
	Declared profile.PackageSet
	Floating []string

	// Satisfied is true when brew bundle check passed.
	Satisfied bool
	Warnings  []string

	Err error
}

// Apply runs the pipeline for machine. The returned error is non-nil only
// when the run ends in Failed; a declined cleanup returns Aborted and nil.
func (e *Engine) Apply(ctx context.Context, machine string) (*Result, error) {
	runID := ulid.Make().String()
	r := &run{
		engine: e,
		phases: newTracker(),
		rep:    e.Reporter,
		log:    e.Logger.With().Str("run_id", runID).Str("machine", machine).Logger(),
		res:    &Result{RunID: runID},
	}
	if r.rep == nil {
		r.rep = nopReporter{}
	}

	r.log.Info().Msg("Starting apply")
	r.execute(ctx, machine)

	r.res.Phase = r.phases.current
	r.res.Trail = r.phases.trail
	r.log.Info().Str("phase", r.res.Phase.String()).Int("warnings", len(r.res.Warnings)).Msg("Apply finished")
	return r.res, r.res.Err
}

type run struct {
	engine *Engine
	phases *tracker
	rep    Reporter
	log    zerolog.Logger
	res    *Result
}

func (r *run) execute(ctx context.Context, machine string) {
	cfg, err := r.engine.LoadConfig()
	if err != nil {
		r.fail(err)
		return
	}
	r.advance(ConfigLoaded)

	target, err := cfg.Target(machine)
	if err != nil {
		r.fail(err)
		return
	}
	r.res.Target = target
	if err := r.engine.WriteManifest(cfg, machine, target); err != nil {
		r.fail(fmt.Errorf("failed to write Brewfile: %w", err))
		return
	}
	r.advance(TargetMerged)

	tool := r.engine.NewTool(cfg)
	declared, err := r.list(ctx, tool)
	if err != nil {
		r.fail(err)
		return
	}
	r.res.Declared = declared
	r.advance(Listed)

	r.rep.Step("Checking for packages not in Brewfile")
	floating, err := tool.DetectFloating(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	r.res.Floating = floating
	r.advance(FloatingChecked)

	if len(floating) == 0 {
		r.rep.Info("No packages to remove")
		r.advance(SkippedCleanup)
	} else {
		r.rep.List(floating)
		r.rep.Warn("Check if any of the above packages need to be added to your config")
		r.advance(ConfirmPending)

		if !r.confirm("Uninstall these packages?") {
			r.rep.Warn("Cleanup cancelled, nothing was changed")
			r.advance(Aborted)
			return
		}

		r.rep.Step("Removing packages")
		r.rep.Gutter()
		if err := tool.ForceCleanup(ctx); err != nil {
			r.fail(err)
			return
		}
		r.rep.Success("Cleanup complete")
		r.advance(CleanedUp)
	}

	r.rep.Step("Install/upgrade packages from Brewfile")
	r.rep.Gutter()
	if err := tool.Install(ctx); err != nil {
		r.fail(err)
		return
	}
	r.advance(Installed)

	r.rep.Step("Checking all packages in Brewfile are installed")
	check, err := tool.Check(ctx)
	switch {
	case err != nil:
		r.warn(fmt.Sprintf("Could not verify packages: %v", err))
	case !check.Satisfied:
		if check.Output != "" {
			r.rep.Info(check.Output)
		}
		r.warn("Some packages in the Brewfile are not installed")
	default:
		r.res.Satisfied = true
		r.rep.Success("All packages in Brewfile are installed")
	}
	r.advance(Verified)

	if r.engine.Recorder != nil {
		if err := r.engine.Recorder.RecordApply(); err != nil {
			r.warn(fmt.Sprintf("Could not record apply time: %v", err))
		}
	}
	r.advance(Done)
}

// list shows what the Brewfile declares, one category at a time.
func (r *run) list(ctx context.Context, tool Tool) (profile.PackageSet, error) {
	var set profile.PackageSet

	categories := []struct {
		title string
		fn    func(context.Context) ([]string, error)
		dst   *[]string
	}{
		{"Installed taps", tool.ListTaps, &set.Taps},
		{"Installed formulae", tool.ListFormulae, &set.Formulae},
		{"Installed casks", tool.ListCasks, &set.Casks},
	}

	for _, c := range categories {
		names, err := c.fn(ctx)
		if err != nil {
			return profile.PackageSet{}, err
		}
		r.rep.Step(c.title)
		r.rep.List(names)
		*c.dst = names
	}
	return set, nil
}

func (r *run) confirm(prompt string) bool {
	if r.engine.Confirm == nil {
		return false
	}
	ok, err := r.engine.Confirm(prompt)
	if err != nil {
		r.log.Debug().Err(err).Msg("Confirmation cancelled")
		return false
	}
	return ok
}

func (r *run) warn(msg string) {
	r.res.Warnings = append(r.res.Warnings, msg)
	r.rep.Warn(msg)
	r.log.Debug().Msg(msg)
}

func (r *run) fail(err error) {
	r.res.Err = err
	r.log.Debug().Err(err).Str("phase", r.phases.current.String()).Msg("Apply failed")
	r.advance(Failed)
}

// advance moves to the next phase. The pipeline above only requests
// transitions from the table, so a rejection is a programming error.
func (r *run) advance(next Phase) {
	from := r.phases.current
	if err := r.phases.to(next); err != nil {
		panic(err)
	}
	r.log.Debug().Str("from", from.String()).Str("to", next.String()).Msg("Phase transition")
}

type nopReporter struct{}

func (nopReporter) Step(string) {}
func (nopReporter) Info(string) {}
func (nopReporter) Warn(string) {}
func (nopReporter) Success(string) {}
func (nopReporter) List([]string) {}
func (nopReporter) Gutter() {}
