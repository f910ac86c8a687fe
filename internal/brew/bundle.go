// Package brew wraps the `brew bundle` subcommands hops drives. It is the
// only package that starts external processes.
package brew

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/hops/internal/logging"
)

const (
	// DefaultBinary is the brew executable looked up on PATH.
	DefaultBinary = "brew"

	// EnvBundleFile tells brew bundle which Brewfile to use.
	EnvBundleFile = "HOMEBREW_BUNDLE_FILE"
)

// CheckResult is the outcome of `brew bundle check`.
type CheckResult struct {
	Satisfied bool
	Output    string
}

// Bundle runs brew bundle against a single Brewfile.
type Bundle struct {
	Binary   string
	Brewfile string
	Runner   Runner
	Rules    FloatingRules

	// BaseEnv is the environment every invocation starts from.
	BaseEnv []string

	// Stdout and Stderr receive the live output of cleanup and install.
	Stdout io.Writer
	Stderr io.Writer

	Logger zerolog.Logger
}

// NewBundle returns a Bundle for brewfile using the real brew binary.
func NewBundle(brewfile string) *Bundle {
	return &Bundle{
		Binary:   DefaultBinary,
		Brewfile: brewfile,
		Runner:   ExecRunner{},
		Rules:    DefaultFloatingRules(),
		BaseEnv:  os.Environ(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Logger:   logging.GetLogger("brew"),
	}
}

// ListTaps returns the taps declared in the Brewfile.
func (b *Bundle) ListTaps(ctx context.Context) ([]string, error) {
	return b.list(ctx, "--taps")
}

// ListFormulae returns the formulae declared in the Brewfile.
func (b *Bundle) ListFormulae(ctx context.Context) ([]string, error) {
	return b.list(ctx, "--brews")
}

// ListCasks returns the casks declared in the Brewfile.
func (b *Bundle) ListCasks(ctx context.Context) ([]string, error) {
	return b.list(ctx, "--casks")
}

func (b *Bundle) list(ctx context.Context, flag string) ([]string, error) {
	res, err := b.run(ctx, false, "bundle", "list", flag)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, b.toolError(res, nil, "bundle", "list", flag)
	}
	return splitLines(string(res.Stdout)), nil
}

// DetectFloating returns packages installed on the machine but missing
// from the Brewfile. brew exits non-zero whenever it finds something to
// remove, so the exit code is not treated as failure here.
func (b *Bundle) DetectFloating(ctx context.Context) ([]string, error) {
	res, err := b.run(ctx, false, "bundle", "cleanup")
	if err != nil {
		return nil, err
	}

	floating := ParseFloating(string(res.Stdout), b.Rules)
	b.Logger.Debug().
		Int("exit_code", res.ExitCode).
		Strs("floating", floating).
		Str("rules", b.Rules.Version).
		Msg("Parsed cleanup report")
	return floating, nil
}

// ForceCleanup uninstalls every package not in the Brewfile.
func (b *Bundle) ForceCleanup(ctx context.Context) error {
	res, err := b.run(ctx, true, "bundle", "--force", "cleanup")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return b.toolError(res, nil, "bundle", "--force", "cleanup")
	}
	return nil
}

// Install installs and upgrades everything in the Brewfile, streaming
// brew's own output.
func (b *Bundle) Install(ctx context.Context) error {
	res, err := b.run(ctx, true, "bundle", "install")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return b.toolError(res, nil, "bundle", "install")
	}
	return nil
}

// Check reports whether every Brewfile entry is installed. Exit code 1 means
// unsatisfied; anything else non-zero is an error.
func (b *Bundle) Check(ctx context.Context) (CheckResult, error) {
	res, err := b.run(ctx, false, "bundle", "check")
	if err != nil {
		return CheckResult{}, err
	}

	out := strings.TrimSpace(string(res.Stdout) + string(res.Stderr))
	switch res.ExitCode {
	case 0:
		return CheckResult{Satisfied: true, Output: out}, nil
	case 1:
		return CheckResult{Satisfied: false, Output: out}, nil
	default:
		return CheckResult{Output: out}, b.toolError(res, nil, "bundle", "check")
	}
}

// run invokes brew with the Brewfile bound explicitly for this call.
func (b *Bundle) run(ctx context.Context, stream bool, args ...string) (Result, error) {
	cmd := Command{
		Name: b.binary(),
		Args: args,
		Env:  b.env(),
	}
	if stream {
		cmd.Stdout = b.Stdout
		cmd.Stderr = b.Stderr
	}

	b.Logger.Debug().
		Str("command", cmd.Name).
		Strs("args", args).
		Str("brewfile", b.Brewfile).
		Bool("stream", stream).
		Msg("Executing command")

	start := time.Now()
	res, err := b.Runner.Run(ctx, cmd)
	logging.LogDuration(b.Logger, start, strings.Join(args, " "))
	if err != nil {
		return res, b.toolError(res, err, args...)
	}

	b.Logger.Debug().Int("exit_code", res.ExitCode).Strs("args", args).Msg("Command finished")
	return res, nil
}

func (b *Bundle) binary() string {
	if b.Binary == "" {
		return DefaultBinary
	}
	return b.Binary
}

// env copies BaseEnv, replacing any inherited HOMEBREW_BUNDLE_FILE.
func (b *Bundle) env() []string {
	prefix := EnvBundleFile + "="
	env := make([]string, 0, len(b.BaseEnv)+1)
	for _, kv := range b.BaseEnv {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		env = append(env, kv)
	}
	return append(env, prefix+b.Brewfile)
}

func (b *Bundle) toolError(res Result, err error, args ...string) *ToolError {
	exitCode := res.ExitCode
	if err != nil {
		exitCode = -1
	}
	return &ToolError{
		Command:  append([]string{b.binary()}, args...),
		ExitCode: exitCode,
		Stderr:   string(res.Stderr),
		Err:      err,
	}
}

// splitLines splits newline-delimited output, dropping blank lines.
func splitLines(output string) []string {
	lines := []string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
