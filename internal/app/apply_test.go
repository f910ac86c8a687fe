package app

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrewScript answers brew bundle subcommands the way Homebrew does and
// appends "<args>|<HOMEBREW_BUNDLE_FILE>" to logPath for each call.
const fakeBrewScript = `#!/bin/sh
echo "$*|$HOMEBREW_BUNDLE_FILE" >> "%s"
case "$*" in
  "bundle list --taps") echo "homebrew/bundle" ;;
  "bundle list --brews") printf "git\njq\n" ;;
  "bundle list --casks") echo "slack" ;;
  "bundle cleanup")
    if [ -n "%s" ]; then
      echo "Would uninstall formulae:"
      echo "htop"
      echo "Run \` + "`" + `brew bundle cleanup --force\` + "`" + ` to make these changes."
      exit 1
    fi
    ;;
  "bundle --force cleanup") echo "Uninstalling htop" ;;
  "bundle install") echo "Homebrew Bundle complete! 4 Brewfile dependencies now installed." ;;
  "bundle check") echo "The Brewfile's dependencies are satisfied." ;;
  *) echo "unexpected: $*" >&2; exit 2 ;;
esac
`

type fakeBrew struct {
	path    string
	logPath string
}

func newFakeBrew(t *testing.T, floating bool) *fakeBrew {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake brew is a shell script")
	}

	dir := t.TempDir()
	fb := &fakeBrew{
		path:    filepath.Join(dir, "brew"),
		logPath: filepath.Join(dir, "calls.log"),
	}

	marker := ""
	if floating {
		marker = "yes"
	}
	script := strings.Replace(fakeBrewScript, "%s", fb.logPath, 1)
	script = strings.Replace(script, "%s", marker, 1)
	require.NoError(t, os.WriteFile(fb.path, []byte(script), 0755))
	return fb
}

// calls returns the brew argument lists in order, checking that every call
// was bound to brewfile.
func (fb *fakeBrew) calls(t *testing.T, brewfile string) []string {
	t.Helper()

	data, err := os.ReadFile(fb.logPath)
	require.NoError(t, err)

	var calls []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		args, file, ok := strings.Cut(line, "|")
		require.True(t, ok, "malformed log line %q", line)
		assert.Equal(t, brewfile, file, "call %q used the wrong Brewfile", args)
		calls = append(calls, args)
	}
	return calls
}

func TestApplyNothingFloating(t *testing.T) {
	dir := setupConfig(t, testConfig)
	fb := newFakeBrew(t, false)

	out, err := executeCommand(t, nil, "apply", "--machine", "work", "--brew", fb.path)
	require.NoError(t, err, out)

	brewfile := filepath.Join(dir, "Brewfile")
	assert.Equal(t, []string{
		"bundle list --taps",
		"bundle list --brews",
		"bundle list --casks",
		"bundle cleanup",
		"bundle install",
		"bundle check",
	}, fb.calls(t, brewfile))

	assert.Contains(t, out, "Machine: work")
	assert.Contains(t, out, "Last apply: Never")
	assert.Contains(t, out, "No packages to remove")
	assert.Contains(t, out, "◇  Install/upgrade packages from Brewfile\n│\nHomebrew Bundle complete!")
	assert.Contains(t, out, "Apply complete")
	assert.NotContains(t, out, "[y/N]")

	_, err = os.Stat(filepath.Join(dir, "state", "last-apply"))
	assert.NoError(t, err, "a successful apply records its time")
}

func TestApplyDeclineCleanup(t *testing.T) {
	dir := setupConfig(t, testConfig)
	fb := newFakeBrew(t, true)

	out, err := executeCommand(t, strings.NewReader("n\n"), "apply", "--machine", "work", "--brew", fb.path)
	require.NoError(t, err, "declining is not an error")

	calls := fb.calls(t, filepath.Join(dir, "Brewfile"))
	assert.NotContains(t, calls, "bundle --force cleanup")
	assert.NotContains(t, calls, "bundle install")

	assert.Contains(t, out, "htop")
	assert.Contains(t, out, "Uninstall these packages? [y/N]")
	assert.Contains(t, out, "no packages were changed")

	_, err = os.Stat(filepath.Join(dir, "state", "last-apply"))
	assert.True(t, os.IsNotExist(err), "an aborted apply is not recorded")
}

func TestApplyAcceptCleanup(t *testing.T) {
	dir := setupConfig(t, testConfig)
	fb := newFakeBrew(t, true)

	out, err := executeCommand(t, strings.NewReader("y\n"), "apply", "--machine", "work", "--brew", fb.path)
	require.NoError(t, err, out)

	assert.Equal(t, []string{
		"bundle list --taps",
		"bundle list --brews",
		"bundle list --casks",
		"bundle cleanup",
		"bundle --force cleanup",
		"bundle install",
		"bundle check",
	}, fb.calls(t, filepath.Join(dir, "Brewfile")))
	assert.Contains(t, out, "Uninstalling htop")
}

func TestApplyYesSkipsPrompt(t *testing.T) {
	dir := setupConfig(t, testConfig)
	fb := newFakeBrew(t, true)

	out, err := executeCommand(t, nil, "apply", "--machine", "work", "--yes", "--brew", fb.path)
	require.NoError(t, err, out)

	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, fb.calls(t, filepath.Join(dir, "Brewfile")), "bundle --force cleanup")
}

func TestApplyBrewFromEnv(t *testing.T) {
	dir := setupConfig(t, testConfig)
	fb := newFakeBrew(t, false)
	t.Setenv(EnvBrew, fb.path)

	_, err := executeCommand(t, nil, "apply", "--machine", "work")
	require.NoError(t, err)
	assert.Len(t, fb.calls(t, filepath.Join(dir, "Brewfile")), 6)
}

func TestApplyMissingBrew(t *testing.T) {
	setupConfig(t, testConfig)

	_, err := executeCommand(t, nil, "apply", "--machine", "work", "--brew", filepath.Join(t.TempDir(), "no-brew"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle list --taps")
}

func TestBrewBinary(t *testing.T) {
	t.Setenv(EnvBrew, "")
	assert.Equal(t, "brew", brewBinary(""))
	assert.Equal(t, "/opt/brew", brewBinary("/opt/brew"))

	t.Setenv(EnvBrew, "/env/brew")
	assert.Equal(t, "/env/brew", brewBinary(""))
	assert.Equal(t, "/opt/brew", brewBinary("/opt/brew"))
}

func TestApplyDebugLogging(t *testing.T) {
	setupConfig(t, testConfig)
	fb := newFakeBrew(t, false)

	out, err := executeCommand(t, nil, "-vv", "apply", "--machine", "work", "--brew", fb.path)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Read last apply record")
	assert.Contains(t, out, "Phase transition")
}
