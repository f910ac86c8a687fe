package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/hops/internal/state"
)

const testConfig = `brewfile: Brewfile
reminder: 7
machines:
  shared:
    taps:
      - homebrew/bundle
    formulae:
      - git
  work:
    formulae:
      - git
      - jq
    casks:
      - slack
`

// executeCommand runs RootCmd with args and returns combined output.
// Package-level flag values are reset first so tests do not leak into
// each other.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	verbosity = 0
	applyMachine, applyYes, applyBrew = "", false, ""
	generateMachine, generateWatch = "", false
	listMachine = ""

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetIn(stdin)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetIn(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.Execute()
	return buf.String(), err
}

// setupConfig writes a config into a temp dir, points HOPS_CONFIG at it and
// redirects the last apply record. It returns the config directory.
func setupConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hops.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("HOPS_CONFIG", path)

	useStateFile(t, filepath.Join(dir, "state", state.FileName))
	return dir
}

func useStateFile(t *testing.T, path string) {
	t.Helper()
	orig := statePath
	statePath = func() (string, error) { return path, nil }
	t.Cleanup(func() { statePath = orig })
}
