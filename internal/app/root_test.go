package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/profile"
	"github.com/blackwell-systems/hops/internal/version"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "hops", RootCmd.Use)
	assert.NotEmpty(t, RootCmd.Short)
	assert.NotEmpty(t, RootCmd.Long)
	assert.True(t, RootCmd.SilenceUsage)
	assert.True(t, RootCmd.SilenceErrors)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"apply", "generate", "list", "init", "reminder", "version"} {
		assert.True(t, found[expected], "expected command %q to be registered", expected)
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	flag := RootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.NotEmpty(t, flag.Usage)
}

func TestMachineFlagsRegistered(t *testing.T) {
	for _, name := range []string{"apply", "generate", "list"} {
		cmd, _, err := RootCmd.Find([]string{name})
		require.NoError(t, err)

		flag := cmd.Flags().Lookup("machine")
		require.NotNil(t, flag, "%s should have --machine", name)
		assert.Equal(t, "m", flag.Shorthand)
	}

	brewFlag := applyCmd.Flags().Lookup("brew")
	require.NotNil(t, brewFlag)
	assert.True(t, brewFlag.Hidden)
}

func TestValidateMachine(t *testing.T) {
	tests := []struct {
		name    string
		machine string
		wantErr error
	}{
		{name: "valid", machine: "work"},
		{name: "missing", machine: "", wantErr: profile.ErrMissingProfile},
		{name: "blank", machine: "  ", wantErr: profile.ErrMissingProfile},
		{name: "reserved", machine: "shared", wantErr: profile.ErrReservedProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMachine(tt.machine)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var usageErr *UsageError
			require.True(t, errors.As(err, &usageErr))
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestSharedMachineRejectedBeforeConfig(t *testing.T) {
	// The config does not exist; a UsageError proves nothing was read.
	t.Setenv("HOPS_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	for _, name := range []string{"apply", "generate", "list"} {
		t.Run(name, func(t *testing.T) {
			_, err := executeCommand(t, nil, name, "--machine", "shared")

			var usageErr *UsageError
			require.True(t, errors.As(err, &usageErr), "got %v", err)

			var cfgErr *config.ConfigError
			assert.False(t, errors.As(err, &cfgErr))
		})
	}
}

func TestMissingMachineFlag(t *testing.T) {
	_, err := executeCommand(t, nil, "apply")

	var usageErr *UsageError
	require.True(t, errors.As(err, &usageErr))
	assert.Contains(t, err.Error(), "--machine")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "hops "+version.String()+"\n", out)
}

func TestListCommand(t *testing.T) {
	setupConfig(t, testConfig)

	out, err := executeCommand(t, nil, "list", "--machine", "work")
	require.NoError(t, err)

	assert.Contains(t, out, "Machine: work (shared + work)")
	assert.Contains(t, out, "Taps (1)")
	assert.Contains(t, out, "Formulae (2)")
	assert.Contains(t, out, "  git\n  jq\n")
	assert.Contains(t, out, "Casks (1)")
	assert.Contains(t, out, "Total: 4 packages")
}

func TestListUnknownMachine(t *testing.T) {
	setupConfig(t, testConfig)

	_, err := executeCommand(t, nil, "list", "--machine", "laptop")

	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, profile.ErrUnknownProfile))
	assert.Contains(t, err.Error(), "work")
}

func TestGenerateCommand(t *testing.T) {
	dir := setupConfig(t, testConfig)

	out, err := executeCommand(t, nil, "generate", "--machine", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+filepath.Join(dir, "Brewfile"))

	data, err := os.ReadFile(filepath.Join(dir, "Brewfile"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# Machine: work")
	assert.Contains(t, content, "tap \"homebrew/bundle\"\n")
	assert.Contains(t, content, "brew \"git\"\nbrew \"jq\"\n")
	assert.Contains(t, content, "cask \"slack\"\n")
}

func TestGenerateMissingConfig(t *testing.T) {
	t.Setenv("HOPS_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))

	_, err := executeCommand(t, nil, "generate", "--machine", "work")

	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "missing.yml")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hops.yml")
	t.Setenv("HOPS_CONFIG", path)

	out, err := executeCommand(t, nil, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Machines, profile.Shared)

	_, err = executeCommand(t, nil, "init")
	assert.Error(t, err, "init must not overwrite an existing config")
}
