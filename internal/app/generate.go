package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/output"
	"github.com/blackwell-systems/hops/internal/watcher"
)

var (
	generateMachine string
	generateWatch   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the Brewfile for a machine",
	Long: `Merge the shared profile with a machine profile and write the result as a
Brewfile. Nothing is installed or removed.

With --watch, the Brewfile is regenerated every time the config file is
saved until interrupted.`,
	Example: `  # Write the Brewfile once
  hops generate --machine work

  # Keep it in sync while editing the config
  hops generate --machine work --watch`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateMachine, "machine", "m", "", "machine profile to generate (required)")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "regenerate when the config file changes")

	RootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := validateMachine(generateMachine); err != nil {
		return err
	}

	console := output.NewConsole(cmd.OutOrStdout())

	cfg, err := generateOnce(console, generateMachine)
	if err != nil {
		return err
	}
	if !generateWatch {
		return nil
	}

	w, err := watcher.New(cfg.Path, func() {
		if _, err := generateOnce(console, generateMachine); err != nil {
			console.Error(err.Error())
		}
	})
	if err != nil {
		return err
	}
	w.OnError = func(err error) {
		console.Warn(fmt.Sprintf("Watcher error: %v", err))
	}

	console.Info(fmt.Sprintf("Watching %s for changes, press Ctrl-C to stop", cfg.Path))
	return w.Run(cmd.Context())
}

// generateOnce loads the config and rewrites the Brewfile.
func generateOnce(console *output.Console, machine string) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	target, err := cfg.Target(machine)
	if err != nil {
		return nil, err
	}
	if err := writeManifest(cfg, machine, target); err != nil {
		return nil, fmt.Errorf("failed to write Brewfile: %w", err)
	}

	console.Success(fmt.Sprintf("Wrote %s (%d packages)", cfg.Brewfile, target.Len()))
	return cfg, nil
}
