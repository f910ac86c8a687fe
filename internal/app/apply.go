package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/logging"
	"github.com/blackwell-systems/hops/internal/output"
	"github.com/blackwell-systems/hops/internal/reconcile"
)

var (
	applyMachine string
	applyYes     bool
	applyBrew    string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile installed packages with the config",
	Long: `Generate the Brewfile for a machine and bring installed packages in line
with it.

Steps:
  1. Merge the shared profile with the machine profile and write the Brewfile
  2. Show the taps, formulae and casks the Brewfile declares
  3. Find installed packages the Brewfile does not declare
  4. Ask before uninstalling them (skipped when there are none)
  5. Install and upgrade everything in the Brewfile
  6. Verify every declared package is installed

Declining the uninstall prompt stops the run without changing anything.`,
	Example: `  # Apply the work profile
  hops apply --machine work

  # Apply without prompting
  hops apply --machine work --yes`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyMachine, "machine", "m", "", "machine profile to apply (required)")
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "uninstall undeclared packages without asking")
	applyCmd.Flags().StringVar(&applyBrew, "brew", "", "brew executable (default: $HOPS_BREW or brew)")
	_ = applyCmd.Flags().MarkHidden("brew")

	RootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := validateMachine(applyMachine); err != nil {
		return err
	}

	console := output.NewConsole(cmd.OutOrStdout())
	console.Intro("hops")

	tracker, err := openTracker()
	if err != nil {
		console.Warn(fmt.Sprintf("Last apply time will not be recorded: %v", err))
	}

	engine := &reconcile.Engine{
		LoadConfig: func() (*config.Config, error) {
			cfg, err := loadConfig()
			if err != nil {
				return nil, err
			}
			printRunHeader(console, cfg, applyMachine, tracker)
			return cfg, nil
		},
		WriteManifest: writeManifest,
		NewTool: func(cfg *config.Config) reconcile.Tool {
			return newBundle(cfg, applyBrew, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		Confirm:  newConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), applyYes),
		Reporter: console,
		Logger:   logging.GetLogger("reconcile"),
	}
	if tracker != nil {
		engine.Recorder = tracker
	}

	res, err := engine.Apply(cmd.Context(), applyMachine)
	if err != nil {
		return err
	}

	switch res.Phase {
	case reconcile.Aborted:
		console.Warn("Apply stopped, no packages were changed")
	case reconcile.Done:
		if len(res.Warnings) > 0 {
			console.Success(fmt.Sprintf("Apply finished with %d warning(s)", len(res.Warnings)))
		} else {
			console.Success("Apply complete")
		}
	}
	return nil
}
