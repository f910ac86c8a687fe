package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/logging"
)

var (
	verbosity int

	// RootCmd is the root command for hops
	RootCmd = &cobra.Command{
		Use:   "hops",
		Short: "Declarative Homebrew package management",
		Long: `hops keeps the Homebrew packages on each of your machines in line with a
single config file.

The config declares a shared profile applied everywhere plus one profile per
machine. hops merges the two, writes a Brewfile, removes anything installed
that the Brewfile does not declare (after asking), and installs the rest.

Config location:
  $HOPS_CONFIG, or ~/hops.yml when unset

Examples:
  # Create a starter config
  hops init

  # Preview the merged package list for a machine
  hops list --machine work

  # Regenerate the Brewfile on every config save
  hops generate --machine work --watch

  # Reconcile installed packages
  hops apply --machine work`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity, cmd.ErrOrStderr())
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

// loadConfig loads the config from $HOPS_CONFIG or the default path.
func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}
