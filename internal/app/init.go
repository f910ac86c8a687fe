package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config file",
	Long: `Write an example config to $HOPS_CONFIG, or ~/hops.yml when unset. A path
ending in .toml gets a TOML config. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: edit the machine profiles, then run 'hops apply --machine <name>'.")
	return nil
}
