package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/output"
	"github.com/blackwell-systems/hops/internal/profile"
)

var listMachine string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the merged package list for a machine",
	Long: `Print the taps, formulae and casks a machine would get: the shared profile
followed by the machine's own entries, duplicates removed. brew is not run.`,
	Example: `  hops list --machine work`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVarP(&listMachine, "machine", "m", "", "machine profile to list (required)")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := validateMachine(listMachine); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := cfg.Target(listMachine)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Machine: %s (%s + %s)\n\n", listMachine, profile.Shared, listMachine)
	fmt.Fprint(out, output.RenderPackageSet(target))
	return nil
}
