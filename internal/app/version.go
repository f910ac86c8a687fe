package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hops version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hops %s\n", version.String())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
