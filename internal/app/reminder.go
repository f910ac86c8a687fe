package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hops/internal/config"
	"github.com/blackwell-systems/hops/internal/output"
	"github.com/blackwell-systems/hops/internal/state"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Warn when apply has not been run recently",
	Long: `Print a warning when more days than the config's reminder setting (default 7)
have passed since the last apply. Prints nothing otherwise, or when there is
no config yet, so it is safe to call from a shell rc file.`,
	Example: `  # ~/.zshrc
  hops reminder`,
	Args: cobra.NoArgs,
	RunE: runReminder,
}

func init() {
	RootCmd.AddCommand(reminderCmd)
}

func runReminder(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	console := output.NewConsole(cmd.OutOrStdout())

	tracker, err := openTracker()
	if err != nil {
		console.Warn(fmt.Sprintf("Could not read last apply time: %v", err))
		return nil
	}
	last, applied, err := tracker.LastApplyTime()
	if err != nil {
		console.Warn(fmt.Sprintf("Could not read last apply time: %v", err))
		return nil
	}

	if days, due := state.ReminderDue(last, applied, cfg.Reminder, time.Now()); due {
		console.Warn(fmt.Sprintf("%s since last apply. Run 'hops apply --machine <name>' to stay in sync.", state.FormatDays(days)))
	}
	return nil
}
