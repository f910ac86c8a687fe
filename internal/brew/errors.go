package brew

import (
	"fmt"
	"strings"
)

// ToolError reports a brew invocation that failed to run or exited with a
// code that counts as failure for that subcommand.
type ToolError struct {
	Command  []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	cmd := strings.Join(e.Command, " ")
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", cmd, e.Err)
	}
	msg := fmt.Sprintf("%s failed with exit code %d", cmd, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s (stderr: %s)", msg, stderr)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }
