package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/blackwell-systems/hops/internal/reconcile"
)

var errNoAnswer = errors.New("no answer")

// newConfirmer returns the cleanup prompt. --yes always agrees. A terminal
// gets an interactive prompt; piped input is read as a [y/N] line.
func newConfirmer(in io.Reader, out io.Writer, yes bool) reconcile.Confirmer {
	if yes {
		return func(string) (bool, error) { return true, nil }
	}
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return func(prompt string) (bool, error) {
			return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
		}
	}
	return lineConfirmer(in, out)
}

// lineConfirmer reads a single answer per prompt. EOF cancels.
func lineConfirmer(in io.Reader, out io.Writer) reconcile.Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)

		response, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && response != "") {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) {
				return false, errNoAnswer
			}
			return false, err
		}

		response = strings.TrimSpace(strings.ToLower(response))
		return response == "y" || response == "yes", nil
	}
}
