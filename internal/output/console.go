// Package output provides terminal output utilities for hops.
//
// Console prints the step-by-step progress of apply and generate in a
// gutter layout:
//
//	┌  hops
//	◇  Installed taps
//	│  homebrew/bundle
//	▲  Check if any of the above packages need to be added to your config
//
// Colour is applied only when the writer is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	markIntro   = "┌"
	markStep    = "◇"
	markGutter  = "│"
	markWarn    = "▲"
	markSuccess = "◆"
	markError   = "■"
)

var (
	introStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Padding(0, 1)
	stepStyle    = lipgloss.NewStyle().Bold(true)
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// IsColorEnabled returns true if colour should be emitted on w.
func IsColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return writerIsTTY(w)
}

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Console writes progress lines to a writer. It is safe for concurrent use.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{out: w, color: IsColorEnabled(w)}
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}

func (c *Console) line(mark string, markStyle lipgloss.Style, text string, textStyle *lipgloss.Style) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		m := mark
		if i > 0 {
			m = markGutter
		}
		if textStyle != nil {
			l = c.render(*textStyle, l)
		}
		fmt.Fprintf(c.out, "%s  %s\n", c.render(markStyle, m), l)
	}
}

// Intro prints the banner that opens a run.
func (c *Console) Intro(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s  %s\n", c.render(gutterStyle, markIntro), c.render(introStyle, title))
}

// Step announces the start of a step.
func (c *Console) Step(title string) {
	c.line(markStep, successStyle, title, &stepStyle)
}

// Info prints informational text under the current step.
func (c *Console) Info(msg string) {
	c.line(markGutter, gutterStyle, msg, nil)
}

// Warn prints an advisory message.
func (c *Console) Warn(msg string) {
	c.line(markWarn, warnStyle, msg, &warnStyle)
}

// Success prints a completion message.
func (c *Console) Success(msg string) {
	c.line(markSuccess, successStyle, msg, nil)
}

// Error prints a failure message.
func (c *Console) Error(msg string) {
	c.line(markError, errorStyle, msg, &errorStyle)
}

// List prints one item per line, or "(none)".
func (c *Console) List(items []string) {
	if len(items) == 0 {
		c.line(markGutter, gutterStyle, c.render(gutterStyle, "(none)"), nil)
		return
	}
	for _, item := range items {
		c.line(markGutter, gutterStyle, item, nil)
	}
}

// Gutter prints an empty gutter line, used before brew streams its output.
func (c *Console) Gutter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.render(gutterStyle, markGutter))
}
