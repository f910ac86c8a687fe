// Package brewfile renders a package set as a Brewfile consumed by
// `brew bundle`, and reads the tap/brew/cask entries back.
package brewfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blackwell-systems/hops/internal/profile"
)

// Header describes where a generated Brewfile came from.
type Header struct {
	Version    string
	ConfigPath string
	Machine    string
}

// entryPattern matches `tap "name"`, `brew "name"` and `cask "name"` lines,
// ignoring any trailing options.
var entryPattern = regexp.MustCompile(`^(tap|brew|cask)\s+"([^"]+)"`)

// Render returns the Brewfile contents for set: taps, then formulae, then casks.
// Names are written between double quotes without escaping, so they must not
// contain a quote, backslash or newline; config.Load rejects such names.
func Render(set profile.PackageSet, h Header) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Generated by hops")
	if h.Version != "" {
		fmt.Fprintf(&buf, " %s", h.Version)
	}
	buf.WriteString(", do not edit.\n")
	if h.ConfigPath != "" {
		fmt.Fprintf(&buf, "# Config: %s\n", h.ConfigPath)
	}
	if h.Machine != "" {
		fmt.Fprintf(&buf, "# Machine: %s\n", h.Machine)
	}

	writeSection(&buf, "tap", set.Taps)
	writeSection(&buf, "brew", set.Formulae)
	writeSection(&buf, "cask", set.Casks)

	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, keyword string, names []string) {
	if len(names) == 0 {
		return
	}
	buf.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(buf, "%s \"%s\"\n", keyword, name)
	}
}

// Write renders set to path, replacing any existing file.
func Write(path string, set profile.PackageSet, h Header) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create Brewfile directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".Brewfile-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary Brewfile: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(Render(set, h)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write Brewfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write Brewfile: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set Brewfile permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace Brewfile: %w", err)
	}
	return nil
}

// Parse reads the tap, brew and cask entries of a Brewfile. Other entry
// kinds (mas, vscode, whalebrew) and comments are skipped.
func Parse(r io.Reader) (profile.PackageSet, error) {
	set := profile.PackageSet{
		Taps:     []string{},
		Formulae: []string{},
		Casks:    []string{},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		switch m[1] {
		case "tap":
			set.Taps = append(set.Taps, m[2])
		case "brew":
			set.Formulae = append(set.Formulae, m[2])
		case "cask":
			set.Casks = append(set.Casks, m[2])
		}
	}

	if err := scanner.Err(); err != nil {
		return profile.PackageSet{}, fmt.Errorf("failed to read Brewfile: %w", err)
	}
	return set, nil
}

// ReadFile parses the Brewfile at path.
func ReadFile(path string) (profile.PackageSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return profile.PackageSet{}, fmt.Errorf("failed to open Brewfile: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
