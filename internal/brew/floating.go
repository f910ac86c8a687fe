package brew

import "strings"

// FloatingRules describe how to read the report printed by a dry-run
// `brew bundle cleanup`. The wording is owned by Homebrew and changes between
// releases, so the rules are versioned and can be replaced from config.
//
// A typical report:
//
//	Would uninstall casks:
//	adobe-creative-cloud
//	Would uninstall formulae:
//	htop wget
//	Would `brew cleanup`:
//	Would remove: /opt/homebrew/Cellar/wget/1.21 (89 files, 4.4MB)
//	Run `brew bundle cleanup --force` to make these changes.
type FloatingRules struct {
	// Version names the brew bundle wording the rules were written against.
	Version string

	// Sections are line prefixes that open a list of package names. Text
	// after the first colon on such a line is read as names too.
	Sections []string

	// Terminators are line prefixes after which nothing is read.
	Terminators []string

	// Ignore are diagnostic line prefixes that are skipped and close the
	// current section.
	Ignore []string
}

// DefaultFloatingRules match the current brew bundle output.
func DefaultFloatingRules() FloatingRules {
	return FloatingRules{
		Version:     "brew-bundle/1",
		Sections:    []string{"Would uninstall", "Would untap"},
		Terminators: []string{"Run `brew bundle cleanup"},
		Ignore: []string{
			"==>",
			"Warning:",
			"Would `brew cleanup`",
			"Would remove:",
			"Nothing to do",
		},
	}
}

// Override returns r with every non-empty field of o replacing its own.
func (r FloatingRules) Override(o FloatingRules) FloatingRules {
	if o.Version != "" {
		r.Version = o.Version
	}
	if len(o.Sections) > 0 {
		r.Sections = o.Sections
	}
	if len(o.Terminators) > 0 {
		r.Terminators = o.Terminators
	}
	if len(o.Ignore) > 0 {
		r.Ignore = o.Ignore
	}
	return r
}

// ParseFloating extracts package names from a cleanup report. An empty
// report yields an empty, non-nil list.
func ParseFloating(output string, rules FloatingRules) []string {
	names := []string{}
	seen := make(map[string]struct{})
	add := func(fields []string) {
		for _, f := range fields {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			names = append(names, f)
		}
	}

	inSection := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hasAnyPrefix(line, rules.Terminators) {
			break
		}
		if hasAnyPrefix(line, rules.Ignore) {
			inSection = false
			continue
		}
		if hasAnyPrefix(line, rules.Sections) {
			inSection = true
			if i := strings.Index(line, ":"); i >= 0 {
				add(strings.Fields(line[i+1:]))
			}
			continue
		}
		if inSection {
			add(strings.Fields(line))
		}
	}

	return names
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
