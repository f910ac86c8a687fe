package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/hops/internal/profile"
)

// RenderPackageSet renders a package set grouped by category:
//
//	Taps (1)
//	────────────────────────────────────────
//	  homebrew/bundle
func RenderPackageSet(set profile.PackageSet) string {
	var sb strings.Builder

	sections := []struct {
		title string
		names []string
	}{
		{"Taps", set.Taps},
		{"Formulae", set.Formulae},
		{"Casks", set.Casks},
	}

	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s (%d)\n", s.title, len(s.names)))
		sb.WriteString(strings.Repeat("─", 40))
		sb.WriteString("\n")
		if len(s.names) == 0 {
			sb.WriteString("  (none)\n")
			continue
		}
		for _, name := range s.names {
			sb.WriteString("  " + name + "\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nTotal: %d packages\n", set.Len()))
	return sb.String()
}
