// Package profile defines the declared package sets and how a machine
// profile is combined with the shared baseline.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Shared is the reserved profile applied to every machine. It cannot be
// selected as a target itself.
const Shared = "shared"

var (
	// ErrMissingProfile is returned when no machine name was given.
	ErrMissingProfile = errors.New("machine name is required")

	// ErrReservedProfile is returned when the shared profile is selected directly.
	ErrReservedProfile = fmt.Errorf("machine name not allowed: %s", Shared)

	// ErrUnknownProfile is returned when the machine is not declared.
	ErrUnknownProfile = errors.New("unknown machine")
)

// PackageSet holds the three flat package categories understood by brew bundle.
type PackageSet struct {
	Taps     []string `koanf:"taps" yaml:"taps,omitempty" toml:"taps,omitempty"`
	Formulae []string `koanf:"formulae" yaml:"formulae,omitempty" toml:"formulae,omitempty"`
	Casks    []string `koanf:"casks" yaml:"casks,omitempty" toml:"casks,omitempty"`
}

// Len returns the total number of entries across all categories.
func (s PackageSet) Len() int {
	return len(s.Taps) + len(s.Formulae) + len(s.Casks)
}

// IsEmpty reports whether the set declares nothing.
func (s PackageSet) IsEmpty() bool {
	return s.Len() == 0
}

// Merge concatenates shared then machine entries per category and removes
// duplicates, keeping the first occurrence of each name.
func Merge(shared, machine PackageSet) PackageSet {
	return PackageSet{
		Taps:     dedupe(shared.Taps, machine.Taps),
		Formulae: dedupe(shared.Formulae, machine.Formulae),
		Casks:    dedupe(shared.Casks, machine.Casks),
	}
}

// dedupe joins lists in order, dropping blanks and repeated names.
func dedupe(lists ...[]string) []string {
	size := 0
	for _, l := range lists {
		size += len(l)
	}

	seen := make(map[string]struct{}, size)
	out := make([]string, 0, size)
	for _, l := range lists {
		for _, name := range l {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// ValidateName checks a machine name selected on the command line.
func ValidateName(name string) error {
	switch strings.TrimSpace(name) {
	case "":
		return ErrMissingProfile
	case Shared:
		return ErrReservedProfile
	}
	return nil
}

// Select merges the named machine profile with the shared profile.
// The shared profile may be absent.
func Select(profiles map[string]PackageSet, name string) (PackageSet, error) {
	if err := ValidateName(name); err != nil {
		return PackageSet{}, err
	}

	machine, ok := profiles[name]
	if !ok {
		available := Names(profiles)
		if len(available) == 0 {
			return PackageSet{}, fmt.Errorf("%w %q (no machines declared)", ErrUnknownProfile, name)
		}
		return PackageSet{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownProfile, name, strings.Join(available, ", "))
	}

	return Merge(profiles[Shared], machine), nil
}

// Names returns the selectable profile names in sorted order.
func Names(profiles map[string]PackageSet) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		if name == Shared {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
