package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		shared   PackageSet
		machine  PackageSet
		expected PackageSet
	}{
		{
			name:    "duplicates collapse to first occurrence",
			shared:  PackageSet{Taps: []string{"a", "a"}},
			machine: PackageSet{Taps: []string{"a", "b"}},
			expected: PackageSet{
				Taps:     []string{"a", "b"},
				Formulae: []string{},
				Casks:    []string{},
			},
		},
		{
			name:   "shared entries come first",
			shared: PackageSet{Formulae: []string{"coreutils", "git"}, Casks: []string{"raycast"}},
			machine: PackageSet{
				Formulae: []string{"go", "git"},
				Casks:    []string{"slack", "raycast", "loom"},
			},
			expected: PackageSet{
				Taps:     []string{},
				Formulae: []string{"coreutils", "git", "go"},
				Casks:    []string{"raycast", "slack", "loom"},
			},
		},
		{
			name:    "empty shared",
			machine: PackageSet{Taps: []string{"homebrew/bundle"}, Casks: []string{"spotify"}},
			expected: PackageSet{
				Taps:     []string{"homebrew/bundle"},
				Formulae: []string{},
				Casks:    []string{"spotify"},
			},
		},
		{
			name:    "blank names are dropped",
			shared:  PackageSet{Formulae: []string{" ", "jq"}},
			machine: PackageSet{Formulae: []string{"", " jq "}},
			expected: PackageSet{
				Taps:     []string{},
				Formulae: []string{"jq"},
				Casks:    []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Merge(tt.shared, tt.machine))
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	shared := PackageSet{Taps: []string{"a", "b"}, Formulae: []string{"x"}}
	machine := PackageSet{Taps: []string{"b", "c"}, Casks: []string{"y", "y"}}

	once := Merge(shared, machine)
	twice := Merge(once, once)
	assert.Equal(t, once, twice)
}

func TestValidateName(t *testing.T) {
	assert.ErrorIs(t, ValidateName(""), ErrMissingProfile)
	assert.ErrorIs(t, ValidateName("  "), ErrMissingProfile)
	assert.ErrorIs(t, ValidateName(Shared), ErrReservedProfile)
	assert.NoError(t, ValidateName("work"))
}

func TestSelect(t *testing.T) {
	profiles := map[string]PackageSet{
		Shared:     {Formulae: []string{"coreutils"}},
		"personal": {Casks: []string{"adobe-creative-cloud"}},
		"work":     {Casks: []string{"loom", "slack"}},
	}

	t.Run("merges shared baseline", func(t *testing.T) {
		set, err := Select(profiles, "work")
		require.NoError(t, err)
		assert.Equal(t, []string{"coreutils"}, set.Formulae)
		assert.Equal(t, []string{"loom", "slack"}, set.Casks)
	})

	t.Run("unknown machine lists alternatives", func(t *testing.T) {
		_, err := Select(profiles, "laptop")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownProfile))
		assert.Contains(t, err.Error(), "personal, work")
	})

	t.Run("shared cannot be selected", func(t *testing.T) {
		_, err := Select(profiles, Shared)
		assert.ErrorIs(t, err, ErrReservedProfile)
	})

	t.Run("shared profile is optional", func(t *testing.T) {
		set, err := Select(map[string]PackageSet{"solo": {Taps: []string{"x/y"}}}, "solo")
		require.NoError(t, err)
		assert.Equal(t, []string{"x/y"}, set.Taps)
	})

	t.Run("no machines declared", func(t *testing.T) {
		_, err := Select(nil, "work")
		assert.ErrorIs(t, err, ErrUnknownProfile)
	})
}

func TestNamesExcludesShared(t *testing.T) {
	names := Names(map[string]PackageSet{Shared: {}, "b": {}, "a": {}})
	assert.Equal(t, []string{"a", "b"}, names)
}
