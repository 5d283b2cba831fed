package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"luapm/internal/types"
)

// ParseVersion parses a standalone version string. A version must spell
// out at least major and minor; patch defaults to 0 when exactly two
// components are given. Each component must be a non-negative integer.
func ParseVersion(text string) (types.Version, error) {
	components, err := parseComponents(text)
	if err != nil {
		return types.Version{}, err
	}
	if len(components) < 2 {
		return types.Version{}, NewParseError(
			fmt.Sprintf("invalid version %q: at least major and minor components are required", text), nil)
	}
	return versionFromComponents(components), nil
}

// ParseRockVersion parses a LuaRocks-style version that may carry a
// "-r" rockspec revision suffix (e.g. "3.0-1"). The numeric revision is
// folded into the patch component so registry listings and manifest
// constraints share one ordering; a non-numeric revision folds to 0.
func ParseRockVersion(text string) (types.Version, error) {
	base, revision, found := strings.Cut(text, "-")
	version, err := ParseVersion(base)
	if err != nil {
		return types.Version{}, err
	}
	if found {
		if n, convErr := strconv.Atoi(revision); convErr == nil && n > 0 {
			version.Patch += n
		}
	}
	return version, nil
}

// parseComponents splits 1-3 dot-separated numeric components.
func parseComponents(text string) ([]int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, NewParseError("invalid version: empty string", nil)
	}
	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		return nil, NewParseError(
			fmt.Sprintf("invalid version %q: at most three components are allowed", text), nil)
	}
	names := []string{"major", "minor", "patch"}
	components := make([]int, 0, len(parts))
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			return nil, NewParseError(
				fmt.Sprintf("invalid version %q: %s component %q is not a non-negative integer", text, names[i], part), nil)
		}
		components = append(components, value)
	}
	return components, nil
}

func versionFromComponents(components []int) types.Version {
	v := types.Version{}
	if len(components) > 0 {
		v.Major = components[0]
	}
	if len(components) > 1 {
		v.Minor = components[1]
	}
	if len(components) > 2 {
		v.Patch = components[2]
	}
	return v
}

// CompareVersions returns -1, 0, or 1 ordering a against b
// lexicographically on (major, minor, patch).
func CompareVersions(a types.Version, b types.Version) int {
	pairs := [][2]int{{a.Major, b.Major}, {a.Minor, b.Minor}, {a.Patch, b.Patch}}
	for _, pair := range pairs {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// SortCandidates orders registry candidates for deterministic
// selection: highest version first, then most recently published, then
// lexicographic source. The input is not modified.
func SortCandidates(candidates []types.RegistryCandidate) []types.RegistryCandidate {
	ordered := append([]types.RegistryCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if cmp := CompareVersions(ordered[i].Version, ordered[j].Version); cmp != 0 {
			return cmp > 0
		}
		if !ordered[i].PublishedAt.Equal(ordered[j].PublishedAt) {
			return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
		}
		return ordered[i].Source < ordered[j].Source
	})
	return ordered
}
