package policies

import (
	"luapm/internal/types"
)

// InstallPolicy decides which locked packages materialise on disk for
// a given install invocation.
type InstallPolicy struct {
	IncludeDev bool
}

func NewInstallPolicy(includeDev bool) InstallPolicy {
	return InstallPolicy{IncludeDev: includeDev}
}

// ShouldInstall reports whether the entry belongs in the install set.
// Packages reachable only through dev dependencies are skipped when
// dev installation is disabled.
func (p InstallPolicy) ShouldInstall(entry types.ResolvedPackage) bool {
	if entry.DevOnly && !p.IncludeDev {
		return false
	}
	return true
}

// Filter returns the entries that ShouldInstall accepts, preserving
// lockfile order.
func (p InstallPolicy) Filter(entries []types.ResolvedPackage) []types.ResolvedPackage {
	selected := make([]types.ResolvedPackage, 0, len(entries))
	for _, entry := range entries {
		if p.ShouldInstall(entry) {
			selected = append(selected, entry)
		}
	}
	return selected
}
