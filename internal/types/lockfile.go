package types

import "time"

// LockfileSchemaVersion is bumped on any incompatible change to the
// persisted lockfile layout.
const LockfileSchemaVersion = 2

// ResolvedPackage is one lockfile entry: a package pinned to a concrete
// version with the integrity checksum of its registry archive and the
// flat, already-solved map of its direct dependencies.
type ResolvedPackage struct {
	Name         string
	Version      Version
	Source       string
	Checksum     string
	Dependencies map[string]Version
	// DevOnly marks packages reachable only through dev dependencies;
	// installs with dev excluded skip them.
	DevOnly bool
}

// Lockfile is the persisted record of a successful resolution.
// Packages are kept in ascending name order; the codec relies on and
// preserves that ordering.
type Lockfile struct {
	SchemaVersion int
	GeneratedAt   time.Time
	Packages      []ResolvedPackage
}

// Package returns the entry for name, if present.
func (l Lockfile) Package(name string) (ResolvedPackage, bool) {
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return ResolvedPackage{}, false
}
