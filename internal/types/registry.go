package types

import "time"

// RegistryCandidate is one published version of a package as reported
// by a registry, including the source it was published to, when, and
// the declared archive checksum.
type RegistryCandidate struct {
	Version     Version
	Source      string
	PublishedAt time.Time
	Checksum    string
}
