package ports

import (
	"context"

	"luapm/internal/types"
)

// RegistryPort is the capability the resolver and installer consume to
// talk to a package registry. Implementations own transport, retries,
// and timeouts; transport failures must surface as registry errors,
// distinct from not-found and conflict conditions.
type RegistryPort interface {
	// ListVersions returns every published version of the package.
	ListVersions(ctx context.Context, name string) ([]types.RegistryCandidate, error)

	// FetchDependencies returns the raw constraint strings a given
	// package version declares for its direct dependencies.
	FetchDependencies(ctx context.Context, name string, version types.Version) (map[string]string, error)

	// FetchArchive returns the package archive bytes and the checksum
	// the registry declares for them.
	FetchArchive(ctx context.Context, name string, version types.Version) ([]byte, string, error)
}
