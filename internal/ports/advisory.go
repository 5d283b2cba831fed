package ports

import (
	"context"

	"luapm/internal/types"
)

// AdvisoryFeedPort is the vulnerability feed consumed by the auditor.
type AdvisoryFeedPort interface {
	Lookup(ctx context.Context, name string, version types.Version) ([]types.Advisory, error)
}
