package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"luapm/internal/ports"
	"luapm/internal/types"
)

const defaultRegistryConcurrency = 4

// ResolverCore turns a manifest's declared constraints into a converged
// dependency graph by breadth-first constraint propagation. Registry
// listings for queued names are prefetched concurrently; every graph
// mutation happens serially on the resolver loop, so fetch results are
// read-only messages into a single writer.
type ResolverCore struct {
	Registry ports.RegistryPort

	// Concurrency bounds simultaneous registry queries. Zero means the
	// default bound.
	Concurrency int
}

func NewResolverCore(registry ports.RegistryPort) ResolverCore {
	return ResolverCore{Registry: registry}
}

// workItem is one pending demand: dependent requires name to satisfy
// constraint.
type workItem struct {
	name       string
	constraint types.Constraint
	dependent  string
}

// listingCache holds prefetched, sorted registry listings. Guarded by a
// mutex because prefetch goroutines fill it concurrently.
type listingCache struct {
	mu       sync.Mutex
	listings map[string][]types.RegistryCandidate
}

func newListingCache() *listingCache {
	return &listingCache{listings: map[string][]types.RegistryCandidate{}}
}

func (c *listingCache) get(name string) ([]types.RegistryCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	listing, ok := c.listings[name]
	return listing, ok
}

func (c *listingCache) put(name string, listing []types.RegistryCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings[name] = listing
}

// Resolve processes the work queue in first-in-first-out order until no
// demands remain, then prunes stale edges left by superseded
// selections. Given an identical registry snapshot and manifest the
// resulting graph, and therefore the encoded lockfile, is identical
// byte for byte.
func (r ResolverCore) Resolve(ctx context.Context, manifest types.Manifest, includeDev bool) (*DependencyGraph, error) {
	if r.Registry == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires a registry port")
	}

	graph := NewDependencyGraph()
	queue, err := seedQueue(graph, manifest, includeDev)
	if err != nil {
		return nil, err
	}

	cache := newListingCache()
	for len(queue) > 0 {
		wave := queue
		queue = nil
		if err := r.prefetchListings(ctx, graph, cache, wave); err != nil {
			return nil, err
		}
		for _, item := range wave {
			followups, err := r.process(ctx, graph, cache, item)
			if err != nil {
				return nil, err
			}
			queue = append(queue, followups...)
		}
	}

	graph.Prune()
	log.Ctx(ctx).Debug().Int("packages", len(graph.Names())).Msg("resolution converged")
	return graph, nil
}

// seedQueue enqueues each manifest dependency, production first, both
// groups in name order so the queue start is deterministic.
func seedQueue(graph *DependencyGraph, manifest types.Manifest, includeDev bool) ([]workItem, error) {
	var queue []workItem
	appendGroup := func(deps map[string]string, dependent string, roots map[string]bool) error {
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			constraint, err := ParseConstraint(deps[name])
			if err != nil {
				return NewParseError(
					fmt.Sprintf("manifest dependency %s: invalid constraint %q", name, deps[name]), err)
			}
			roots[name] = true
			queue = append(queue, workItem{name: name, constraint: constraint, dependent: dependent})
		}
		return nil
	}
	if err := appendGroup(manifest.Dependencies, "manifest", graph.prodRoot); err != nil {
		return nil, err
	}
	if includeDev {
		if err := appendGroup(manifest.DevDependencies, "manifest (dev)", graph.devRoot); err != nil {
			return nil, err
		}
	}
	return queue, nil
}

// prefetchListings fetches registry listings for every not-yet-seen
// name in the wave, bounded by the concurrency limit. Items in one wave
// are independent until processed, so their queries may overlap.
func (r ResolverCore) prefetchListings(ctx context.Context, graph *DependencyGraph, cache *listingCache, wave []workItem) error {
	var pending []string
	seen := map[string]bool{}
	for _, item := range wave {
		if seen[item.name] {
			continue
		}
		seen[item.name] = true
		if _, ok := graph.Node(item.name); ok {
			continue
		}
		if _, ok := cache.get(item.name); ok {
			continue
		}
		pending = append(pending, item.name)
	}
	if len(pending) == 0 {
		return nil
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = defaultRegistryConcurrency
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for _, name := range pending {
		name := name
		group.Go(func() error {
			listing, err := r.Registry.ListVersions(groupCtx, name)
			if err != nil {
				return err
			}
			cache.put(name, SortCandidates(listing))
			return nil
		})
	}
	return group.Wait()
}

// process applies one demand to the graph and returns follow-up demands
// for newly selected versions' dependencies.
func (r ResolverCore) process(ctx context.Context, graph *DependencyGraph, cache *listingCache, item workItem) ([]workItem, error) {
	node, seen := graph.Node(item.name)
	if !seen {
		listing, _ := cache.get(item.name)
		if len(listing) == 0 {
			return nil, NewNotFoundError(
				fmt.Sprintf("package %s not found in registry (required by %s)", item.name, item.dependent))
		}
		candidate, ok := pickCandidate(listing, item.constraint)
		if !ok {
			return nil, NewNotFoundError(
				fmt.Sprintf("no version of %s satisfies %s (required by %s)",
					item.name, FormatConstraint(item.constraint), item.dependent))
		}
		node = &GraphNode{
			Name:       item.name,
			Merged:     item.constraint,
			Dependents: []types.Dependent{{Name: item.dependent, Constraint: item.constraint}},
			candidates: listing,
		}
		graph.add(node)
		return r.adoptSelection(ctx, node, candidate)
	}

	merged, ok := Intersect(node.Merged, item.constraint)
	if !ok {
		prior := conflictingDependent(node, item.constraint)
		return nil, NewConflictError(item.name,
			prior.Name, FormatConstraint(prior.Constraint),
			item.dependent, FormatConstraint(item.constraint))
	}
	node.Merged = merged
	node.Dependents = append(node.Dependents, types.Dependent{Name: item.dependent, Constraint: item.constraint})
	if Satisfies(node.Selected, merged) {
		// Existing selection still fits; the dependent was recorded for
		// diagnostics only.
		return nil, nil
	}

	candidate, ok := pickCandidate(node.candidates, merged)
	if !ok {
		return nil, NewNotFoundError(
			fmt.Sprintf("no version of %s satisfies %s (required by %s and %d other dependents)",
				item.name, FormatConstraint(merged), item.dependent, len(node.Dependents)-1))
	}
	log.Ctx(ctx).Debug().
		Str("package", item.name).
		Str("from", node.Selected.String()).
		Str("to", candidate.Version.String()).
		Msg("reselected after constraint narrowing")
	return r.adoptSelection(ctx, node, candidate)
}

// adoptSelection records the candidate on the node, fetches and parses
// the declared dependencies of that version, and returns the demands
// those declarations create. Edges of a superseded selection are simply
// replaced; packages orphaned by the swap are pruned at convergence.
func (r ResolverCore) adoptSelection(ctx context.Context, node *GraphNode, candidate types.RegistryCandidate) ([]workItem, error) {
	node.Selected = candidate.Version
	node.Source = candidate.Source
	node.Checksum = candidate.Checksum

	declared, err := r.Registry.FetchDependencies(ctx, node.Name, candidate.Version)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	dependent := fmt.Sprintf("%s %s", node.Name, candidate.Version)
	node.Dependencies = map[string]types.Constraint{}
	items := make([]workItem, 0, len(names))
	for _, name := range names {
		constraint, err := ParseConstraint(declared[name])
		if err != nil {
			return nil, NewParseError(
				fmt.Sprintf("package %s declares invalid constraint %q for %s", dependent, declared[name], name), err)
		}
		node.Dependencies[name] = constraint
		items = append(items, workItem{name: name, constraint: constraint, dependent: dependent})
	}
	return items, nil
}

// pickCandidate returns the first listing entry satisfying the
// constraint. Listings are sorted highest-version first with published
// recency and source as tie-breaks, so the first hit is the selection.
func pickCandidate(listing []types.RegistryCandidate, constraint types.Constraint) (types.RegistryCandidate, bool) {
	for _, candidate := range listing {
		if Satisfies(candidate.Version, constraint) {
			return candidate, true
		}
	}
	return types.RegistryCandidate{}, false
}

// conflictingDependent finds a recorded dependent whose constraint on
// its own excludes the incoming one, so the conflict error names the
// true pair. Falls back to the first dependent when the conflict only
// arises from the aggregate.
func conflictingDependent(node *GraphNode, incoming types.Constraint) types.Dependent {
	for _, dependent := range node.Dependents {
		if _, ok := Intersect(dependent.Constraint, incoming); !ok {
			return dependent
		}
	}
	if len(node.Dependents) > 0 {
		return node.Dependents[0]
	}
	return types.Dependent{Name: "resolution", Constraint: node.Merged}
}
