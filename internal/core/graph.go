package core

import (
	"fmt"
	"sort"
	"time"

	"luapm/internal/types"
)

// GraphNode is the resolution working state for one package name: the
// accumulated constraint, the currently selected candidate, the parsed
// dependency declarations of that selection, and every dependent that
// demanded the package.
type GraphNode struct {
	Name         string
	Merged       types.Constraint
	Selected     types.Version
	Source       string
	Checksum     string
	Dependencies map[string]types.Constraint
	Dependents   []types.Dependent

	// candidates is the sorted registry listing, kept for reselection
	// when a later constraint narrows the accumulated one.
	candidates []types.RegistryCandidate
}

// DependencyGraph is the ephemeral working set of one resolution pass.
// It is created, mutated by the resolver only, and discarded after the
// lockfile is built.
type DependencyGraph struct {
	nodes    map[string]*GraphNode
	prodRoot map[string]bool
	devRoot  map[string]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:    map[string]*GraphNode{},
		prodRoot: map[string]bool{},
		devRoot:  map[string]bool{},
	}
}

func (g *DependencyGraph) Node(name string) (*GraphNode, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

func (g *DependencyGraph) add(node *GraphNode) {
	g.nodes[node.Name] = node
}

// Names returns all package names in ascending order.
func (g *DependencyGraph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prune removes packages no longer reachable from the manifest roots
// through current selections. Reselection can leave behind packages
// that only an abandoned version depended on; their edges are stale
// once resolution converges.
func (g *DependencyGraph) Prune() {
	prodReach := g.reachableFrom(g.prodRoot)
	devReach := g.reachableFrom(g.devRoot)
	for name := range g.nodes {
		if !prodReach[name] && !devReach[name] {
			delete(g.nodes, name)
		}
	}
}

// DevOnly reports whether the package is reachable only through dev
// dependency roots.
func (g *DependencyGraph) DevOnly(name string) bool {
	prodReach := g.reachableFrom(g.prodRoot)
	return !prodReach[name]
}

func (g *DependencyGraph) reachableFrom(roots map[string]bool) map[string]bool {
	reached := map[string]bool{}
	queue := make([]string, 0, len(roots))
	for name := range roots {
		if _, ok := g.nodes[name]; ok {
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if reached[name] {
			continue
		}
		reached[name] = true
		node := g.nodes[name]
		for dep := range node.Dependencies {
			if _, ok := g.nodes[dep]; ok && !reached[dep] {
				queue = append(queue, dep)
			}
		}
	}
	return reached
}

// BuildLockfile converts a converged graph into a lockfile, validating
// both lockfile invariants: every accumulated constraint is satisfied
// by its selection, and every recorded direct dependency names a
// package present in the lockfile.
func BuildLockfile(graph *DependencyGraph, generatedAt time.Time) (types.Lockfile, error) {
	prodReach := graph.reachableFrom(graph.prodRoot)
	lockfile := types.Lockfile{
		SchemaVersion: types.LockfileSchemaVersion,
		GeneratedAt:   generatedAt.UTC().Truncate(time.Second),
	}
	for _, name := range graph.Names() {
		node := graph.nodes[name]
		if !Satisfies(node.Selected, node.Merged) {
			return types.Lockfile{}, NewConflictError(name,
				"resolution", FormatConstraint(node.Merged),
				"selection", node.Selected.String())
		}
		entry := types.ResolvedPackage{
			Name:     name,
			Version:  node.Selected,
			Source:   node.Source,
			Checksum: node.Checksum,
			DevOnly:  !prodReach[name],
		}
		if len(node.Dependencies) > 0 {
			entry.Dependencies = map[string]types.Version{}
			for dep := range node.Dependencies {
				target, ok := graph.nodes[dep]
				if !ok {
					return types.Lockfile{}, NewNotFoundError(
						fmt.Sprintf("package %s depends on %s which is absent from the resolved graph", name, dep))
				}
				entry.Dependencies[dep] = target.Selected
			}
		}
		lockfile.Packages = append(lockfile.Packages, entry)
	}
	return lockfile, nil
}
