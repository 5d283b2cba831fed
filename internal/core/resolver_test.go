package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"luapm/internal/types"
)

// fakeRegistry serves canned listings and dependency declarations.
type fakeRegistry struct {
	listings map[string][]types.RegistryCandidate
	deps     map[string]map[string]string
}

func (f *fakeRegistry) ListVersions(_ context.Context, name string) ([]types.RegistryCandidate, error) {
	return f.listings[name], nil
}

func (f *fakeRegistry) FetchDependencies(_ context.Context, name string, version types.Version) (map[string]string, error) {
	return f.deps[fmt.Sprintf("%s %s", name, version)], nil
}

func (f *fakeRegistry) FetchArchive(_ context.Context, name string, version types.Version) ([]byte, string, error) {
	return nil, "", NewNotFoundError(fmt.Sprintf("no archive for %s %s", name, version))
}

func candidate(major, minor, patch int) types.RegistryCandidate {
	v := types.Version{Major: major, Minor: minor, Patch: patch}
	return types.RegistryCandidate{
		Version:     v,
		Source:      "registry.example/" + v.String(),
		PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Checksum:    "sha256:" + fmt.Sprintf("%064d", major*10000+minor*100+patch),
	}
}

func manifestWith(deps map[string]string, devDeps map[string]string) types.Manifest {
	return types.Manifest{
		Name:            "sample-app",
		Version:         "0.1.0",
		Dependencies:    deps,
		DevDependencies: devDeps,
	}
}

func TestResolvePicksHighestSatisfyingVersions(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"luafmt": {candidate(1, 0, 0), candidate(1, 2, 0), candidate(1, 4, 0), candidate(2, 0, 0)},
			"luason": {candidate(0, 9, 0), candidate(1, 1, 0)},
		},
		deps: map[string]map[string]string{
			"luafmt 1.4.0": {"luason": ">= 1.0"},
		},
	}
	resolver := NewResolverCore(registry)

	graph, err := resolver.Resolve(context.Background(), manifestWith(map[string]string{"luafmt": "~> 1"}, nil), true)
	require.NoError(t, err)

	require.Equal(t, []string{"luafmt", "luason"}, graph.Names())
	fmtNode, ok := graph.Node("luafmt")
	require.True(t, ok)
	require.Equal(t, types.Version{Major: 1, Minor: 4}, fmtNode.Selected)
	sonNode, ok := graph.Node("luason")
	require.True(t, ok)
	require.Equal(t, types.Version{Major: 1, Minor: 1}, sonNode.Selected)
}

func TestResolveConflictNamesBothDependents(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"app-a": {candidate(1, 0, 0)},
			"app-b": {candidate(1, 0, 0)},
			"libz":  {candidate(1, 0, 0), candidate(2, 0, 0), candidate(3, 0, 0)},
		},
		deps: map[string]map[string]string{
			"app-a 1.0.0": {"libz": "~> 1.0"},
			"app-b 1.0.0": {"libz": ">= 2.0"},
		},
	}
	resolver := NewResolverCore(registry)

	_, err := resolver.Resolve(context.Background(),
		manifestWith(map[string]string{"app-a": "1.0.0", "app-b": "1.0.0"}, nil), true)
	require.Error(t, err)
	require.True(t, IsConflictError(err))

	message := ErrorMessage(err)
	require.Contains(t, message, "libz")
	require.Contains(t, message, "app-a 1.0.0")
	require.Contains(t, message, "app-b 1.0.0")
}

func TestResolveUnknownPackageFailsFast(t *testing.T) {
	registry := &fakeRegistry{listings: map[string][]types.RegistryCandidate{}}
	resolver := NewResolverCore(registry)

	_, err := resolver.Resolve(context.Background(), manifestWith(map[string]string{"ghost": "*"}, nil), true)
	require.Error(t, err)
	require.True(t, IsNotFoundError(err))
	require.Contains(t, ErrorMessage(err), "ghost")
	require.Contains(t, ErrorMessage(err), "manifest")
}

func TestResolveNoSatisfyingVersion(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"luafmt": {candidate(1, 0, 0), candidate(1, 2, 0)},
		},
	}
	resolver := NewResolverCore(registry)

	_, err := resolver.Resolve(context.Background(), manifestWith(map[string]string{"luafmt": ">= 3.0"}, nil), true)
	require.Error(t, err)
	require.True(t, IsNotFoundError(err))
	require.Contains(t, ErrorMessage(err), ">= 3.0.0")
}

func TestResolveNarrowingTriggersReselection(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"first":  {candidate(1, 0, 0)},
			"second": {candidate(1, 0, 0)},
			"shared": {candidate(1, 5, 0), candidate(2, 0, 0)},
		},
		deps: map[string]map[string]string{
			"first 1.0.0":  {"shared": ">= 1.0"},
			"second 1.0.0": {"shared": "< 2.0"},
		},
	}
	resolver := NewResolverCore(registry)

	graph, err := resolver.Resolve(context.Background(),
		manifestWith(map[string]string{"first": "1.0.0", "second": "1.0.0"}, nil), true)
	require.NoError(t, err)

	shared, ok := graph.Node("shared")
	require.True(t, ok)
	require.Equal(t, types.Version{Major: 1, Minor: 5}, shared.Selected)
	require.Len(t, shared.Dependents, 2)
}

func TestResolvePrunesOrphansOfSupersededSelections(t *testing.T) {
	// shared 2.0.0 drags in heavy; the narrowed selection 1.5.0 does
	// not, so heavy must drop out of the final graph.
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"first":  {candidate(1, 0, 0)},
			"second": {candidate(1, 0, 0)},
			"shared": {candidate(1, 5, 0), candidate(2, 0, 0)},
			"heavy":  {candidate(1, 0, 0)},
		},
		deps: map[string]map[string]string{
			"first 1.0.0":  {"shared": ">= 1.0"},
			"second 1.0.0": {"shared": "< 2.0"},
			"shared 2.0.0": {"heavy": "*"},
		},
	}
	resolver := NewResolverCore(registry)

	graph, err := resolver.Resolve(context.Background(),
		manifestWith(map[string]string{"first": "1.0.0", "second": "1.0.0"}, nil), true)
	require.NoError(t, err)

	require.Equal(t, []string{"first", "second", "shared"}, graph.Names())
	_, ok := graph.Node("heavy")
	require.False(t, ok)
}

func TestResolveDevDependenciesMarkedDevOnly(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"runtime-dep": {candidate(1, 0, 0)},
			"test-dep":    {candidate(2, 0, 0)},
		},
	}
	resolver := NewResolverCore(registry)
	manifest := manifestWith(
		map[string]string{"runtime-dep": "*"},
		map[string]string{"test-dep": "*"},
	)

	graph, err := resolver.Resolve(context.Background(), manifest, true)
	require.NoError(t, err)
	lockfile, err := BuildLockfile(graph, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	byName := map[string]types.ResolvedPackage{}
	for _, pkg := range lockfile.Packages {
		byName[pkg.Name] = pkg
	}
	require.False(t, byName["runtime-dep"].DevOnly)
	require.True(t, byName["test-dep"].DevOnly)

	// Excluding dev dependencies keeps them out of the graph entirely.
	graph, err = resolver.Resolve(context.Background(), manifest, false)
	require.NoError(t, err)
	require.Equal(t, []string{"runtime-dep"}, graph.Names())
}

func TestResolveDeterministicAcrossRuns(t *testing.T) {
	registry := &fakeRegistry{
		listings: map[string][]types.RegistryCandidate{
			"luafmt": {candidate(1, 0, 0), candidate(1, 4, 0)},
			"luason": {candidate(1, 1, 0)},
			"luaxml": {candidate(0, 3, 0)},
		},
		deps: map[string]map[string]string{
			"luafmt 1.4.0": {"luason": ">= 1.0", "luaxml": "*"},
		},
	}
	manifest := manifestWith(map[string]string{"luafmt": "*"}, map[string]string{"luaxml": "*"})
	generatedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var first []byte
	for run := 0; run < 5; run++ {
		resolver := NewResolverCore(registry)
		resolver.Concurrency = 1 + run%3
		graph, err := resolver.Resolve(context.Background(), manifest, true)
		require.NoError(t, err)
		lockfile, err := BuildLockfile(graph, generatedAt)
		require.NoError(t, err)
		encoded, err := EncodeLockfile(lockfile)
		require.NoError(t, err)
		if first == nil {
			first = encoded
			continue
		}
		if diff := cmp.Diff(string(first), string(encoded)); diff != "" {
			t.Fatalf("run %d produced different lockfile bytes (-first +got):\n%s", run, diff)
		}
	}
}
