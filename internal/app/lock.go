package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"luapm/internal/core"
)

const (
	DefaultManifestPath = "luapm.yaml"
	DefaultLockfilePath = "luapm-lock.yaml"
)

func (s Service) Lock(ctx context.Context, req LockRequest) (LockResult, error) {
	manifestPath := strings.TrimSpace(req.ManifestPath)
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}
	lockfilePath := strings.TrimSpace(req.LockfilePath)
	if lockfilePath == "" {
		lockfilePath = DefaultLockfilePath
	}
	registry, err := s.registryFor(req.RegistryFile, req.RegistryURL)
	if err != nil {
		return LockResult{}, err
	}

	manifest, err := s.Manifest.Load(manifestPath)
	if err != nil {
		return LockResult{}, err
	}
	if err := core.ValidateManifest(ctx, manifest); err != nil {
		return LockResult{}, err
	}
	if err := core.CheckRuntime(manifest, req.LuaVersion); err != nil {
		return LockResult{}, err
	}

	resolver := core.NewResolverCore(registry)
	resolver.Concurrency = req.Concurrency
	graph, err := resolver.Resolve(ctx, manifest, true)
	if err != nil {
		return LockResult{}, err
	}
	lockfile, err := core.BuildLockfile(graph, s.Clock())
	if err != nil {
		return LockResult{}, err
	}
	encoded, err := core.EncodeLockfile(lockfile)
	if err != nil {
		return LockResult{}, err
	}

	release, err := s.Locker.Acquire(lockfilePath + ".lock")
	if err != nil {
		return LockResult{}, err
	}
	defer release()
	if err := s.LockStore.Write(lockfilePath, encoded); err != nil {
		return LockResult{}, err
	}

	log.Ctx(ctx).Info().
		Str("project", manifest.Name).
		Str("lockfile", lockfilePath).
		Int("packages", len(lockfile.Packages)).
		Msg("lockfile written")

	return LockResult{
		ProjectName:  manifest.Name,
		LockfilePath: lockfilePath,
		Packages:     len(lockfile.Packages),
	}, nil
}

func lockfilePathOrDefault(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	return DefaultLockfilePath
}
