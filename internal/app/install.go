package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"luapm/internal/adapters"
	"luapm/internal/core"
	"luapm/internal/policies"
	"luapm/internal/ports"
	"luapm/internal/types"
)

func (s Service) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	lockfilePath := lockfilePathOrDefault(req.LockfilePath)
	installRoot := strings.TrimSpace(req.InstallRoot)
	if installRoot == "" {
		installRoot = core.DefaultInstallRoot
	}
	registry, err := s.registryFor(req.RegistryFile, req.RegistryURL)
	if err != nil {
		return InstallResult{}, err
	}

	lockfile, err := s.LockStore.Read(lockfilePath)
	if err != nil {
		return InstallResult{}, err
	}
	if err := os.MkdirAll(installRoot, 0o755); err != nil {
		return InstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create install root").
			WithCause(err)
	}

	release, err := s.Locker.Acquire(filepath.Join(installRoot, ".luapm.lock"))
	if err != nil {
		return InstallResult{}, err
	}
	defer release()

	policy := policies.NewInstallPolicy(!req.NoDev)
	installed := 0
	skipped := 0
	for _, entry := range lockfile.Packages {
		if !policy.ShouldInstall(entry) {
			continue
		}
		fresh, err := s.installPackage(ctx, registry, installRoot, entry)
		if err != nil {
			return InstallResult{}, err
		}
		if fresh {
			installed++
		} else {
			skipped++
		}
	}

	log.Ctx(ctx).Info().
		Str("root", installRoot).
		Int("installed", installed).
		Int("skipped", skipped).
		Msg("install complete")

	return InstallResult{InstallRoot: installRoot, Installed: installed, Skipped: skipped}, nil
}

// installPackage materialises one locked package. It reports false when
// the package was already present with an intact cached archive.
func (s Service) installPackage(ctx context.Context, registry ports.RegistryPort, installRoot string, entry types.ResolvedPackage) (bool, error) {
	pkgDir := core.PackageDir(installRoot, entry.Name)
	cachePath := core.ArchiveCachePath(installRoot, entry.Name, entry.Version)

	if alreadyInstalled(pkgDir, cachePath, entry.Checksum) {
		log.Ctx(ctx).Debug().
			Str("package", entry.Name).
			Str("version", entry.Version.String()).
			Msg("already installed, skipping")
		return false, nil
	}

	archive, _, err := registry.FetchArchive(ctx, entry.Name, entry.Version)
	if err != nil {
		return false, err
	}
	digest := core.ArchiveChecksum(archive)
	if digest != entry.Checksum {
		return false, core.NewIntegrityError(fmt.Sprintf(
			"archive for %s %s does not match the lockfile, expected %s got %s",
			entry.Name, entry.Version, entry.Checksum, digest))
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return false, installError("failed to create archive cache directory", err)
	}
	if err := os.WriteFile(cachePath, archive, 0o644); err != nil {
		return false, installError("failed to cache archive", err)
	}
	if err := os.RemoveAll(pkgDir); err != nil {
		return false, installError("failed to clear package directory", err)
	}
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return false, installError("failed to create package directory", err)
	}
	if err := adapters.ExtractArchive(archive, pkgDir); err != nil {
		return false, err
	}

	log.Ctx(ctx).Debug().
		Str("package", entry.Name).
		Str("version", entry.Version.String()).
		Msg("installed")
	return true, nil
}

func alreadyInstalled(pkgDir string, cachePath string, checksum string) bool {
	info, err := os.Stat(pkgDir)
	if err != nil || !info.IsDir() {
		return false
	}
	digest, err := core.FileChecksum(cachePath)
	if err != nil {
		return false
	}
	return digest == checksum
}

func installError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}
