package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"luapm/internal/types"
)

func installFixture(t *testing.T, root string, name string, version types.Version, payload []byte) string {
	t.Helper()
	dir := PackageDir(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte("return {}\n"), 0o644))

	archive := ArchiveCachePath(root, name, version)
	require.NoError(t, os.MkdirAll(filepath.Dir(archive), 0o755))
	require.NoError(t, os.WriteFile(archive, payload, 0o644))
	return ArchiveChecksum(payload)
}

func lockfileFor(packages ...types.ResolvedPackage) types.Lockfile {
	return types.Lockfile{
		SchemaVersion: types.LockfileSchemaVersion,
		GeneratedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Packages:      packages,
	}
}

func TestVerifyIntactInstall(t *testing.T) {
	root := t.TempDir()
	v := types.Version{Major: 1, Minor: 4}
	checksum := installFixture(t, root, "luafmt", v, []byte("archive-bytes"))

	report := NewVerifierCore().Verify(lockfileFor(types.ResolvedPackage{
		Name: "luafmt", Version: v, Checksum: checksum,
	}), root)

	require.True(t, report.OK())
	require.Len(t, report.Findings, 1)
	require.Equal(t, types.VerificationOK, report.Findings[0].Status)
}

func TestVerifyTamperedArchive(t *testing.T) {
	root := t.TempDir()
	v := types.Version{Major: 1, Minor: 4}
	checksum := installFixture(t, root, "luafmt", v, []byte("archive-bytes"))

	// Overwrite the cached archive after the checksum is taken.
	archive := ArchiveCachePath(root, "luafmt", v)
	require.NoError(t, os.WriteFile(archive, []byte("tampered"), 0o644))

	report := NewVerifierCore().Verify(lockfileFor(types.ResolvedPackage{
		Name: "luafmt", Version: v, Checksum: checksum,
	}), root)

	require.False(t, report.OK())
	require.Equal(t, types.VerificationTampered, report.Findings[0].Status)
	require.Contains(t, report.Findings[0].Detail, "checksum mismatch")
	require.Contains(t, report.Findings[0].Detail, checksum)
}

func TestVerifyMissingPackageDirectory(t *testing.T) {
	root := t.TempDir()
	v := types.Version{Major: 2, Minor: 0}

	report := NewVerifierCore().Verify(lockfileFor(types.ResolvedPackage{
		Name: "luason", Version: v, Checksum: ArchiveChecksum([]byte("never-installed")),
	}), root)

	require.False(t, report.OK())
	require.Equal(t, types.VerificationMissing, report.Findings[0].Status)
}

func TestVerifyMissingCachedArchive(t *testing.T) {
	root := t.TempDir()
	v := types.Version{Major: 1, Minor: 0}
	checksum := installFixture(t, root, "luafmt", v, []byte("payload"))
	require.NoError(t, os.Remove(ArchiveCachePath(root, "luafmt", v)))

	report := NewVerifierCore().Verify(lockfileFor(types.ResolvedPackage{
		Name: "luafmt", Version: v, Checksum: checksum,
	}), root)

	require.False(t, report.OK())
	require.Equal(t, types.VerificationMissing, report.Findings[0].Status)
	require.Contains(t, report.Findings[0].Detail, "archive")
}

func TestVerifyEmptyLockfileIsExplicit(t *testing.T) {
	report := NewVerifierCore().Verify(lockfileFor(), t.TempDir())
	require.True(t, report.NothingToVerify)
	require.Empty(t, report.Findings)
	require.True(t, report.OK())
	require.Contains(t, RenderVerificationReport(report), "nothing to verify")
}

func TestVerifyMixedFindings(t *testing.T) {
	root := t.TempDir()
	okVersion := types.Version{Major: 1, Minor: 0}
	okChecksum := installFixture(t, root, "good", okVersion, []byte("good-bytes"))

	report := NewVerifierCore().Verify(lockfileFor(
		types.ResolvedPackage{Name: "good", Version: okVersion, Checksum: okChecksum},
		types.ResolvedPackage{Name: "absent", Version: types.Version{Major: 3}, Checksum: okChecksum},
	), root)

	require.False(t, report.OK())
	require.Len(t, report.Findings, 2)
	require.Equal(t, types.VerificationOK, report.Findings[0].Status)
	require.Equal(t, types.VerificationMissing, report.Findings[1].Status)
}
