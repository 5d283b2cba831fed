package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"luapm/internal/core"
	"luapm/internal/types"
)

func TestLockfileFileWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luapm-lock.yaml")
	lockfile := types.Lockfile{
		SchemaVersion: types.LockfileSchemaVersion,
		GeneratedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Packages: []types.ResolvedPackage{{
			Name:     "luafmt",
			Version:  types.Version{Major: 1, Minor: 4},
			Source:   "registry.example/luafmt",
			Checksum: core.ArchiveChecksum([]byte("luafmt")),
		}},
	}
	encoded, err := core.EncodeLockfile(lockfile)
	require.NoError(t, err)

	adapter := NewLockfileFileAdapter()
	require.NoError(t, adapter.Write(path, encoded))

	read, err := adapter.Read(path)
	require.NoError(t, err)
	require.Equal(t, lockfile.Packages, read.Packages)

	// No temp files stay behind after the rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLockfileFileWriteReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luapm-lock.yaml")
	adapter := NewLockfileFileAdapter()

	first, err := core.EncodeLockfile(types.Lockfile{
		SchemaVersion: types.LockfileSchemaVersion,
		GeneratedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, adapter.Write(path, first))

	second, err := core.EncodeLockfile(types.Lockfile{
		SchemaVersion: types.LockfileSchemaVersion,
		GeneratedAt:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, adapter.Write(path, second))

	read, err := adapter.Read(path)
	require.NoError(t, err)
	require.True(t, read.GeneratedAt.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLockfileFileReadMissingFile(t *testing.T) {
	adapter := NewLockfileFileAdapter()
	_, err := adapter.Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, core.ErrorMessage(err), "luapm lock")
}

func TestFlockAdapterExcludesSecondAcquirer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luapm-lock.yaml.lock")
	locker := NewFlockAdapter()

	release, err := locker.Acquire(path)
	require.NoError(t, err)

	_, err = locker.Acquire(path)
	require.Error(t, err)

	require.NoError(t, release())
	release, err = locker.Acquire(path)
	require.NoError(t, err)
	require.NoError(t, release())
}
