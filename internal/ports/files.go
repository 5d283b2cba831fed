package ports

import "luapm/internal/types"

// ManifestPort loads the user-edited project manifest.
type ManifestPort interface {
	Load(path string) (types.Manifest, error)
}

// LockfileStorePort reads and persists lockfiles. Write must be atomic:
// a concurrent reader never observes a partially written lockfile.
type LockfileStorePort interface {
	Read(path string) (types.Lockfile, error)
	Write(path string, data []byte) error
}

// FileLockPort grants an exclusive cross-process advisory lock. The
// returned release function must be called when the critical section
// ends.
type FileLockPort interface {
	Acquire(path string) (func() error, error)
}
