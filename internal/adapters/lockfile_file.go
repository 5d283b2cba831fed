package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"luapm/internal/core"
	"luapm/internal/types"
)

// LockfileFileAdapter reads and persists the lockfile (luapm-lock.yaml).
// Writes go through a temporary file renamed into place, so a reader
// never observes a partially written lockfile.
type LockfileFileAdapter struct{}

func NewLockfileFileAdapter() LockfileFileAdapter {
	return LockfileFileAdapter{}
}

func (a LockfileFileAdapter) Read(path string) (types.Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Lockfile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("lockfile not found; run luapm lock first").
			WithCause(err)
	}
	return core.DecodeLockfile(data)
}

func (a LockfileFileAdapter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create lockfile directory").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(dir, ".luapm-lock-*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temporary lockfile").
			WithCause(err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write temporary lockfile").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close temporary lockfile").
			WithCause(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set lockfile permissions").
			WithCause(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move lockfile into place").
			WithCause(err)
	}
	return nil
}
