//go:build unix

package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// FlockAdapter serialises mutating commands across processes with an
// advisory lock on a sidecar file.
type FlockAdapter struct{}

func NewFlockAdapter() *FlockAdapter {
	return &FlockAdapter{}
}

func (l *FlockAdapter) Acquire(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create lock directory").
			WithCause(err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open lock file").
			WithCause(err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("another process holds the lock, retry once it finishes").
				WithCause(err)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to acquire file lock").
			WithCause(err)
	}
	release := func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}
	return release, nil
}
