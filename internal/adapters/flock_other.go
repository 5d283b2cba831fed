//go:build !unix

package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// FlockAdapter falls back to an exclusive lock file on platforms
// without flock.
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
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
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
		f.Close()
		return os.Remove(path)
	}
	return release, nil
}
