package app

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"luapm/internal/adapters"
	"luapm/internal/ports"
)

type Service struct {
	Manifest  ports.ManifestPort
	LockStore ports.LockfileStorePort
	Locker    ports.FileLockPort
	// Registry overrides the per-request registry selection when set,
	// used by tests to inject fakes.
	Registry ports.RegistryPort
	Feed     ports.AdvisoryFeedPort
	Clock    func() time.Time
}

func NewService() Service {
	return Service{
		Manifest:  adapters.NewManifestFileAdapter(),
		LockStore: adapters.NewLockfileFileAdapter(),
		Locker:    adapters.NewFlockAdapter(),
		Clock:     time.Now,
	}
}

// registryFor picks the registry backend for a request. A local
// snapshot file wins over an HTTP endpoint so offline runs stay
// offline.
func (s Service) registryFor(registryFile, registryURL string) (ports.RegistryPort, error) {
	if s.Registry != nil {
		return s.Registry, nil
	}
	if file := strings.TrimSpace(registryFile); file != "" {
		return adapters.NewRegistryFileAdapter(file), nil
	}
	if url := strings.TrimSpace(registryURL); url != "" {
		return adapters.NewRegistryHTTPAdapter(url, 30*time.Second), nil
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("a registry url or registry snapshot file is required")
}

func (s Service) feedFor(feedFile string) (ports.AdvisoryFeedPort, error) {
	if s.Feed != nil {
		return s.Feed, nil
	}
	if file := strings.TrimSpace(feedFile); file != "" {
		return adapters.NewAdvisoryFileAdapter(file), nil
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("an advisory feed file is required")
}
