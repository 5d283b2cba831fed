package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"luapm/internal/core"
	"luapm/internal/shared"
	"luapm/internal/types"
)

// registryFileDoc is the YAML layout of a registry snapshot file.
type registryFileDoc struct {
	Packages map[string][]registryFileVersion `yaml:"packages"`
}

type registryFileVersion struct {
	Version      string            `yaml:"version"`
	Source       string            `yaml:"source"`
	PublishedAt  time.Time         `yaml:"published_at,omitempty"`
	Checksum     string            `yaml:"checksum"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
	// Archive is the archive path relative to the snapshot file.
	Archive string `yaml:"archive,omitempty"`
}

// RegistryFileAdapter serves registry queries from a local YAML
// snapshot. It backs offline resolution and every test that needs a
// registry without a network.
type RegistryFileAdapter struct {
	Path   string
	cached registryFileDoc
	loaded bool
}

func NewRegistryFileAdapter(path string) *RegistryFileAdapter {
	return &RegistryFileAdapter{Path: path}
}

func (a *RegistryFileAdapter) ListVersions(_ context.Context, name string) ([]types.RegistryCandidate, error) {
	doc, err := a.load()
	if err != nil {
		return nil, err
	}
	var candidates []types.RegistryCandidate
	for _, entry := range doc.Packages[shared.NormalizeRockName(name)] {
		version, err := core.ParseRockVersion(entry.Version)
		if err != nil {
			return nil, core.NewParseError(
				fmt.Sprintf("registry snapshot lists invalid version %q for %s", entry.Version, name), err)
		}
		candidates = append(candidates, types.RegistryCandidate{
			Version:     version,
			Source:      entry.Source,
			PublishedAt: entry.PublishedAt,
			Checksum:    entry.Checksum,
		})
	}
	return candidates, nil
}

func (a *RegistryFileAdapter) FetchDependencies(_ context.Context, name string, version types.Version) (map[string]string, error) {
	entry, err := a.find(name, version)
	if err != nil {
		return nil, err
	}
	deps := map[string]string{}
	for dep, constraint := range entry.Dependencies {
		deps[shared.NormalizeRockName(dep)] = constraint
	}
	return deps, nil
}

func (a *RegistryFileAdapter) FetchArchive(_ context.Context, name string, version types.Version) ([]byte, string, error) {
	entry, err := a.find(name, version)
	if err != nil {
		return nil, "", err
	}
	if entry.Archive == "" {
		return nil, "", core.NewNotFoundError(
			fmt.Sprintf("registry snapshot records no archive for %s %s", name, version))
	}
	path := entry.Archive
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(a.Path), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", core.NewRegistryError(
			fmt.Sprintf("failed to read archive for %s %s", name, version), err)
	}
	return data, entry.Checksum, nil
}

func (a *RegistryFileAdapter) find(name string, version types.Version) (registryFileVersion, error) {
	doc, err := a.load()
	if err != nil {
		return registryFileVersion{}, err
	}
	for _, entry := range doc.Packages[shared.NormalizeRockName(name)] {
		parsed, err := core.ParseRockVersion(entry.Version)
		if err != nil {
			continue
		}
		if parsed.Equal(version) {
			return entry, nil
		}
	}
	return registryFileVersion{}, core.NewNotFoundError(
		fmt.Sprintf("registry snapshot has no entry for %s %s", name, version))
}

func (a *RegistryFileAdapter) load() (registryFileDoc, error) {
	if a.loaded {
		return a.cached, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return registryFileDoc{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("registry snapshot file not found").
			WithCause(err)
	}
	var doc registryFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return registryFileDoc{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse registry snapshot yaml").
			WithCause(err)
	}
	a.cached = doc
	a.loaded = true
	return doc, nil
}
