package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"luapm/internal/core"
	"luapm/internal/shared"
	"luapm/internal/types"
)

const defaultRegistryTimeout = 30 * time.Second

// registryManifest is the JSON document a registry serves per package:
// every published version with source, publication time, declared
// checksum, and declared dependencies.
type registryManifest struct {
	Versions []registryManifestVersion `json:"versions"`
}

type registryManifestVersion struct {
	Version      string            `json:"version"`
	Source       string            `json:"source"`
	PublishedAt  time.Time         `json:"published_at"`
	Checksum     string            `json:"checksum"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// RegistryHTTPAdapter talks to a package registry over HTTP. Timeouts
// live here, on the client boundary; callers see transport failures as
// registry errors and never retry them.
type RegistryHTTPAdapter struct {
	BaseURL string
	Client  *http.Client

	mu    sync.Mutex
	cache map[string]registryManifest
}

func NewRegistryHTTPAdapter(baseURL string, timeout time.Duration) *RegistryHTTPAdapter {
	if timeout <= 0 {
		timeout = defaultRegistryTimeout
	}
	return &RegistryHTTPAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		cache:   map[string]registryManifest{},
	}
}

func (a *RegistryHTTPAdapter) ListVersions(ctx context.Context, name string) ([]types.RegistryCandidate, error) {
	manifest, err := a.manifestFor(ctx, name)
	if err != nil {
		return nil, err
	}
	var candidates []types.RegistryCandidate
	for _, entry := range manifest.Versions {
		version, parseErr := core.ParseRockVersion(entry.Version)
		if parseErr != nil {
			// Listings may carry versions published under older naming
			// schemes; they are not selectable.
			continue
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

func (a *RegistryHTTPAdapter) FetchDependencies(ctx context.Context, name string, version types.Version) (map[string]string, error) {
	entry, err := a.findVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	deps := map[string]string{}
	for dep, constraint := range entry.Dependencies {
		deps[shared.NormalizeRockName(dep)] = constraint
	}
	return deps, nil
}

func (a *RegistryHTTPAdapter) FetchArchive(ctx context.Context, name string, version types.Version) ([]byte, string, error) {
	entry, err := a.findVersion(ctx, name, version)
	if err != nil {
		return nil, "", err
	}
	url := fmt.Sprintf("%s/archives/%s-%s.tar.gz", a.BaseURL, shared.NormalizeRockName(name), version)
	body, err := a.get(ctx, url)
	if err != nil {
		return nil, "", err
	}
	return body, entry.Checksum, nil
}

func (a *RegistryHTTPAdapter) findVersion(ctx context.Context, name string, version types.Version) (registryManifestVersion, error) {
	manifest, err := a.manifestFor(ctx, name)
	if err != nil {
		return registryManifestVersion{}, err
	}
	for _, entry := range manifest.Versions {
		parsed, parseErr := core.ParseRockVersion(entry.Version)
		if parseErr != nil {
			continue
		}
		if parsed.Equal(version) {
			return entry, nil
		}
	}
	return registryManifestVersion{}, core.NewNotFoundError(
		fmt.Sprintf("registry has no entry for %s %s", name, version))
}

func (a *RegistryHTTPAdapter) manifestFor(ctx context.Context, name string) (registryManifest, error) {
	normalized := shared.NormalizeRockName(name)
	a.mu.Lock()
	cached, ok := a.cache[normalized]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/packages/%s", a.BaseURL, normalized)
	body, err := a.get(ctx, url)
	if err != nil {
		return registryManifest{}, err
	}
	var manifest registryManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return registryManifest{}, core.NewRegistryError(
			fmt.Sprintf("malformed registry response for %s", name), err)
	}

	a.mu.Lock()
	a.cache[normalized] = manifest
	a.mu.Unlock()
	return manifest, nil
}

func (a *RegistryHTTPAdapter) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.NewRegistryError("failed to build registry request", err)
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, core.NewRegistryError(fmt.Sprintf("request to %s failed", url), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, core.NewNotFoundError(fmt.Sprintf("registry returned 404 for %s", url))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewRegistryError("unexpected registry response", shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewRegistryError(fmt.Sprintf("failed to read registry response from %s", url), err)
	}
	return body, nil
}
