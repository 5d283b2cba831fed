package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"luapm/internal/core"
	"luapm/internal/shared"
	"luapm/internal/types"
)

// advisoryFileDoc is the YAML layout of a vulnerability feed file.
type advisoryFileDoc struct {
	Advisories []advisoryFileEntry `yaml:"advisories"`
}

type advisoryFileEntry struct {
	ID       string `yaml:"id"`
	Package  string `yaml:"package"`
	Severity string `yaml:"severity"`
	Title    string `yaml:"title,omitempty"`
	// Affected is a constraint over affected versions; empty means
	// every version.
	Affected string `yaml:"affected,omitempty"`
}

// AdvisoryFileAdapter serves advisory lookups from a local YAML feed.
type AdvisoryFileAdapter struct {
	Path   string
	cached advisoryFileDoc
	loaded bool
}

func NewAdvisoryFileAdapter(path string) *AdvisoryFileAdapter {
	return &AdvisoryFileAdapter{Path: path}
}

func (a *AdvisoryFileAdapter) Lookup(_ context.Context, name string, version types.Version) ([]types.Advisory, error) {
	doc, err := a.load()
	if err != nil {
		return nil, err
	}
	normalized := shared.NormalizeRockName(name)
	var advisories []types.Advisory
	for _, entry := range doc.Advisories {
		if shared.NormalizeRockName(entry.Package) != normalized {
			continue
		}
		affected, err := core.ParseConstraint(entry.Affected)
		if err != nil {
			return nil, core.NewParseError(
				fmt.Sprintf("advisory %s has invalid affected constraint %q", entry.ID, entry.Affected), err)
		}
		if !core.Satisfies(version, affected) {
			continue
		}
		advisories = append(advisories, types.Advisory{
			ID:       entry.ID,
			Severity: types.Severity(shared.NormalizeRockName(entry.Severity)),
			Title:    entry.Title,
		})
	}
	return advisories, nil
}

func (a *AdvisoryFileAdapter) load() (advisoryFileDoc, error) {
	if a.loaded {
		return a.cached, nil
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return advisoryFileDoc{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("advisory feed file not found").
			WithCause(err)
	}
	var doc advisoryFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return advisoryFileDoc{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse advisory feed yaml").
			WithCause(err)
	}
	a.cached = doc
	a.loaded = true
	return doc, nil
}
