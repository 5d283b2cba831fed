package core

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"luapm/internal/types"
)

// EncodeLockfile serializes a lockfile canonically: fixed field order,
// packages ascending by name, dependency keys ascending. The document
// is built as an explicit yaml node tree because Go map encoding would
// randomize key order and break byte determinism.
func EncodeLockfile(lockfile types.Lockfile) ([]byte, error) {
	packages := &yaml.Node{Kind: yaml.MappingNode}
	ordered := append([]types.ResolvedPackage(nil), lockfile.Packages...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })
	for _, pkg := range ordered {
		entry := &yaml.Node{Kind: yaml.MappingNode}
		appendScalarPair(entry, "version", pkg.Version.String())
		appendScalarPair(entry, "source", pkg.Source)
		appendScalarPair(entry, "checksum", pkg.Checksum)
		if len(pkg.Dependencies) > 0 {
			deps := &yaml.Node{Kind: yaml.MappingNode}
			names := make([]string, 0, len(pkg.Dependencies))
			for name := range pkg.Dependencies {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				appendScalarPair(deps, name, pkg.Dependencies[name].String())
			}
			entry.Content = append(entry.Content, scalarNode("dependencies"), deps)
		}
		if pkg.DevOnly {
			entry.Content = append(entry.Content, scalarNode("dev_only"), scalarNode("true"))
		}
		packages.Content = append(packages.Content, scalarNode(pkg.Name), entry)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		scalarNode("lockfile_version"), scalarNode(strconv.Itoa(lockfile.SchemaVersion)),
		scalarNode("generated_at"), quotedNode(lockfile.GeneratedAt.UTC().Format(time.RFC3339)),
		scalarNode("packages"), packages,
	)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, NewParseError("failed to encode lockfile", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, NewParseError("failed to encode lockfile", err)
	}
	return buf.Bytes(), nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func quotedNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: value}
}

func appendScalarPair(mapping *yaml.Node, key string, value string) {
	mapping.Content = append(mapping.Content, scalarNode(key), scalarNode(value))
}

// lockfileDoc mirrors the persisted lockfile layout for decoding.
type lockfileDoc struct {
	SchemaVersion int                      `yaml:"lockfile_version"`
	GeneratedAt   string                   `yaml:"generated_at"`
	Packages      map[string]lockfileEntry `yaml:"packages"`
}

type lockfileEntry struct {
	Version      string            `yaml:"version"`
	Source       string            `yaml:"source"`
	Checksum     string            `yaml:"checksum"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
	DevOnly      bool              `yaml:"dev_only,omitempty"`
}

// DecodeLockfile parses lockfile bytes, naming the offending field on
// malformed input. Decode(Encode(x)) is structurally equal to x.
func DecodeLockfile(data []byte) (types.Lockfile, error) {
	var doc lockfileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Lockfile{}, NewParseError(fmt.Sprintf("malformed lockfile: %v", err), err)
	}
	if doc.SchemaVersion != types.LockfileSchemaVersion {
		return types.Lockfile{}, NewParseError(
			fmt.Sprintf("unsupported lockfile_version %d (supported: %d)", doc.SchemaVersion, types.LockfileSchemaVersion), nil)
	}
	if doc.GeneratedAt == "" {
		return types.Lockfile{}, NewParseError("lockfile field generated_at is missing", nil)
	}
	generatedAt, err := time.Parse(time.RFC3339, doc.GeneratedAt)
	if err != nil {
		return types.Lockfile{}, NewParseError(
			fmt.Sprintf("lockfile field generated_at %q is not an RFC 3339 timestamp", doc.GeneratedAt), err)
	}

	lockfile := types.Lockfile{
		SchemaVersion: doc.SchemaVersion,
		GeneratedAt:   generatedAt.UTC(),
	}
	names := make([]string, 0, len(doc.Packages))
	for name := range doc.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := doc.Packages[name]
		version, err := ParseVersion(entry.Version)
		if err != nil {
			return types.Lockfile{}, NewParseError(
				fmt.Sprintf("lockfile field packages.%s.version is invalid", name), err)
		}
		if !ValidChecksum(entry.Checksum) {
			return types.Lockfile{}, NewParseError(
				fmt.Sprintf("lockfile field packages.%s.checksum must be a sha256: digest", name), nil)
		}
		pkg := types.ResolvedPackage{
			Name:     name,
			Version:  version,
			Source:   entry.Source,
			Checksum: entry.Checksum,
			DevOnly:  entry.DevOnly,
		}
		if len(entry.Dependencies) > 0 {
			pkg.Dependencies = map[string]types.Version{}
			for dep, raw := range entry.Dependencies {
				depVersion, err := ParseVersion(raw)
				if err != nil {
					return types.Lockfile{}, NewParseError(
						fmt.Sprintf("lockfile field packages.%s.dependencies.%s is invalid", name, dep), err)
				}
				if _, ok := doc.Packages[dep]; !ok {
					return types.Lockfile{}, NewParseError(
						fmt.Sprintf("lockfile field packages.%s.dependencies.%s names a package absent from the lockfile", name, dep), nil)
				}
				pkg.Dependencies[dep] = depVersion
			}
		}
		lockfile.Packages = append(lockfile.Packages, pkg)
	}
	return lockfile, nil
}
