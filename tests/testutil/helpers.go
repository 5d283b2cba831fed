// Package testutil provides shared test helpers used across
// integration, e2e, and unit test packages.
package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"luapm/internal/core"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// RockArchive builds a gzip-compressed tarball from the given files and
// returns the bytes plus the lockfile-format checksum.
func RockArchive(t *testing.T, files map[string]string) ([]byte, string) {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		content := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes(), core.ArchiveChecksum(buf.Bytes())
}

// SnapshotPackage describes one published version for
// WriteRegistrySnapshot.
type SnapshotPackage struct {
	Name         string
	Version      string
	Dependencies map[string]string
	Files        map[string]string
}

// WriteRegistrySnapshot materializes a registry snapshot file with
// archives under dir and returns the snapshot path plus each package's
// checksum keyed by "name-version".
func WriteRegistrySnapshot(t *testing.T, dir string, packages []SnapshotPackage) (string, map[string]string) {
	t.Helper()
	archiveDir := filepath.Join(dir, "archives")
	require.NoError(t, os.MkdirAll(archiveDir, 0o755))

	checksums := map[string]string{}
	var b strings.Builder
	b.WriteString("packages:\n")
	byName := map[string][]SnapshotPackage{}
	var names []string
	for _, pkg := range packages {
		if _, seen := byName[pkg.Name]; !seen {
			names = append(names, pkg.Name)
		}
		byName[pkg.Name] = append(byName[pkg.Name], pkg)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s:\n", name)
		for _, pkg := range byName[name] {
			key := pkg.Name + "-" + pkg.Version
			archive, checksum := RockArchive(t, pkg.Files)
			require.NoError(t, os.WriteFile(filepath.Join(archiveDir, key+".tar.gz"), archive, 0o644))
			checksums[key] = checksum

			fmt.Fprintf(&b, "    - version: %s\n", pkg.Version)
			fmt.Fprintf(&b, "      source: registry.example/%s\n", pkg.Name)
			fmt.Fprintf(&b, "      checksum: %s\n", checksum)
			if len(pkg.Dependencies) > 0 {
				b.WriteString("      dependencies:\n")
				depNames := make([]string, 0, len(pkg.Dependencies))
				for dep := range pkg.Dependencies {
					depNames = append(depNames, dep)
				}
				sort.Strings(depNames)
				for _, dep := range depNames {
					fmt.Fprintf(&b, "        %s: %q\n", dep, pkg.Dependencies[dep])
				}
			}
			fmt.Fprintf(&b, "      archive: archives/%s.tar.gz\n", key)
		}
	}

	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path, checksums
}

// WriteManifest writes a luapm.yaml into dir and returns its path.
func WriteManifest(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, "luapm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
