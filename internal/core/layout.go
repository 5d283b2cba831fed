package core

import (
	"fmt"
	"path/filepath"

	"luapm/internal/types"
)

// DefaultInstallRoot is where packages materialize relative to the
// project root.
const DefaultInstallRoot = "lua_modules"

// PackageDir is the directory a package's files extract into.
func PackageDir(installRoot string, name string) string {
	return filepath.Join(installRoot, name)
}

// ArchiveCachePath is where the installer keeps the fetched archive so
// the verifier can recompute its digest later.
func ArchiveCachePath(installRoot string, name string, version types.Version) string {
	return filepath.Join(installRoot, ".cache", fmt.Sprintf("%s-%s.tar.gz", name, version))
}
