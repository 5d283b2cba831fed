package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"luapm/internal/types"
)

// ValidateManifest checks the structural invariants of a manifest
// before resolution touches the registry.
func ValidateManifest(ctx context.Context, manifest types.Manifest) error {
	assert.NotEmpty(ctx, manifest.Name, "name must be set")
	assert.NotEmpty(ctx, manifest.Version, "version must be set")

	if manifest.Name == "" {
		return NewParseError("manifest field name must be set", nil)
	}
	if _, err := ParseVersion(manifest.Version); err != nil {
		return NewParseError("manifest field version is invalid", err)
	}
	if manifest.Lua != "" {
		if _, err := ParseConstraint(manifest.Lua); err != nil {
			return NewParseError("manifest field lua is not a valid constraint", err)
		}
	}
	for name := range manifest.Dependencies {
		if name == "" {
			return NewParseError("manifest dependencies contain an empty package name", nil)
		}
		if _, both := manifest.DevDependencies[name]; both {
			return NewParseError(
				fmt.Sprintf("package %s is declared in both dependencies and dev_dependencies", name), nil)
		}
	}
	for name := range manifest.DevDependencies {
		if name == "" {
			return NewParseError("manifest dev_dependencies contain an empty package name", nil)
		}
	}
	return nil
}

// CheckRuntime validates a configured Lua runtime version against the
// manifest's runtime constraint. An empty runtime version skips the
// check; runtime selection belongs to the toolchain manager.
func CheckRuntime(manifest types.Manifest, runtimeVersion string) error {
	if manifest.Lua == "" || runtimeVersion == "" {
		return nil
	}
	constraint, err := ParseConstraint(manifest.Lua)
	if err != nil {
		return NewParseError("manifest field lua is not a valid constraint", err)
	}
	version, err := ParseVersion(runtimeVersion)
	if err != nil {
		return NewParseError(fmt.Sprintf("configured lua version %q is invalid", runtimeVersion), err)
	}
	if !Satisfies(version, constraint) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("lua runtime %s does not satisfy manifest constraint %s",
				version, FormatConstraint(constraint)))
	}
	return nil
}
