package cli

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"

	"luapm/internal/core"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"lock", "install", "verify", "audit", "list"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestLockCommandFlags(t *testing.T) {
	cmd := newLockCommand()
	for _, name := range []string{"manifest", "lockfile", "registry", "registry-file", "lua-version", "concurrency"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestInstallCommandFlags(t *testing.T) {
	cmd := newInstallCommand()
	for _, name := range []string{"lockfile", "registry", "registry-file", "target", "no-dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestVerifyCommandFlags(t *testing.T) {
	cmd := newVerifyCommand()
	for _, name := range []string{"lockfile", "target", "no-dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestAuditCommandFlags(t *testing.T) {
	cmd := newAuditCommand()
	assert.NotNil(t, cmd.Flags().Lookup("lockfile"))
	assert.NotNil(t, cmd.Flags().Lookup("feed"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"parse error", core.NewParseError("invalid version", nil), 2},
		{"conflict", core.NewConflictError("libz", "a 1.0.0", "~> 1.0", "b 1.0.0", ">= 2.0.0"), 3},
		{"not found", core.NewNotFoundError("package ghost not found"), 4},
		{"registry", core.NewRegistryError("request failed", errors.New("boom")), 5},
		{"integrity", core.NewIntegrityError("checksum mismatch"), 6},
		{"audit failed", core.NewAuditFailedError(1, 0), 7},
		{"bad argument", errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("a registry url is required"), 2},
		{"plain error", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	assert.Equal(t, "explicit", resolveString(nil, "explicit", "test_key", "test-flag"))
	assert.Equal(t, "", resolveString(nil, "", "test_key", "test-flag"))
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestResolveInt(t *testing.T) {
	assert.Equal(t, 42, resolveInt(nil, 42, "test_key", "test-flag"))
}
