package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"luapm/internal/app"
)

type lockOptions struct {
	Manifest     string
	Lockfile     string
	RegistryURL  string
	RegistryFile string
	LuaVersion   string
	Concurrency  int
}

func newLockCommand() *cobra.Command {
	opts := lockOptions{}
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve the manifest and write the lockfile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLock(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", app.DefaultManifestPath, "Project manifest path")
	cmd.Flags().StringVar(&opts.Lockfile, "lockfile", app.DefaultLockfilePath, "Lockfile output path")
	cmd.Flags().StringVar(&opts.RegistryURL, "registry", "", "Registry base URL")
	cmd.Flags().StringVar(&opts.RegistryFile, "registry-file", "", "Local registry snapshot file")
	cmd.Flags().StringVar(&opts.LuaVersion, "lua-version", "", "Lua runtime version to check against the manifest")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Concurrent registry queries (0 = default)")

	_ = viper.BindPFlag("manifest", cmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("lockfile", cmd.Flags().Lookup("lockfile"))
	_ = viper.BindPFlag("registry", cmd.Flags().Lookup("registry"))
	_ = viper.BindPFlag("registry_file", cmd.Flags().Lookup("registry-file"))
	_ = viper.BindPFlag("lua_version", cmd.Flags().Lookup("lua-version"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

func runLock(ctx context.Context, cmd *cobra.Command, opts lockOptions) error {
	service := newAppService()
	result, err := service.Lock(ctx, app.LockRequest{
		ManifestPath: resolveString(cmd, opts.Manifest, "manifest", "manifest"),
		LockfilePath: resolveString(cmd, opts.Lockfile, "lockfile", "lockfile"),
		RegistryURL:  resolveString(cmd, opts.RegistryURL, "registry", "registry"),
		RegistryFile: resolveString(cmd, opts.RegistryFile, "registry_file", "registry-file"),
		LuaVersion:   resolveString(cmd, opts.LuaVersion, "lua_version", "lua-version"),
		Concurrency:  resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("locked %s: %d packages in %s\n", result.ProjectName, result.Packages, result.LockfilePath)
	return nil
}
