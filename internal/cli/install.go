package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"luapm/internal/app"
	"luapm/internal/core"
)

type installOptions struct {
	Lockfile     string
	RegistryURL  string
	RegistryFile string
	Target       string
	NoDev        bool
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install locked packages into the target tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Lockfile, "lockfile", app.DefaultLockfilePath, "Lockfile path")
	cmd.Flags().StringVar(&opts.RegistryURL, "registry", "", "Registry base URL")
	cmd.Flags().StringVar(&opts.RegistryFile, "registry-file", "", "Local registry snapshot file")
	cmd.Flags().StringVar(&opts.Target, "target", core.DefaultInstallRoot, "Install root directory")
	cmd.Flags().BoolVar(&opts.NoDev, "no-dev", false, "Skip packages needed only by dev dependencies")

	_ = viper.BindPFlag("lockfile", cmd.Flags().Lookup("lockfile"))
	_ = viper.BindPFlag("registry", cmd.Flags().Lookup("registry"))
	_ = viper.BindPFlag("registry_file", cmd.Flags().Lookup("registry-file"))
	_ = viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("no_dev", cmd.Flags().Lookup("no-dev"))

	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, opts installOptions) error {
	service := newAppService()
	result, err := service.Install(ctx, app.InstallRequest{
		LockfilePath: resolveString(cmd, opts.Lockfile, "lockfile", "lockfile"),
		RegistryURL:  resolveString(cmd, opts.RegistryURL, "registry", "registry"),
		RegistryFile: resolveString(cmd, opts.RegistryFile, "registry_file", "registry-file"),
		InstallRoot:  resolveString(cmd, opts.Target, "target", "target"),
		NoDev:        resolveBool(cmd, opts.NoDev, "no_dev", "no-dev"),
	})
	if err != nil {
		return err
	}
	parts := []string{fmt.Sprintf("%d installed", result.Installed)}
	if result.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d already present", result.Skipped))
	}
	fmt.Printf("install into %s: %s\n", result.InstallRoot, strings.Join(parts, ", "))
	return nil
}
