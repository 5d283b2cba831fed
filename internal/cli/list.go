package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"luapm/internal/app"
)

type listOptions struct {
	Lockfile string
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print locked packages and their versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Lockfile, "lockfile", app.DefaultLockfilePath, "Lockfile path")
	_ = viper.BindPFlag("lockfile", cmd.Flags().Lookup("lockfile"))

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts listOptions) error {
	service := newAppService()
	result, err := service.List(ctx, app.ListRequest{
		LockfilePath: resolveString(cmd, opts.Lockfile, "lockfile", "lockfile"),
	})
	if err != nil {
		return err
	}
	for _, pkg := range result.Lockfile.Packages {
		suffix := ""
		if pkg.DevOnly {
			suffix = " (dev)"
		}
		fmt.Printf("%s %s%s\n", pkg.Name, pkg.Version, suffix)
	}
	return nil
}
