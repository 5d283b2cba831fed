package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"luapm/internal/app"
	"luapm/internal/core"
)

type verifyOptions struct {
	Lockfile string
	Target   string
	NoDev    bool
}

func newVerifyCommand() *cobra.Command {
	opts := verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check installed packages against the lockfile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Lockfile, "lockfile", app.DefaultLockfilePath, "Lockfile path")
	cmd.Flags().StringVar(&opts.Target, "target", core.DefaultInstallRoot, "Install root directory")
	cmd.Flags().BoolVar(&opts.NoDev, "no-dev", false, "Skip packages needed only by dev dependencies")

	_ = viper.BindPFlag("lockfile", cmd.Flags().Lookup("lockfile"))
	_ = viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("no_dev", cmd.Flags().Lookup("no-dev"))

	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, opts verifyOptions) error {
	service := newAppService()
	result, err := service.Verify(ctx, app.VerifyRequest{
		LockfilePath: resolveString(cmd, opts.Lockfile, "lockfile", "lockfile"),
		InstallRoot:  resolveString(cmd, opts.Target, "target", "target"),
		NoDev:        resolveBool(cmd, opts.NoDev, "no_dev", "no-dev"),
	})
	fmt.Print(core.RenderVerificationReport(result.Report))
	return err
}
