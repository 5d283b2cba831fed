package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"luapm/internal/app"
	"luapm/internal/core"
)

type auditOptions struct {
	Lockfile string
	Feed     string
}

func newAuditCommand() *cobra.Command {
	opts := auditOptions{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check locked packages against a vulnerability feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Lockfile, "lockfile", app.DefaultLockfilePath, "Lockfile path")
	cmd.Flags().StringVar(&opts.Feed, "feed", "", "Advisory feed file")

	_ = viper.BindPFlag("lockfile", cmd.Flags().Lookup("lockfile"))
	_ = viper.BindPFlag("feed", cmd.Flags().Lookup("feed"))

	return cmd
}

func runAudit(ctx context.Context, cmd *cobra.Command, opts auditOptions) error {
	service := newAppService()
	result, err := service.Audit(ctx, app.AuditRequest{
		LockfilePath: resolveString(cmd, opts.Lockfile, "lockfile", "lockfile"),
		FeedFile:     resolveString(cmd, opts.Feed, "feed", "feed"),
	})
	fmt.Print(core.RenderAuditReport(result.Report))
	return err
}
