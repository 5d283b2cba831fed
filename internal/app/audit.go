package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"luapm/internal/core"
	"luapm/internal/types"
)

func (s Service) Audit(ctx context.Context, req AuditRequest) (AuditResult, error) {
	lockfilePath := lockfilePathOrDefault(req.LockfilePath)
	feed, err := s.feedFor(req.FeedFile)
	if err != nil {
		return AuditResult{}, err
	}

	lockfile, err := s.LockStore.Read(lockfilePath)
	if err != nil {
		return AuditResult{}, err
	}
	report, err := core.NewAuditorCore(feed).Audit(ctx, lockfile)
	if err != nil {
		return AuditResult{}, err
	}
	if report.Failed() {
		counts := report.CountBySeverity()
		log.Ctx(ctx).Warn().
			Int("critical", counts[types.SeverityCritical]).
			Int("high", counts[types.SeverityHigh]).
			Msg("audit found blocking vulnerabilities")
		return AuditResult{Report: report}, core.NewAuditFailedError(
			counts[types.SeverityCritical], counts[types.SeverityHigh])
	}
	return AuditResult{Report: report}, nil
}

func (s Service) List(_ context.Context, req ListRequest) (ListResult, error) {
	lockfile, err := s.LockStore.Read(lockfilePathOrDefault(req.LockfilePath))
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Lockfile: lockfile}, nil
}
