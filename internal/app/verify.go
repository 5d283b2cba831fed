package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"luapm/internal/core"
	"luapm/internal/policies"
	"luapm/internal/types"
)

func (s Service) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	lockfilePath := lockfilePathOrDefault(req.LockfilePath)
	installRoot := strings.TrimSpace(req.InstallRoot)
	if installRoot == "" {
		installRoot = core.DefaultInstallRoot
	}

	lockfile, err := s.LockStore.Read(lockfilePath)
	if err != nil {
		return VerifyResult{}, err
	}
	policy := policies.NewInstallPolicy(!req.NoDev)
	lockfile.Packages = policy.Filter(lockfile.Packages)

	report := core.NewVerifierCore().Verify(lockfile, installRoot)
	if !report.OK() {
		damaged := 0
		for _, finding := range report.Findings {
			if finding.Status != types.VerificationOK {
				damaged++
			}
		}
		log.Ctx(ctx).Warn().
			Int("damaged", damaged).
			Msg("verification found damaged packages")
		return VerifyResult{Report: report}, core.NewIntegrityError(
			"one or more installed packages do not match the lockfile")
	}
	return VerifyResult{Report: report}, nil
}
