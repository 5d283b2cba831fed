package core

import (
	"fmt"
	"os"

	"luapm/internal/types"
)

// VerifierCore recomputes integrity digests of materialized installs
// and compares them against the lockfile. It is read-only: findings are
// reported, never repaired.
type VerifierCore struct{}

func NewVerifierCore() VerifierCore {
	return VerifierCore{}
}

// Verify checks every locked package under installRoot. A lockfile with
// zero packages verifies trivially with an explicit nothing-to-verify
// result.
func (v VerifierCore) Verify(lockfile types.Lockfile, installRoot string) types.VerificationReport {
	if len(lockfile.Packages) == 0 {
		return types.VerificationReport{NothingToVerify: true}
	}
	report := types.VerificationReport{}
	for _, pkg := range lockfile.Packages {
		report.Findings = append(report.Findings, v.verifyPackage(pkg, installRoot))
	}
	return report
}

func (v VerifierCore) verifyPackage(pkg types.ResolvedPackage, installRoot string) types.VerificationFinding {
	finding := types.VerificationFinding{Name: pkg.Name, Version: pkg.Version}

	dir := PackageDir(installRoot, pkg.Name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		finding.Status = types.VerificationMissing
		finding.Detail = fmt.Sprintf("install directory %s not found", dir)
		return finding
	}
	archive := ArchiveCachePath(installRoot, pkg.Name, pkg.Version)
	if _, err := os.Stat(archive); err != nil {
		finding.Status = types.VerificationMissing
		finding.Detail = fmt.Sprintf("cached archive %s not found", archive)
		return finding
	}
	actual, err := FileChecksum(archive)
	if err != nil {
		finding.Status = types.VerificationTampered
		finding.Detail = fmt.Sprintf("cached archive unreadable: %v", err)
		return finding
	}
	if actual != pkg.Checksum {
		finding.Status = types.VerificationTampered
		finding.Detail = fmt.Sprintf("checksum mismatch: expected %s, got %s", pkg.Checksum, actual)
		return finding
	}
	finding.Status = types.VerificationOK
	return finding
}

// RenderVerificationReport formats a report for terminal output.
func RenderVerificationReport(report types.VerificationReport) string {
	if report.NothingToVerify {
		return "nothing to verify: lockfile has no packages\n"
	}
	out := ""
	for _, finding := range report.Findings {
		line := fmt.Sprintf("%-8s %s %s", finding.Status, finding.Name, finding.Version)
		if finding.Detail != "" {
			line += ": " + finding.Detail
		}
		out += line + "\n"
	}
	return out
}
