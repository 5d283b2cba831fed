package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"luapm/internal/ports"
	"luapm/internal/types"
)

// AuditorCore cross-references locked packages against the advisory
// feed. Classification comes from the feed; the auditor only orders and
// gates on it.
type AuditorCore struct {
	Feed ports.AdvisoryFeedPort
}

func NewAuditorCore(feed ports.AdvisoryFeedPort) AuditorCore {
	return AuditorCore{Feed: feed}
}

// Audit looks up every locked package. An empty lockfile audits
// trivially with an explicit nothing-to-audit result. Findings are
// ordered most severe first, then by package name and advisory id.
func (a AuditorCore) Audit(ctx context.Context, lockfile types.Lockfile) (types.AuditReport, error) {
	if len(lockfile.Packages) == 0 {
		return types.AuditReport{NothingToAudit: true}, nil
	}
	report := types.AuditReport{}
	for _, pkg := range lockfile.Packages {
		advisories, err := a.Feed.Lookup(ctx, pkg.Name, pkg.Version)
		if err != nil {
			return types.AuditReport{}, NewRegistryError(
				fmt.Sprintf("advisory feed lookup for %s %s", pkg.Name, pkg.Version), err)
		}
		report.CheckedPackages++
		for _, advisory := range advisories {
			report.Findings = append(report.Findings, types.AuditFinding{
				Package:  pkg.Name,
				Version:  pkg.Version,
				Advisory: advisory,
			})
		}
	}
	sort.Slice(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Advisory.Severity.Rank() != b.Advisory.Severity.Rank() {
			return a.Advisory.Severity.Rank() > b.Advisory.Severity.Rank()
		}
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		return a.Advisory.ID < b.Advisory.ID
	})
	log.Ctx(ctx).Debug().
		Int("checked", report.CheckedPackages).
		Int("findings", len(report.Findings)).
		Msg("audit completed")
	return report, nil
}

// severityOrder drives the rendered summary, most severe first.
var severityOrder = []types.Severity{
	types.SeverityCritical,
	types.SeverityHigh,
	types.SeverityMedium,
	types.SeverityLow,
}

// RenderAuditReport formats a report for terminal output.
func RenderAuditReport(report types.AuditReport) string {
	if report.NothingToAudit {
		return "nothing to audit: lockfile has no packages\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "checked %d package(s), found %d advisory(ies)\n", report.CheckedPackages, len(report.Findings))
	if len(report.Findings) == 0 {
		return b.String()
	}
	counts := report.CountBySeverity()
	for _, severity := range severityOrder {
		if counts[severity] > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", severity, counts[severity])
		}
	}
	for _, finding := range report.Findings {
		fmt.Fprintf(&b, "[%s] %s %s %s", finding.Advisory.Severity, finding.Package, finding.Version, finding.Advisory.ID)
		if finding.Advisory.Title != "" {
			fmt.Fprintf(&b, ": %s", finding.Advisory.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}
