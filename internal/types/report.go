package types

// VerificationStatus classifies one verified install.
type VerificationStatus string

const (
	VerificationOK       VerificationStatus = "ok"
	VerificationMissing  VerificationStatus = "missing"
	VerificationTampered VerificationStatus = "tampered"
)

// VerificationFinding is the verifier's verdict for one locked package.
type VerificationFinding struct {
	Name    string
	Version Version
	Status  VerificationStatus
	Detail  string
}

// VerificationReport is the result of checking every locked package
// against the install root. NothingToVerify is set, and Findings empty,
// when the lockfile holds zero packages.
type VerificationReport struct {
	Findings        []VerificationFinding
	NothingToVerify bool
}

// OK reports whether every finding (if any) passed.
func (r VerificationReport) OK() bool {
	for _, finding := range r.Findings {
		if finding.Status != VerificationOK {
			return false
		}
	}
	return true
}

// Severity classifies an advisory. Order matters: Critical is the most
// severe and Rank is highest for it.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns a comparable weight, highest for the most severe.
// Unknown severities rank below Low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Advisory is a known-vulnerability record from the feed.
type Advisory struct {
	ID       string
	Severity Severity
	Title    string
}

// AuditFinding ties an advisory to the locked package it affects.
type AuditFinding struct {
	Package  string
	Version  Version
	Advisory Advisory
}

// AuditReport groups findings by severity, most severe first.
// NothingToAudit is set when the lockfile holds zero packages.
type AuditReport struct {
	Findings        []AuditFinding
	CheckedPackages int
	NothingToAudit  bool
}

// Failed reports whether any Critical or High finding exists.
func (r AuditReport) Failed() bool {
	for _, finding := range r.Findings {
		switch finding.Advisory.Severity {
		case SeverityCritical, SeverityHigh:
			return true
		}
	}
	return false
}

// CountBySeverity tallies findings per severity.
func (r AuditReport) CountBySeverity() map[Severity]int {
	counts := map[Severity]int{}
	for _, finding := range r.Findings {
		counts[finding.Advisory.Severity]++
	}
	return counts
}
