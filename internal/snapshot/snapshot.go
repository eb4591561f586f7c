// Package snapshot computes the immutable compliance snapshot that is frozen
// into an audit record at completion time.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	auditmodel "github.com/trustvault/audit-management-api/internal/audit/model"
	findingmodel "github.com/trustvault/audit-management-api/internal/finding/model"
)

// ControlMetrics aggregates the review outcomes of the controls in scope.
type ControlMetrics struct {
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	Compliant     int     `json:"compliant"`
	NonCompliant  int     `json:"nonCompliant"`
	NotApplicable int     `json:"notApplicable"`
	CompliancePct float64 `json:"compliancePct"`
}

// SeverityCounts breaks findings down by severity.
type SeverityCounts struct {
	Minor       int `json:"minor"`
	Major       int `json:"major"`
	Observation int `json:"observation"`
	OFI         int `json:"ofi"`
}

// FindingMetrics aggregates the findings raised during the audit.
type FindingMetrics struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Closed     int            `json:"closed"`
	BySeverity SeverityCounts `json:"bySeverity"`
}

// RiskCounts breaks the organization's risk register down by level.
type RiskCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// RiskMetrics captures the state of the risk register at completion time.
type RiskMetrics struct {
	Total   int        `json:"total"`
	ByLevel RiskCounts `json:"byLevel"`
}

// ComplianceSnapshot is the point-in-time compliance posture of an audit.
// Once persisted it is never recomputed or amended.
type ComplianceSnapshot struct {
	CapturedAt int64          `json:"capturedAt"`
	Controls   ControlMetrics `json:"controls"`
	Findings   FindingMetrics `json:"findings"`
	Risks      RiskMetrics    `json:"risks"`
	Checksum   string         `json:"checksum,omitempty"`
}

// Compute aggregates the given scope state into a snapshot and seals it with a
// checksum over the canonical serialization.
func Compute(controls []auditmodel.AuditControl, findings []findingmodel.Finding,
	risks RiskCounts, capturedAt int64) *ComplianceSnapshot {

	snap := &ComplianceSnapshot{
		CapturedAt: capturedAt,
		Controls:   computeControlMetrics(controls),
		Findings:   computeFindingMetrics(findings),
		Risks: RiskMetrics{
			Total:   risks.Low + risks.Medium + risks.High + risks.Critical,
			ByLevel: risks,
		},
	}
	snap.Checksum = checksum(snap)
	return snap
}

// Verify recomputes the checksum of a stored snapshot and reports whether it
// still matches. Detects out-of-band tampering with the frozen record.
func Verify(snap *ComplianceSnapshot) bool {
	return snap.Checksum == checksum(snap)
}

func computeControlMetrics(controls []auditmodel.AuditControl) ControlMetrics {
	m := ControlMetrics{Total: len(controls)}
	for _, c := range controls {
		switch c.ReviewStatus {
		case auditmodel.ReviewCompliant:
			m.Compliant++
		case auditmodel.ReviewNonCompliant:
			m.NonCompliant++
		case auditmodel.ReviewNotApplicable:
			m.NotApplicable++
		default:
			m.Pending++
		}
	}
	m.CompliancePct = CompliancePercentage(m.Compliant, m.NonCompliant)
	return m
}

func computeFindingMetrics(findings []findingmodel.Finding) FindingMetrics {
	m := FindingMetrics{Total: len(findings)}
	for _, f := range findings {
		if f.Status == findingmodel.StatusClosed {
			m.Closed++
		} else {
			m.Open++
		}
		switch f.Severity {
		case findingmodel.SeverityMinor:
			m.BySeverity.Minor++
		case findingmodel.SeverityMajor:
			m.BySeverity.Major++
		case findingmodel.SeverityObservation:
			m.BySeverity.Observation++
		case findingmodel.SeverityOFI:
			m.BySeverity.OFI++
		}
	}
	return m
}

// CompliancePercentage computes the compliance ratio over reviewed controls
// only. Pending and not-applicable reviews are excluded from the denominator.
// Returns 0 when nothing has been reviewed, rounded to one decimal otherwise.
func CompliancePercentage(compliant, nonCompliant int) float64 {
	reviewed := compliant + nonCompliant
	if reviewed == 0 {
		return 0
	}
	pct := float64(compliant) / float64(reviewed) * 100
	return roundOneDecimal(pct)
}

func roundOneDecimal(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// checksum serializes the snapshot without its checksum field and hashes the
// result. Field order in the canonical payload is fixed by the struct layout,
// so equal snapshots always produce equal digests.
func checksum(snap *ComplianceSnapshot) string {
	canonical := ComplianceSnapshot{
		CapturedAt: snap.CapturedAt,
		Controls:   snap.Controls,
		Findings:   snap.Findings,
		Risks:      snap.Risks,
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		// Marshal of a plain value struct cannot fail at runtime.
		data = []byte(fmt.Sprintf("%+v", canonical))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
