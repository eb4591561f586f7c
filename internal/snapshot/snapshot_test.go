package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "github.com/trustvault/audit-management-api/internal/audit/model"
	findingmodel "github.com/trustvault/audit-management-api/internal/finding/model"
)

func controlsWithStatuses(statuses ...auditmodel.ReviewStatus) []auditmodel.AuditControl {
	controls := make([]auditmodel.AuditControl, 0, len(statuses))
	for i, status := range statuses {
		controls = append(controls, auditmodel.AuditControl{
			AuditID:      "audit-1",
			ControlID:    string(rune('a' + i)),
			OrgID:        "org-1",
			ReviewStatus: status,
		})
	}
	return controls
}

func TestCompliancePercentage(t *testing.T) {
	tests := []struct {
		name         string
		compliant    int
		nonCompliant int
		want         float64
	}{
		{"nothing reviewed", 0, 0, 0},
		{"all compliant", 4, 0, 100},
		{"all non compliant", 0, 3, 0},
		{"half compliant", 2, 2, 50},
		{"two thirds rounded to one decimal", 2, 1, 66.7},
		{"one third rounded to one decimal", 1, 2, 33.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompliancePercentage(tt.compliant, tt.nonCompliant))
		})
	}
}

func TestCompute_ExcludesPendingAndNotApplicable(t *testing.T) {
	controls := controlsWithStatuses(
		auditmodel.ReviewCompliant,
		auditmodel.ReviewCompliant,
		auditmodel.ReviewNonCompliant,
		auditmodel.ReviewPending,
		auditmodel.ReviewNotApplicable,
	)

	snap := Compute(controls, nil, RiskCounts{}, 1700000000000)

	assert.Equal(t, 5, snap.Controls.Total)
	assert.Equal(t, 2, snap.Controls.Compliant)
	assert.Equal(t, 1, snap.Controls.NonCompliant)
	assert.Equal(t, 1, snap.Controls.Pending)
	assert.Equal(t, 1, snap.Controls.NotApplicable)
	// 2 of 3 reviewed controls compliant; pending and N/A excluded.
	assert.Equal(t, 66.7, snap.Controls.CompliancePct)
}

func TestCompute_FindingMetrics(t *testing.T) {
	findings := []findingmodel.Finding{
		{FindingID: "f1", Severity: findingmodel.SeverityMajor, Status: findingmodel.StatusOpen},
		{FindingID: "f2", Severity: findingmodel.SeverityMinor, Status: findingmodel.StatusInRemediation},
		{FindingID: "f3", Severity: findingmodel.SeverityMajor, Status: findingmodel.StatusClosed},
		{FindingID: "f4", Severity: findingmodel.SeverityOFI, Status: findingmodel.StatusReadyForReview},
	}

	snap := Compute(nil, findings, RiskCounts{}, 1700000000000)

	assert.Equal(t, 4, snap.Findings.Total)
	assert.Equal(t, 3, snap.Findings.Open)
	assert.Equal(t, 1, snap.Findings.Closed)
	assert.Equal(t, 2, snap.Findings.BySeverity.Major)
	assert.Equal(t, 1, snap.Findings.BySeverity.Minor)
	assert.Equal(t, 1, snap.Findings.BySeverity.OFI)
	assert.Equal(t, 0, snap.Findings.BySeverity.Observation)
}

func TestCompute_RiskMetrics(t *testing.T) {
	snap := Compute(nil, nil, RiskCounts{Low: 1, Medium: 2, High: 3, Critical: 4}, 1700000000000)

	assert.Equal(t, 10, snap.Risks.Total)
	assert.Equal(t, 4, snap.Risks.ByLevel.Critical)
}

func TestChecksum_DeterministicAndTamperEvident(t *testing.T) {
	controls := controlsWithStatuses(auditmodel.ReviewCompliant, auditmodel.ReviewNonCompliant)

	first := Compute(controls, nil, RiskCounts{High: 1}, 1700000000000)
	second := Compute(controls, nil, RiskCounts{High: 1}, 1700000000000)

	require.NotEmpty(t, first.Checksum)
	assert.Equal(t, first.Checksum, second.Checksum)
	assert.True(t, Verify(first))

	// Tampering with a frozen number must break verification.
	first.Controls.Compliant = 99
	assert.False(t, Verify(first))
}

func TestChecksum_ChangesWithCaptureTime(t *testing.T) {
	controls := controlsWithStatuses(auditmodel.ReviewCompliant)

	first := Compute(controls, nil, RiskCounts{}, 1700000000000)
	second := Compute(controls, nil, RiskCounts{}, 1700000000001)

	assert.NotEqual(t, first.Checksum, second.Checksum)
}
