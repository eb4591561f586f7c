package model

// FindingStatus represents the remediation lifecycle state of a finding.
type FindingStatus string

const (
	StatusOpen           FindingStatus = "OPEN"
	StatusInRemediation  FindingStatus = "IN_REMEDIATION"
	StatusReadyForReview FindingStatus = "READY_FOR_REVIEW"
	StatusClosed         FindingStatus = "CLOSED"
)

// Severity classifies a finding at creation time and never changes afterwards.
type Severity string

const (
	SeverityMinor       Severity = "MINOR"
	SeverityMajor       Severity = "MAJOR"
	SeverityObservation Severity = "OBSERVATION"
	SeverityOFI         Severity = "OFI"
)

// IsValidSeverity reports whether the given string is a known severity.
func IsValidSeverity(s string) bool {
	switch Severity(s) {
	case SeverityMinor, SeverityMajor, SeverityObservation, SeverityOFI:
		return true
	}
	return false
}

// Finding represents a gap identified against a control during an audit.
type Finding struct {
	FindingID       string        `json:"findingId" db:"FINDING_ID"`
	AuditID         string        `json:"auditId" db:"AUDIT_ID"`
	ControlID       string        `json:"controlId" db:"CONTROL_ID"`
	OrgID           string        `json:"orgId" db:"ORG_ID"`
	Severity        Severity      `json:"severity" db:"SEVERITY"`
	Status          FindingStatus `json:"status" db:"STATUS"`
	Description     string        `json:"description" db:"DESCRIPTION"`
	AssignedTo      *string       `json:"assignedTo,omitempty" db:"ASSIGNED_TO"`
	RemediationPlan *string       `json:"remediationPlan,omitempty" db:"REMEDIATION_PLAN"`
	DueDate         *int64        `json:"dueDate,omitempty" db:"DUE_DATE"`
	EvidenceURL     *string       `json:"evidenceUrl,omitempty" db:"EVIDENCE_URL"`
	ClosedAt        *int64        `json:"closedAt,omitempty" db:"CLOSED_AT"`
	CreatedTime     int64         `json:"createdTime" db:"CREATED_TIME"`
	UpdatedTime     int64         `json:"updatedTime" db:"UPDATED_TIME"`
}

// IsOverdue is a read-time derivation: a finding is overdue when it has a due
// date in the past and has not been closed. Never persisted.
func (f *Finding) IsOverdue(nowMillis int64) bool {
	return f.DueDate != nil && *f.DueDate < nowMillis && f.Status != StatusClosed
}

// FindingStatusHistory records one workflow transition of a finding.
type FindingStatusHistory struct {
	HistoryID      string  `json:"historyId" db:"HISTORY_ID"`
	FindingID      string  `json:"findingId" db:"FINDING_ID"`
	AuditID        string  `json:"auditId" db:"AUDIT_ID"`
	OrgID          string  `json:"orgId" db:"ORG_ID"`
	CurrentStatus  string  `json:"currentStatus" db:"CURRENT_STATUS"`
	PreviousStatus *string `json:"previousStatus,omitempty" db:"PREVIOUS_STATUS"`
	ActionBy       string  `json:"actionBy" db:"ACTION_BY"`
	ActionTime     int64   `json:"actionTime" db:"ACTION_TIME"`
}

// FindingCreateRequest is the API payload for raising a finding.
type FindingCreateRequest struct {
	ControlID       string  `json:"controlId"`
	Severity        string  `json:"severity"`
	Description     string  `json:"description"`
	AssignedTo      *string `json:"assignedTo,omitempty"`
	DueDate         *int64  `json:"dueDate,omitempty"`
	RemediationPlan *string `json:"remediationPlan,omitempty"`
}

// FindingUpdateRequest carries the supporting, non-transition field edits.
// Status and severity are deliberately absent.
type FindingUpdateRequest struct {
	RemediationPlan *string `json:"remediationPlan,omitempty"`
	DueDate         *int64  `json:"dueDate,omitempty"`
	EvidenceURL     *string `json:"evidenceUrl,omitempty"`
}

// FindingResponse is the API read model for a finding.
type FindingResponse struct {
	Finding
	Overdue bool `json:"overdue"`
}
