package model

import "encoding/json"

// AuditStatus represents the lifecycle state of an audit.
type AuditStatus string

const (
	StatusDraft      AuditStatus = "DRAFT"
	StatusPlanned    AuditStatus = "PLANNED"
	StatusInProgress AuditStatus = "IN_PROGRESS"
	StatusCompleted  AuditStatus = "COMPLETED"
)

// AuditType represents the kind of audit exercise.
type AuditType string

const (
	TypeInternal        AuditType = "INTERNAL"
	TypeExternal        AuditType = "EXTERNAL"
	TypeSurveillance    AuditType = "SURVEILLANCE"
	TypeRecertification AuditType = "RECERTIFICATION"
)

// ReviewStatus represents the review outcome recorded for a control in scope.
type ReviewStatus string

const (
	ReviewPending       ReviewStatus = "PENDING"
	ReviewCompliant     ReviewStatus = "COMPLIANT"
	ReviewNonCompliant  ReviewStatus = "NON_COMPLIANT"
	ReviewNotApplicable ReviewStatus = "NOT_APPLICABLE"
)

// IsValidAuditType reports whether the given string is a known audit type.
func IsValidAuditType(t string) bool {
	switch AuditType(t) {
	case TypeInternal, TypeExternal, TypeSurveillance, TypeRecertification:
		return true
	}
	return false
}

// IsValidReviewStatus reports whether the given string is a known review status.
func IsValidReviewStatus(s string) bool {
	switch ReviewStatus(s) {
	case ReviewPending, ReviewCompliant, ReviewNonCompliant, ReviewNotApplicable:
		return true
	}
	return false
}

// Audit represents a compliance audit entity.
// Once IsLocked is set by the completion transition every field becomes read-only.
type Audit struct {
	AuditID              string          `json:"auditId" db:"AUDIT_ID"`
	OrgID                string          `json:"orgId" db:"ORG_ID"`
	Name                 string          `json:"name" db:"NAME"`
	AuditType            AuditType       `json:"type" db:"AUDIT_TYPE"`
	ScopeAll             bool            `json:"scopeAll" db:"SCOPE_ALL"`
	Status               AuditStatus     `json:"status" db:"STATUS"`
	ScheduledStart       int64           `json:"scheduledStart" db:"SCHEDULED_START"`
	ScheduledEnd         *int64          `json:"scheduledEnd,omitempty" db:"SCHEDULED_END"`
	ClosedAt             *int64          `json:"closedAt,omitempty" db:"CLOSED_AT"`
	AssignedUserID       *string         `json:"assignedUserId,omitempty" db:"ASSIGNED_USER_ID"`
	ExternalAuditorEmail *string         `json:"externalAuditorEmail,omitempty" db:"EXTERNAL_AUDITOR_EMAIL"`
	Summary              *string         `json:"summary,omitempty" db:"SUMMARY"`
	Conclusion           *string         `json:"conclusion,omitempty" db:"CONCLUSION"`
	SignedDocumentRef    *string         `json:"signedDocumentRef,omitempty" db:"SIGNED_DOCUMENT_REF"`
	IsLocked             bool            `json:"isLocked" db:"IS_LOCKED"`
	Snapshot             json.RawMessage `json:"snapshot,omitempty" db:"SNAPSHOT"`
	CreatedTime          int64           `json:"createdTime" db:"CREATED_TIME"`
	UpdatedTime          int64           `json:"updatedTime" db:"UPDATED_TIME"`
}

// AuditControl is the join record for one control in an audit's scope.
// Mutable only while the parent audit is unlocked; last write wins.
type AuditControl struct {
	AuditID      string       `json:"auditId" db:"AUDIT_ID"`
	ControlID    string       `json:"controlId" db:"CONTROL_ID"`
	OrgID        string       `json:"orgId" db:"ORG_ID"`
	ReviewStatus ReviewStatus `json:"reviewStatus" db:"REVIEW_STATUS"`
	Notes        *string      `json:"notes,omitempty" db:"NOTES"`
	UpdatedTime  int64        `json:"updatedTime" db:"UPDATED_TIME"`
}

// AuditStatusHistory records one lifecycle transition of an audit.
type AuditStatusHistory struct {
	HistoryID      string  `json:"historyId" db:"HISTORY_ID"`
	AuditID        string  `json:"auditId" db:"AUDIT_ID"`
	OrgID          string  `json:"orgId" db:"ORG_ID"`
	CurrentStatus  string  `json:"currentStatus" db:"CURRENT_STATUS"`
	PreviousStatus *string `json:"previousStatus,omitempty" db:"PREVIOUS_STATUS"`
	ActionBy       string  `json:"actionBy" db:"ACTION_BY"`
	ActionTime     int64   `json:"actionTime" db:"ACTION_TIME"`
}

// AuditCreateRequest is the API payload for creating an audit.
type AuditCreateRequest struct {
	Name                 string   `json:"name"`
	Type                 string   `json:"type"`
	ScopeAll             bool     `json:"scopeAll"`
	ControlIDs           []string `json:"controlIds,omitempty"`
	ScheduledStart       int64    `json:"scheduledStart"`
	ScheduledEnd         *int64   `json:"scheduledEnd,omitempty"`
	AssignedUserID       *string  `json:"assignedUserId,omitempty"`
	ExternalAuditorEmail *string  `json:"externalAuditorEmail,omitempty"`
}

// AuditCompleteRequest carries the report fields persisted by the sign-and-complete transition.
type AuditCompleteRequest struct {
	Summary           *string `json:"summary,omitempty"`
	Conclusion        *string `json:"conclusion,omitempty"`
	SignedDocumentRef *string `json:"signedDocumentRef,omitempty"`
}

// AuditReportUpdateRequest carries draft edits to the report fields of an unlocked audit.
type AuditReportUpdateRequest struct {
	Summary           *string `json:"summary,omitempty"`
	Conclusion        *string `json:"conclusion,omitempty"`
	SignedDocumentRef *string `json:"signedDocumentRef,omitempty"`
}

// ControlReviewRequest is the API payload for recording a control review.
type ControlReviewRequest struct {
	ReviewStatus string  `json:"reviewStatus"`
	Notes        *string `json:"notes,omitempty"`
}

// AuditListResponse is the paginated list envelope.
type AuditListResponse struct {
	Data     []Audit      `json:"data"`
	Metadata ListMetadata `json:"metadata"`
}

// ListMetadata carries pagination metadata for list responses.
type ListMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// AuditReportResponse is the report read model: the frozen snapshot for a
// completed audit, live aggregates otherwise.
type AuditReportResponse struct {
	Audit   *Audit      `json:"audit"`
	Live    bool        `json:"live"`
	Metrics interface{} `json:"metrics"`
}
