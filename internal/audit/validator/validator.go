// Package validator validates audit API payloads before they reach the service layer.
package validator

import (
	"fmt"
	"net/mail"

	"github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
)

const maxNameLength = 255

// ValidateCreateRequest checks an audit creation payload.
func ValidateCreateRequest(req *model.AuditCreateRequest) *serviceerror.ServiceError {
	if req == nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "request body is required")
	}
	if req.Name == "" {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "name is required")
	}
	if len(req.Name) > maxNameLength {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("name exceeds %d characters", maxNameLength))
	}
	if !model.IsValidAuditType(req.Type) {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("unknown audit type: %s", req.Type))
	}
	if req.ScheduledStart <= 0 {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "scheduledStart is required")
	}
	if req.ScheduledEnd != nil && *req.ScheduledEnd < req.ScheduledStart {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"scheduledEnd must not precede scheduledStart")
	}
	if !req.ScopeAll && len(req.ControlIDs) == 0 {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"scope must name at least one control or select all controls")
	}
	if req.ScopeAll && len(req.ControlIDs) > 0 {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"scopeAll and an explicit control list are mutually exclusive")
	}
	return validateAssignment(req.AssignedUserID, req.ExternalAuditorEmail)
}

// validateAssignment enforces the exactly-one-auditor rule: an internal user
// reference or an external auditor email, never both, never neither.
func validateAssignment(assignedUserID, externalEmail *string) *serviceerror.ServiceError {
	hasUser := assignedUserID != nil && *assignedUserID != ""
	hasEmail := externalEmail != nil && *externalEmail != ""
	if hasUser == hasEmail {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"exactly one of assignedUserId or externalAuditorEmail must be provided")
	}
	if hasEmail {
		if _, err := mail.ParseAddress(*externalEmail); err != nil {
			return serviceerror.CustomServiceError(serviceerror.ValidationError,
				"externalAuditorEmail is not a valid email address")
		}
	}
	return nil
}

// ValidateControlReviewRequest checks a control review payload.
func ValidateControlReviewRequest(req *model.ControlReviewRequest) *serviceerror.ServiceError {
	if req == nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "request body is required")
	}
	if !model.IsValidReviewStatus(req.ReviewStatus) {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("unknown review status: %s", req.ReviewStatus))
	}
	return nil
}
