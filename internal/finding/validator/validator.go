// Package validator validates finding API payloads before they reach the service layer.
package validator

import (
	"fmt"

	"github.com/trustvault/audit-management-api/internal/finding/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

const maxDescriptionLength = 4000

// ValidateCreateRequest checks a finding creation payload.
func ValidateCreateRequest(req *model.FindingCreateRequest) *serviceerror.ServiceError {
	if req == nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "request body is required")
	}
	if req.ControlID == "" {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "controlId is required")
	}
	if !model.IsValidSeverity(req.Severity) {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("unknown severity: %s", req.Severity))
	}
	if req.Description == "" {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "description is required")
	}
	if len(req.Description) > maxDescriptionLength {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("description exceeds %d characters", maxDescriptionLength))
	}
	return nil
}

// ValidateUpdateRequest checks a supporting-field update payload.
func ValidateUpdateRequest(req *model.FindingUpdateRequest) *serviceerror.ServiceError {
	if req == nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "request body is required")
	}
	if req.RemediationPlan == nil && req.DueDate == nil && req.EvidenceURL == nil {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"at least one field must be provided")
	}
	if req.EvidenceURL != nil && *req.EvidenceURL != "" && !utils.IsValidURI(*req.EvidenceURL) {
		return serviceerror.CustomServiceError(serviceerror.ValidationError,
			"evidenceUrl is not a valid URL")
	}
	return nil
}
