package serviceerror

import (
	"github.com/trustvault/audit-management-api/internal/system/error/codes"
)

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.InternalServerError,
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.DatabaseError,
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidRequest,
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ValidationError,
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	PermissionError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.PermissionDenied,
		Error:            "permission_denied",
		ErrorDescription: "Actor is not permitted to perform this action",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ResourceNotFound,
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	InvalidTransitionError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidTransition,
		Error:            "invalid_transition",
		ErrorDescription: "Requested transition is not legal from the current state",
	}

	AuditLockedError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.AuditLocked,
		Error:            "audit_locked",
		ErrorDescription: "Audit is locked and can no longer be modified",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}
