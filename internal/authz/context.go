package authz

import (
	"net/http"

	"github.com/trustvault/audit-management-api/internal/system/constants"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
)

// ActorFromRequest extracts the gateway-injected actor headers. All three are
// mandatory on every workflow endpoint.
func ActorFromRequest(r *http.Request) (ActorContext, *serviceerror.ServiceError) {
	orgID := r.Header.Get(constants.HeaderOrgID)
	userID := r.Header.Get(constants.HeaderUserID)
	role := r.Header.Get(constants.HeaderUserRole)

	if orgID == "" {
		return ActorContext{}, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"organization header is required")
	}
	if userID == "" {
		return ActorContext{}, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"user header is required")
	}
	if !IsValidRole(role) {
		return ActorContext{}, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"unknown or missing user role")
	}

	return ActorContext{UserID: userID, OrgID: orgID, Role: Role(role)}, nil
}
