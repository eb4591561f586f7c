package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	OrgIDHeaderName         = "X-Organization-ID"
	UserIDHeaderName        = "X-User-ID"
	UserRoleHeaderName      = "X-User-Role"
	ContentTypeJSON         = "application/json"
	DefaultPageSize         = 30
	MaxPageSize             = 100

	APIBasePath = "/api/v1"

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
	HeaderOrgID       = OrgIDHeaderName
	HeaderUserID      = UserIDHeaderName
	HeaderUserRole    = UserRoleHeaderName
)
