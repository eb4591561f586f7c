package codes

// Error codes for the Audit Management Service
const (
	// General errors
	InternalServerError = "AMS-5000"
	DatabaseError       = "AMS-5001"
	InvalidRequest      = "AMS-4000"
	ValidationError     = "AMS-4001"
	PermissionDenied    = "AMS-4003"
	ResourceNotFound    = "AMS-4004"
	InvalidTransition   = "AMS-4009"
	AuditLocked         = "AMS-4023"

	// Audit-specific errors
	AuditNotFound       = "AMS-4040"
	AuditCreationFailed = "AMS-5010"
	AuditStartFailed    = "AMS-5011"
	AuditCompleteFailed = "AMS-5012"

	// Finding-specific errors
	FindingNotFound         = "AMS-4050"
	FindingCreationFailed   = "AMS-5020"
	FindingTransitionFailed = "AMS-5021"

	// Reference data errors
	ControlNotFound = "AMS-4060"
	RiskNotFound    = "AMS-4061"
)
