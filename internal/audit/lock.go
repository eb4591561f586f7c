package audit

import (
	"github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
)

// EnsureMutable is the single lock predicate consulted before any mutation of
// an audit's scope: report edits, control reviews, and finding writes. Once an
// audit locks, the predicate fails unconditionally and forever.
func EnsureMutable(audit *model.Audit) *serviceerror.ServiceError {
	if audit == nil {
		return &serviceerror.ResourceNotFoundError
	}
	if audit.IsLocked {
		return &serviceerror.AuditLockedError
	}
	return nil
}
