// Package authz decides which workflow actions an actor may perform. Decisions
// are pure functions of the actor's role and the target entity; identity
// verification happens upstream at the gateway.
package authz

// Role is the coarse-grained role injected by the gateway for each request.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleOrgAdmin      Role = "ORG_ADMIN"
	RoleSecurityOwner Role = "SECURITY_OWNER"
	RoleAuditor       Role = "AUDITOR"
	RoleContributor   Role = "CONTRIBUTOR"
	RoleViewer        Role = "VIEWER"
)

// IsValidRole reports whether the given string names a known role.
func IsValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleOrgAdmin, RoleSecurityOwner, RoleAuditor, RoleContributor, RoleViewer:
		return true
	}
	return false
}

// ActorContext carries the request actor extracted from gateway headers.
type ActorContext struct {
	UserID string
	OrgID  string
	Role   Role
}

// isManager reports whether the role carries organization management authority.
func (a ActorContext) isManager() bool {
	return a.Role == RoleAdmin || a.Role == RoleOrgAdmin || a.Role == RoleSecurityOwner
}

// CanScheduleAudit reports whether the actor may create or schedule audits.
func CanScheduleAudit(actor ActorContext) bool {
	return actor.isManager()
}

// CanManageAudit reports whether the actor may drive the audit lifecycle:
// start, plan, edit the report, and sign off completion. The assigned auditor
// has the same authority as managers on the audit they own.
func CanManageAudit(actor ActorContext, assignedUserID *string) bool {
	if actor.isManager() {
		return true
	}
	if actor.Role == RoleAuditor && assignedUserID != nil && *assignedUserID == actor.UserID {
		return true
	}
	return false
}

// CanReviewControl reports whether the actor may record control review
// outcomes on an audit. Reviews are last-write-wins working notes, so every
// role participates except the read-only viewer.
func CanReviewControl(actor ActorContext) bool {
	return actor.Role != RoleViewer
}

// CanRaiseFinding reports whether the actor may create findings on an audit.
func CanRaiseFinding(actor ActorContext, assignedUserID *string) bool {
	return CanManageAudit(actor, assignedUserID)
}

// CanActOnFinding reports whether the actor may work a finding's remediation:
// start remediation, submit it for review, and edit the supporting fields.
// Only the finding's assignee and managers; other members of the
// organization, contributors included, are not finding actors.
func CanActOnFinding(actor ActorContext, assignedTo *string) bool {
	if actor.isManager() {
		return true
	}
	if assignedTo != nil && *assignedTo == actor.UserID {
		return true
	}
	return false
}

// CanResolveFinding reports whether the actor may accept or reject a finding
// submitted for review. Reserved for managers and the parent audit's assigned
// auditor: the person who did the remediation work cannot approve it.
func CanResolveFinding(actor ActorContext, auditAssignedUserID *string) bool {
	return CanManageAudit(actor, auditAssignedUserID)
}
