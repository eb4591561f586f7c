package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestCanScheduleAudit(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed bool
	}{
		{"admin can schedule", RoleAdmin, true},
		{"org admin can schedule", RoleOrgAdmin, true},
		{"security owner can schedule", RoleSecurityOwner, true},
		{"auditor cannot schedule", RoleAuditor, false},
		{"contributor cannot schedule", RoleContributor, false},
		{"viewer cannot schedule", RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := ActorContext{UserID: "user-1", OrgID: "org-1", Role: tt.role}
			assert.Equal(t, tt.allowed, CanScheduleAudit(actor))
		})
	}
}

func TestCanManageAudit(t *testing.T) {
	assigned := strptr("auditor-1")

	t.Run("assigned auditor can manage their audit", func(t *testing.T) {
		actor := ActorContext{UserID: "auditor-1", OrgID: "org-1", Role: RoleAuditor}
		assert.True(t, CanManageAudit(actor, assigned))
	})

	t.Run("other auditor cannot manage", func(t *testing.T) {
		actor := ActorContext{UserID: "auditor-2", OrgID: "org-1", Role: RoleAuditor}
		assert.False(t, CanManageAudit(actor, assigned))
	})

	t.Run("auditor cannot manage unassigned audit", func(t *testing.T) {
		actor := ActorContext{UserID: "auditor-1", OrgID: "org-1", Role: RoleAuditor}
		assert.False(t, CanManageAudit(actor, nil))
	})

	t.Run("org admin can manage any audit", func(t *testing.T) {
		actor := ActorContext{UserID: "admin-1", OrgID: "org-1", Role: RoleOrgAdmin}
		assert.True(t, CanManageAudit(actor, assigned))
	})

	t.Run("viewer cannot manage", func(t *testing.T) {
		actor := ActorContext{UserID: "viewer-1", OrgID: "org-1", Role: RoleViewer}
		assert.False(t, CanManageAudit(actor, assigned))
	})
}

func TestCanActOnFinding(t *testing.T) {
	assignee := strptr("worker-1")

	t.Run("assignee can act regardless of role", func(t *testing.T) {
		actor := ActorContext{UserID: "worker-1", OrgID: "org-1", Role: RoleViewer}
		assert.True(t, CanActOnFinding(actor, assignee))
	})

	t.Run("contributor who is not the assignee cannot act", func(t *testing.T) {
		actor := ActorContext{UserID: "worker-99", OrgID: "org-1", Role: RoleContributor}
		assert.False(t, CanActOnFinding(actor, assignee))
	})

	t.Run("viewer who is not the assignee cannot act", func(t *testing.T) {
		actor := ActorContext{UserID: "worker-2", OrgID: "org-1", Role: RoleViewer}
		assert.False(t, CanActOnFinding(actor, assignee))
	})

	t.Run("nobody but managers acts on an unassigned finding", func(t *testing.T) {
		actor := ActorContext{UserID: "worker-2", OrgID: "org-1", Role: RoleContributor}
		assert.False(t, CanActOnFinding(actor, nil))
	})

	t.Run("manager can act", func(t *testing.T) {
		actor := ActorContext{UserID: "owner-1", OrgID: "org-1", Role: RoleSecurityOwner}
		assert.True(t, CanActOnFinding(actor, assignee))
	})
}

func TestCanReviewControl(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed bool
	}{
		{"admin", RoleAdmin, true},
		{"org admin", RoleOrgAdmin, true},
		{"security owner", RoleSecurityOwner, true},
		{"any auditor", RoleAuditor, true},
		{"contributor", RoleContributor, true},
		{"viewer is read-only", RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := ActorContext{UserID: "user-1", OrgID: "org-1", Role: tt.role}
			assert.Equal(t, tt.allowed, CanReviewControl(actor))
		})
	}
}

func TestCanResolveFinding_SeparationOfDuties(t *testing.T) {
	auditAssignee := strptr("auditor-1")

	t.Run("finding assignee alone cannot resolve", func(t *testing.T) {
		actor := ActorContext{UserID: "worker-1", OrgID: "org-1", Role: RoleContributor}
		assert.False(t, CanResolveFinding(actor, auditAssignee))
	})

	t.Run("assigned auditor can resolve", func(t *testing.T) {
		actor := ActorContext{UserID: "auditor-1", OrgID: "org-1", Role: RoleAuditor}
		assert.True(t, CanResolveFinding(actor, auditAssignee))
	})

	t.Run("org admin can resolve", func(t *testing.T) {
		actor := ActorContext{UserID: "admin-1", OrgID: "org-1", Role: RoleOrgAdmin}
		assert.True(t, CanResolveFinding(actor, auditAssignee))
	})
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("ADMIN"))
	assert.True(t, IsValidRole("CONTRIBUTOR"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("SUPERUSER"))
}
