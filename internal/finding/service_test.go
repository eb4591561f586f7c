package finding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/authz"
	"github.com/trustvault/audit-management-api/internal/finding/model"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/log"
)

// fakeFindingStore keeps findings in memory with the same conditional-write
// semantics as the SQL store: status compare-and-swap plus the parent-lock
// predicate on every write.
type fakeFindingStore struct {
	mu       sync.Mutex
	parent   *fakeParentStore
	findings map[string]*model.Finding
	history  []model.FindingStatusHistory
}

func newFakeFindingStore(parent *fakeParentStore) *fakeFindingStore {
	return &fakeFindingStore{parent: parent, findings: make(map[string]*model.Finding)}
}

func (f *fakeFindingStore) GetFinding(_ context.Context, findingID, orgID string) (*model.Finding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	finding, ok := f.findings[findingID]
	if !ok || finding.OrgID != orgID {
		return nil, nil
	}
	copied := *finding
	return &copied, nil
}

func (f *fakeFindingStore) ListFindingsByAudit(_ context.Context, auditID, orgID string) ([]model.Finding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]model.Finding, 0)
	for _, finding := range f.findings {
		if finding.AuditID == auditID && finding.OrgID == orgID {
			result = append(result, *finding)
		}
	}
	return result, nil
}

func (f *fakeFindingStore) GetStatusHistory(_ context.Context, findingID, orgID string) ([]model.FindingStatusHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := make([]model.FindingStatusHistory, 0)
	for _, h := range f.history {
		if h.FindingID == findingID && h.OrgID == orgID {
			history = append(history, h)
		}
	}
	return history, nil
}

func (f *fakeFindingStore) CreateFinding(_ dbmodel.TxInterface, finding *model.Finding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *finding
	f.findings[finding.FindingID] = &copied
	return nil
}

func (f *fakeFindingStore) UpdateFindingStatus(_ dbmodel.TxInterface, findingID, orgID string,
	from, to model.FindingStatus, closedAt *int64, updatedTime int64) (int64, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	finding, ok := f.findings[findingID]
	if !ok || finding.OrgID != orgID || finding.Status != from || f.parent.isLocked() {
		return 0, nil
	}
	finding.Status = to
	finding.ClosedAt = closedAt
	finding.UpdatedTime = updatedTime
	return 1, nil
}

func (f *fakeFindingStore) UpdateFindingFields(_ dbmodel.TxInterface, findingID, orgID string,
	req *model.FindingUpdateRequest, updatedTime int64) (int64, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	finding, ok := f.findings[findingID]
	if !ok || finding.OrgID != orgID || f.parent.isLocked() {
		return 0, nil
	}
	finding.RemediationPlan = req.RemediationPlan
	finding.DueDate = req.DueDate
	finding.EvidenceURL = req.EvidenceURL
	finding.UpdatedTime = updatedTime
	return 1, nil
}

func (f *fakeFindingStore) InsertStatusHistory(_ dbmodel.TxInterface, h *model.FindingStatusHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *h)
	return nil
}

// fakeParentStore serves the parent audit and its control scope; the write
// half of the contract is unused here.
type fakeParentStore struct {
	mu       sync.Mutex
	audit    *auditmodel.Audit
	controls []auditmodel.AuditControl
}

func (f *fakeParentStore) lockAudit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit.IsLocked = true
	f.audit.Status = auditmodel.StatusCompleted
}

func (f *fakeParentStore) isLocked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audit != nil && f.audit.IsLocked
}

func (f *fakeParentStore) GetAudit(_ context.Context, auditID, orgID string) (*auditmodel.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.audit == nil || f.audit.AuditID != auditID || f.audit.OrgID != orgID {
		return nil, nil
	}
	copied := *f.audit
	return &copied, nil
}

func (f *fakeParentStore) ListAudits(_ context.Context, _ string, _, _ string, _, _ int) ([]auditmodel.Audit, int, error) {
	return nil, 0, nil
}

func (f *fakeParentStore) GetAuditControls(_ context.Context, auditID, orgID string) ([]auditmodel.AuditControl, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.audit == nil || f.audit.AuditID != auditID || f.audit.OrgID != orgID {
		return nil, nil
	}
	return f.controls, nil
}

func (f *fakeParentStore) GetStatusHistory(_ context.Context, _, _ string) ([]auditmodel.AuditStatusHistory, error) {
	return nil, nil
}

func (f *fakeParentStore) CreateAudit(_ dbmodel.TxInterface, _ *auditmodel.Audit) error { return nil }

func (f *fakeParentStore) AddAuditControl(_ dbmodel.TxInterface, _ *auditmodel.AuditControl) error {
	return nil
}

func (f *fakeParentStore) UpdateAuditStatus(_ dbmodel.TxInterface, _, _ string, _, _ auditmodel.AuditStatus, _ int64) (int64, error) {
	return 0, nil
}

func (f *fakeParentStore) UpdateReportFields(_ dbmodel.TxInterface, _, _ string, _ *auditmodel.AuditReportUpdateRequest, _ int64) (int64, error) {
	return 0, nil
}

func (f *fakeParentStore) UpdateControlReview(_ dbmodel.TxInterface, _, _, _ string, _ auditmodel.ReviewStatus, _ *string, _ int64) (int64, error) {
	return 0, nil
}

func (f *fakeParentStore) CompleteAndLockAudit(_ dbmodel.TxInterface, _ *auditmodel.Audit) (int64, error) {
	return 0, nil
}

func (f *fakeParentStore) InsertStatusHistory(_ dbmodel.TxInterface, _ *auditmodel.AuditStatusHistory) error {
	return nil
}

func passthroughTx(queries []func(tx dbmodel.TxInterface) error) error {
	for _, query := range queries {
		if err := query(nil); err != nil {
			return err
		}
	}
	return nil
}

type testEnv struct {
	service *findingService
	store   *fakeFindingStore
	parent  *fakeParentStore
}

func newTestEnv() *testEnv {
	assignedAuditor := "auditor-1"
	parent := &fakeParentStore{
		audit: &auditmodel.Audit{
			AuditID:        "audit-1",
			OrgID:          "org-1",
			Name:           "Annual ISO audit",
			AuditType:      auditmodel.TypeInternal,
			Status:         auditmodel.StatusInProgress,
			AssignedUserID: &assignedAuditor,
		},
		controls: []auditmodel.AuditControl{
			{AuditID: "audit-1", ControlID: "ctrl-1", OrgID: "org-1", ReviewStatus: auditmodel.ReviewPending},
			{AuditID: "audit-1", ControlID: "ctrl-2", OrgID: "org-1", ReviewStatus: auditmodel.ReviewPending},
		},
	}
	store := newFakeFindingStore(parent)

	return &testEnv{
		service: &findingService{
			store:  store,
			audits: parent,
			runTx:  passthroughTx,
			logger: log.GetLogger(),
		},
		store:  store,
		parent: parent,
	}
}

var (
	authority   = authz.ActorContext{UserID: "auditor-1", OrgID: "org-1", Role: authz.RoleAuditor}
	contributor = authz.ActorContext{UserID: "worker-1", OrgID: "org-1", Role: authz.RoleContributor}
	viewer      = authz.ActorContext{UserID: "viewer-1", OrgID: "org-1", Role: authz.RoleViewer}
)

func raiseFinding(t *testing.T, env *testEnv) *model.Finding {
	t.Helper()
	assignee := "worker-1"
	finding, svcErr := env.service.CreateFinding(context.Background(), authority, "audit-1",
		&model.FindingCreateRequest{
			ControlID:   "ctrl-1",
			Severity:    "MAJOR",
			Description: "Access reviews not performed quarterly",
			AssignedTo:  &assignee,
		})
	require.Nil(t, svcErr)
	return finding
}

func TestCreateFinding(t *testing.T) {
	env := newTestEnv()

	finding := raiseFinding(t, env)

	assert.Equal(t, model.StatusOpen, finding.Status)
	assert.Equal(t, model.SeverityMajor, finding.Severity)
	assert.Nil(t, finding.ClosedAt)

	history, svcErr := env.service.GetStatusHistory(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	require.Len(t, history, 1)
	assert.Equal(t, "OPEN", history[0].CurrentStatus)
	assert.Nil(t, history[0].PreviousStatus)
}

func TestCreateFinding_OutOfScopeControl(t *testing.T) {
	env := newTestEnv()

	_, svcErr := env.service.CreateFinding(context.Background(), authority, "audit-1",
		&model.FindingCreateRequest{
			ControlID:   "ctrl-999",
			Severity:    "MINOR",
			Description: "Stray observation",
		})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestCreateFinding_ValidationFailures(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		req  *model.FindingCreateRequest
	}{
		{"missing control", &model.FindingCreateRequest{Severity: "MAJOR", Description: "x"}},
		{"unknown severity", &model.FindingCreateRequest{ControlID: "ctrl-1", Severity: "BLOCKER", Description: "x"}},
		{"missing description", &model.FindingCreateRequest{ControlID: "ctrl-1", Severity: "MAJOR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svcErr := env.service.CreateFinding(context.Background(), authority, "audit-1", tt.req)
			require.NotNil(t, svcErr)
			assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
		})
	}
}

func TestCreateFinding_LockedAudit(t *testing.T) {
	env := newTestEnv()
	env.parent.lockAudit()

	_, svcErr := env.service.CreateFinding(context.Background(), authority, "audit-1",
		&model.FindingCreateRequest{
			ControlID:   "ctrl-1",
			Severity:    "MAJOR",
			Description: "Too late",
		})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AuditLockedError.Code, svcErr.Code)
}

func TestRemediationCycle(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	// The assignee works the finding through remediation.
	inRemediation, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusInRemediation, inRemediation.Status)

	ready, svcErr := env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusReadyForReview, ready.Status)

	// Acceptance is reserved for the audit authority.
	closed, svcErr := env.service.AcceptFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	history, svcErr := env.service.GetStatusHistory(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	require.Len(t, history, 4)
	assert.Equal(t, "CLOSED", history[3].CurrentStatus)
	require.NotNil(t, history[3].PreviousStatus)
	assert.Equal(t, "READY_FOR_REVIEW", *history[3].PreviousStatus)
}

func TestRejectReopensForRework(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)

	reopened, svcErr := env.service.RejectFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)

	// The cycle restarts cleanly after a rejection.
	again, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusInRemediation, again.Status)
}

func TestAcceptFinding_AssigneeCannotAcceptOwnWork(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)

	_, svcErr = env.service.AcceptFinding(context.Background(), contributor, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.PermissionError.Code, svcErr.Code)
}

func TestAcceptFinding_PermissionCheckedBeforeState(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)
	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)

	// Still InRemediation: the assignee gets a permission error, while the
	// authority gets a transition error.
	_, svcErr = env.service.AcceptFinding(context.Background(), contributor, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.PermissionError.Code, svcErr.Code)

	_, svcErr = env.service.AcceptFinding(context.Background(), authority, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InvalidTransitionError.Code, svcErr.Code)
}

func TestStartRemediation_ViewerDenied(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	_, svcErr := env.service.StartRemediation(context.Background(), viewer, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.PermissionError.Code, svcErr.Code)
}

func TestFindingActions_UnrelatedContributorDenied(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	// Contributor role alone grants nothing: the actor is neither the
	// finding's assignee nor the audit authority.
	outsider := authz.ActorContext{UserID: "worker-99", OrgID: "org-1", Role: authz.RoleContributor}

	_, svcErr := env.service.StartRemediation(context.Background(), outsider, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.PermissionError.Code, svcErr.Code)

	plan := "someone else's plan"
	_, svcErr = env.service.UpdateFinding(context.Background(), outsider, finding.FindingID,
		&model.FindingUpdateRequest{RemediationPlan: &plan})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.PermissionError.Code, svcErr.Code)

	stored, err := env.store.GetFinding(context.Background(), finding.FindingID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, stored.Status)
	assert.Nil(t, stored.RemediationPlan)
}

func TestTransition_ParentLocksDuringWrite(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	// The sign commit lands between the mutability read and the finding
	// write; the write's own lock predicate must catch it.
	env.service.runTx = func(queries []func(tx dbmodel.TxInterface) error) error {
		env.parent.lockAudit()
		return passthroughTx(queries)
	}

	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AuditLockedError.Code, svcErr.Code)

	stored, err := env.store.GetFinding(context.Background(), finding.FindingID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, stored.Status)

	plan := "post-lock edit"
	_, svcErr = env.service.UpdateFinding(context.Background(), contributor, finding.FindingID,
		&model.FindingUpdateRequest{RemediationPlan: &plan})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AuditLockedError.Code, svcErr.Code)
}

func TestTransitions_LockedParentAudit(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)
	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)

	env.parent.lockAudit()

	_, svcErr = env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AuditLockedError.Code, svcErr.Code)

	plan := "rotate credentials"
	_, svcErr = env.service.UpdateFinding(context.Background(), contributor, finding.FindingID,
		&model.FindingUpdateRequest{RemediationPlan: &plan})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.AuditLockedError.Code, svcErr.Code)
}

func TestUpdateFinding(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	plan := "rotate credentials and re-run access review"
	due := int64(1800000000000)
	updated, svcErr := env.service.UpdateFinding(context.Background(), contributor, finding.FindingID,
		&model.FindingUpdateRequest{RemediationPlan: &plan, DueDate: &due})
	require.Nil(t, svcErr)
	require.NotNil(t, updated.RemediationPlan)
	assert.Equal(t, plan, *updated.RemediationPlan)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, due, *updated.DueDate)
	assert.Equal(t, model.StatusOpen, updated.Status)
}

func TestUpdateFinding_ClosedFinding(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	_, svcErr := env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.AcceptFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)

	plan := "late edits"
	_, svcErr = env.service.UpdateFinding(context.Background(), contributor, finding.FindingID,
		&model.FindingUpdateRequest{RemediationPlan: &plan})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InvalidTransitionError.Code, svcErr.Code)
}

func TestGetFinding_OverdueDerivation(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	past := int64(1000)
	_, svcErr := env.service.UpdateFinding(context.Background(), contributor, finding.FindingID,
		&model.FindingUpdateRequest{DueDate: &past})
	require.Nil(t, svcErr)

	resp, svcErr := env.service.GetFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	assert.True(t, resp.Overdue)

	// Closing the finding clears the overdue flag even with the date past.
	_, svcErr = env.service.StartRemediation(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.SubmitForReview(context.Background(), contributor, finding.FindingID)
	require.Nil(t, svcErr)
	_, svcErr = env.service.AcceptFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)

	resp, svcErr = env.service.GetFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	assert.False(t, resp.Overdue)
}

func TestFindingsReadableAfterLock(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)
	env.parent.lockAudit()

	resp, svcErr := env.service.GetFinding(context.Background(), authority, finding.FindingID)
	require.Nil(t, svcErr)
	assert.Equal(t, finding.FindingID, resp.FindingID)

	list, svcErr := env.service.ListFindingsByAudit(context.Background(), authority, "audit-1")
	require.Nil(t, svcErr)
	assert.Len(t, list, 1)
}

func TestOrgIsolation(t *testing.T) {
	env := newTestEnv()
	finding := raiseFinding(t, env)

	otherOrg := authz.ActorContext{UserID: "admin-2", OrgID: "org-2", Role: authz.RoleOrgAdmin}

	_, svcErr := env.service.GetFinding(context.Background(), otherOrg, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)

	_, svcErr = env.service.StartRemediation(context.Background(), otherOrg, finding.FindingID)
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}
