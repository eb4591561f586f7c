// Package audit implements the audit lifecycle: scheduling, the linear status
// machine, control reviews, report editing, and the terminal sign-and-complete
// transition that freezes a compliance snapshot.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/audit/validator"
	"github.com/trustvault/audit-management-api/internal/authz"
	"github.com/trustvault/audit-management-api/internal/snapshot"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/log"
	"github.com/trustvault/audit-management-api/internal/system/stores"
	"github.com/trustvault/audit-management-api/internal/system/stores/interfaces"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

// errNoRowsUpdated signals that a conditional write matched no row, meaning
// another request won the state race.
var errNoRowsUpdated = errors.New("no rows updated")

// AuditServiceInterface defines the audit lifecycle operations.
type AuditServiceInterface interface {
	CreateAudit(ctx context.Context, actor authz.ActorContext, req *model.AuditCreateRequest) (*model.Audit, *serviceerror.ServiceError)
	GetAudit(ctx context.Context, actor authz.ActorContext, auditID string) (*model.Audit, *serviceerror.ServiceError)
	ListAudits(ctx context.Context, actor authz.ActorContext, status, auditType string, limit, offset int) (*model.AuditListResponse, *serviceerror.ServiceError)
	PlanAudit(ctx context.Context, actor authz.ActorContext, auditID string) (*model.Audit, *serviceerror.ServiceError)
	StartAudit(ctx context.Context, actor authz.ActorContext, auditID string) (*model.Audit, *serviceerror.ServiceError)
	SignAndCompleteAudit(ctx context.Context, actor authz.ActorContext, auditID string, req *model.AuditCompleteRequest) (*model.Audit, *serviceerror.ServiceError)
	UpdateReport(ctx context.Context, actor authz.ActorContext, auditID string, req *model.AuditReportUpdateRequest) (*model.Audit, *serviceerror.ServiceError)
	SetControlReview(ctx context.Context, actor authz.ActorContext, auditID, controlID string, req *model.ControlReviewRequest) (*model.AuditControl, *serviceerror.ServiceError)
	GetAuditControls(ctx context.Context, actor authz.ActorContext, auditID string) ([]model.AuditControl, *serviceerror.ServiceError)
	GetAuditReport(ctx context.Context, actor authz.ActorContext, auditID string) (*model.AuditReportResponse, *serviceerror.ServiceError)
	GetStatusHistory(ctx context.Context, actor authz.ActorContext, auditID string) ([]model.AuditStatusHistory, *serviceerror.ServiceError)
}

type auditService struct {
	store    interfaces.AuditStoreInterface
	controls interfaces.ControlStoreInterface
	risks    interfaces.RiskStoreInterface
	findings interfaces.FindingStoreInterface
	runTx    func(queries []func(tx dbmodel.TxInterface) error) error
	logger   *log.Logger
}

// GetAuditService returns an audit service wired to the registered stores.
func GetAuditService() AuditServiceInterface {
	return &auditService{
		runTx:  stores.ExecuteTransaction,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuditService")),
	}
}

// Sibling stores register during startup, so they are resolved lazily rather
// than captured at construction time.
func (s *auditService) auditStore() interfaces.AuditStoreInterface {
	if s.store == nil {
		s.store, _ = stores.GetRegistry().GetAuditStore().(interfaces.AuditStoreInterface)
	}
	return s.store
}

func (s *auditService) controlStore() interfaces.ControlStoreInterface {
	if s.controls == nil {
		s.controls, _ = stores.GetRegistry().GetControlStore().(interfaces.ControlStoreInterface)
	}
	return s.controls
}

func (s *auditService) riskStore() interfaces.RiskStoreInterface {
	if s.risks == nil {
		s.risks, _ = stores.GetRegistry().GetRiskStore().(interfaces.RiskStoreInterface)
	}
	return s.risks
}

func (s *auditService) findingStore() interfaces.FindingStoreInterface {
	if s.findings == nil {
		s.findings, _ = stores.GetRegistry().GetFindingStore().(interfaces.FindingStoreInterface)
	}
	return s.findings
}

// CreateAudit creates a new audit in Draft with its control scope expanded
// and seeded as pending reviews.
func (s *auditService) CreateAudit(ctx context.Context, actor authz.ActorContext,
	req *model.AuditCreateRequest) (*model.Audit, *serviceerror.ServiceError) {

	if svcErr := validator.ValidateCreateRequest(req); svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanScheduleAudit(actor) {
		return nil, &serviceerror.PermissionError
	}

	controlIDs, svcErr := s.expandScope(ctx, actor.OrgID, req)
	if svcErr != nil {
		return nil, svcErr
	}

	now := utils.GetCurrentTimeMillis()
	audit := &model.Audit{
		AuditID:              utils.GenerateUUID(),
		OrgID:                actor.OrgID,
		Name:                 req.Name,
		AuditType:            model.AuditType(req.Type),
		ScopeAll:             req.ScopeAll,
		Status:               model.StatusDraft,
		ScheduledStart:       req.ScheduledStart,
		ScheduledEnd:         req.ScheduledEnd,
		AssignedUserID:       req.AssignedUserID,
		ExternalAuditorEmail: req.ExternalAuditorEmail,
		CreatedTime:          now,
		UpdatedTime:          now,
	}

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.auditStore().CreateAudit(tx, audit)
		},
	}
	for _, controlID := range controlIDs {
		ac := &model.AuditControl{
			AuditID:      audit.AuditID,
			ControlID:    controlID,
			OrgID:        actor.OrgID,
			ReviewStatus: model.ReviewPending,
			UpdatedTime:  now,
		}
		queries = append(queries, func(tx dbmodel.TxInterface) error {
			return s.auditStore().AddAuditControl(tx, ac)
		})
	}
	queries = append(queries, s.historyStep(audit.AuditID, actor, string(model.StatusDraft), nil, now))

	if err := s.runTx(queries); err != nil {
		s.logger.Error("Failed to create audit", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	s.logger.Info("Audit created", log.String("audit_id", audit.AuditID),
		log.String("org_id", actor.OrgID))
	return audit, nil
}

// GetAudit returns one audit of the actor's organization.
func (s *auditService) GetAudit(ctx context.Context, actor authz.ActorContext,
	auditID string) (*model.Audit, *serviceerror.ServiceError) {

	return s.loadAudit(ctx, auditID, actor.OrgID)
}

// ListAudits returns a filtered page of the organization's audits.
func (s *auditService) ListAudits(ctx context.Context, actor authz.ActorContext,
	status, auditType string, limit, offset int) (*model.AuditListResponse, *serviceerror.ServiceError) {

	if err := utils.ValidatePagination(limit, offset); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	audits, total, err := s.auditStore().ListAudits(ctx, actor.OrgID, status, auditType, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list audits", log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return &model.AuditListResponse{
		Data:     audits,
		Metadata: model.ListMetadata{Total: total, Limit: limit, Offset: offset},
	}, nil
}

// PlanAudit moves a Draft audit to Planned.
func (s *auditService) PlanAudit(ctx context.Context, actor authz.ActorContext,
	auditID string) (*model.Audit, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, auditID, []model.AuditStatus{model.StatusDraft}, model.StatusPlanned)
}

// StartAudit moves a Draft or Planned audit to InProgress.
func (s *auditService) StartAudit(ctx context.Context, actor authz.ActorContext,
	auditID string) (*model.Audit, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, auditID,
		[]model.AuditStatus{model.StatusDraft, model.StatusPlanned}, model.StatusInProgress)
}

func (s *auditService) transition(ctx context.Context, actor authz.ActorContext, auditID string,
	allowedFrom []model.AuditStatus, to model.AuditStatus) (*model.Audit, *serviceerror.ServiceError) {

	audit, svcErr := s.loadAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanManageAudit(actor, audit.AssignedUserID) {
		return nil, &serviceerror.PermissionError
	}

	from := audit.Status
	legal := false
	for _, allowed := range allowedFrom {
		if from == allowed {
			legal = true
			break
		}
	}
	if !legal {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
			fmt.Sprintf("cannot move audit from %s to %s", from, to))
	}

	now := utils.GetCurrentTimeMillis()
	prev := string(from)
	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.auditStore().UpdateAuditStatus(tx, auditID, actor.OrgID, from, to, now)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errNoRowsUpdated
			}
			return nil
		},
		s.historyStep(auditID, actor, string(to), &prev, now),
	}

	if err := s.runTx(queries); err != nil {
		if errors.Is(err, errNoRowsUpdated) {
			return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
				"audit state changed concurrently")
		}
		s.logger.Error("Failed to transition audit", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	audit.Status = to
	audit.UpdatedTime = now
	s.logger.Info("Audit transitioned", log.String("audit_id", auditID),
		log.String("from", prev), log.String("to", string(to)))
	return audit, nil
}

// SignAndCompleteAudit performs the terminal transition: it merges any report
// field edits, captures the compliance snapshot, and locks the audit, all in
// one transaction. The row-level compare-and-swap ensures that of two
// concurrent sign requests exactly one snapshot is ever persisted.
func (s *auditService) SignAndCompleteAudit(ctx context.Context, actor authz.ActorContext,
	auditID string, req *model.AuditCompleteRequest) (*model.Audit, *serviceerror.ServiceError) {

	audit, svcErr := s.loadAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanManageAudit(actor, audit.AssignedUserID) {
		return nil, &serviceerror.PermissionError
	}
	if audit.IsLocked || audit.Status == model.StatusCompleted {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
			"audit is already completed")
	}

	if req != nil {
		mergeReportFields(audit, req.Summary, req.Conclusion, req.SignedDocumentRef)
	}

	snap, svcErr := s.aggregate(ctx, audit)
	if svcErr != nil {
		return nil, svcErr
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to serialize snapshot", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.InternalServerError
	}

	now := snap.CapturedAt
	prev := string(audit.Status)
	audit.Snapshot = snapJSON
	audit.ClosedAt = &now
	audit.UpdatedTime = now

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.auditStore().CompleteAndLockAudit(tx, audit)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errNoRowsUpdated
			}
			return nil
		},
		s.historyStep(auditID, actor, string(model.StatusCompleted), &prev, now),
	}

	if err := s.runTx(queries); err != nil {
		if errors.Is(err, errNoRowsUpdated) {
			return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
				"audit is already completed")
		}
		s.logger.Error("Failed to complete audit", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	audit.Status = model.StatusCompleted
	audit.IsLocked = true
	s.logger.Info("Audit signed and completed", log.String("audit_id", auditID),
		log.String("org_id", actor.OrgID), log.String("action_by", actor.UserID))
	return audit, nil
}

// UpdateReport applies draft edits to the report fields of an unlocked audit.
func (s *auditService) UpdateReport(ctx context.Context, actor authz.ActorContext,
	auditID string, req *model.AuditReportUpdateRequest) (*model.Audit, *serviceerror.ServiceError) {

	if req == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "request body is required")
	}
	audit, svcErr := s.loadAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := EnsureMutable(audit); svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanManageAudit(actor, audit.AssignedUserID) {
		return nil, &serviceerror.PermissionError
	}

	mergeReportFields(audit, req.Summary, req.Conclusion, req.SignedDocumentRef)
	now := utils.GetCurrentTimeMillis()
	merged := &model.AuditReportUpdateRequest{
		Summary:           audit.Summary,
		Conclusion:        audit.Conclusion,
		SignedDocumentRef: audit.SignedDocumentRef,
	}

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.auditStore().UpdateReportFields(tx, auditID, actor.OrgID, merged, now)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errNoRowsUpdated
			}
			return nil
		},
	}
	if err := s.runTx(queries); err != nil {
		if errors.Is(err, errNoRowsUpdated) {
			return nil, &serviceerror.AuditLockedError
		}
		s.logger.Error("Failed to update report", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	audit.UpdatedTime = now
	return audit, nil
}

// SetControlReview records a review outcome on an in-scope control. Writes are
// last-write-wins while the audit is unlocked.
func (s *auditService) SetControlReview(ctx context.Context, actor authz.ActorContext,
	auditID, controlID string, req *model.ControlReviewRequest) (*model.AuditControl, *serviceerror.ServiceError) {

	if svcErr := validator.ValidateControlReviewRequest(req); svcErr != nil {
		return nil, svcErr
	}
	audit, svcErr := s.loadAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := EnsureMutable(audit); svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanReviewControl(actor) {
		return nil, &serviceerror.PermissionError
	}

	controls, err := s.auditStore().GetAuditControls(ctx, auditID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to load audit scope", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	inScope := false
	for _, c := range controls {
		if c.ControlID == controlID {
			inScope = true
			break
		}
	}
	if !inScope {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError,
			"control is not in the audit scope")
	}

	now := utils.GetCurrentTimeMillis()
	status := model.ReviewStatus(req.ReviewStatus)
	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.auditStore().UpdateControlReview(tx, auditID, controlID, actor.OrgID,
				status, req.Notes, now)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errNoRowsUpdated
			}
			return nil
		},
	}
	if err := s.runTx(queries); err != nil {
		if errors.Is(err, errNoRowsUpdated) {
			return nil, &serviceerror.AuditLockedError
		}
		s.logger.Error("Failed to record control review", log.String("audit_id", auditID),
			log.String("control_id", controlID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	return &model.AuditControl{
		AuditID:      auditID,
		ControlID:    controlID,
		OrgID:        actor.OrgID,
		ReviewStatus: status,
		Notes:        req.Notes,
		UpdatedTime:  now,
	}, nil
}

// GetAuditControls returns the control scope with current review outcomes.
func (s *auditService) GetAuditControls(ctx context.Context, actor authz.ActorContext,
	auditID string) ([]model.AuditControl, *serviceerror.ServiceError) {

	if _, svcErr := s.loadAudit(ctx, auditID, actor.OrgID); svcErr != nil {
		return nil, svcErr
	}
	controls, err := s.auditStore().GetAuditControls(ctx, auditID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to load audit scope", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return controls, nil
}

// GetAuditReport returns the report read model. Completed audits always serve
// the frozen snapshot; everything else aggregates live.
func (s *auditService) GetAuditReport(ctx context.Context, actor authz.ActorContext,
	auditID string) (*model.AuditReportResponse, *serviceerror.ServiceError) {

	audit, svcErr := s.loadAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}

	if audit.IsLocked {
		var snap snapshot.ComplianceSnapshot
		if err := json.Unmarshal(audit.Snapshot, &snap); err != nil {
			s.logger.Error("Stored snapshot is unreadable", log.String("audit_id", auditID), log.Error(err))
			return nil, &serviceerror.InternalServerError
		}
		if !snapshot.Verify(&snap) {
			s.logger.Warn("Stored snapshot failed checksum verification",
				log.String("audit_id", auditID))
		}
		return &model.AuditReportResponse{Audit: audit, Live: false, Metrics: &snap}, nil
	}

	snap, svcErr := s.aggregate(ctx, audit)
	if svcErr != nil {
		return nil, svcErr
	}
	return &model.AuditReportResponse{Audit: audit, Live: true, Metrics: snap}, nil
}

// GetStatusHistory returns the lifecycle transition trail.
func (s *auditService) GetStatusHistory(ctx context.Context, actor authz.ActorContext,
	auditID string) ([]model.AuditStatusHistory, *serviceerror.ServiceError) {

	if _, svcErr := s.loadAudit(ctx, auditID, actor.OrgID); svcErr != nil {
		return nil, svcErr
	}
	history, err := s.auditStore().GetStatusHistory(ctx, auditID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to load status history", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return history, nil
}

// loadAudit fetches an org-scoped audit. Audits of other organizations are
// indistinguishable from missing ones.
func (s *auditService) loadAudit(ctx context.Context, auditID, orgID string) (*model.Audit, *serviceerror.ServiceError) {
	audit, err := s.auditStore().GetAudit(ctx, auditID, orgID)
	if err != nil {
		s.logger.Error("Failed to load audit", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if audit == nil {
		return nil, &serviceerror.ResourceNotFoundError
	}
	return audit, nil
}

// expandScope resolves the request scope to a concrete control list.
func (s *auditService) expandScope(ctx context.Context, orgID string,
	req *model.AuditCreateRequest) ([]string, *serviceerror.ServiceError) {

	if req.ScopeAll {
		ids, err := s.controlStore().ListControlIDs(ctx, orgID)
		if err != nil {
			s.logger.Error("Failed to expand audit scope", log.Error(err))
			return nil, &serviceerror.DatabaseError
		}
		if len(ids) == 0 {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
				"organization has no controls to audit")
		}
		return ids, nil
	}

	seen := make(map[string]bool, len(req.ControlIDs))
	ids := make([]string, 0, len(req.ControlIDs))
	for _, controlID := range req.ControlIDs {
		if seen[controlID] {
			continue
		}
		seen[controlID] = true
		exists, err := s.controlStore().ControlExists(ctx, controlID, orgID)
		if err != nil {
			s.logger.Error("Failed to verify control", log.String("control_id", controlID), log.Error(err))
			return nil, &serviceerror.DatabaseError
		}
		if !exists {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
				fmt.Sprintf("unknown control: %s", controlID))
		}
		ids = append(ids, controlID)
	}
	return ids, nil
}

// aggregate computes the current compliance posture of an audit's scope.
func (s *auditService) aggregate(ctx context.Context, audit *model.Audit) (*snapshot.ComplianceSnapshot, *serviceerror.ServiceError) {
	controls, err := s.auditStore().GetAuditControls(ctx, audit.AuditID, audit.OrgID)
	if err != nil {
		s.logger.Error("Failed to load audit scope", log.String("audit_id", audit.AuditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	findings, err := s.findingStore().ListFindingsByAudit(ctx, audit.AuditID, audit.OrgID)
	if err != nil {
		s.logger.Error("Failed to load findings", log.String("audit_id", audit.AuditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	levelCounts, err := s.riskStore().CountByLevel(ctx, audit.OrgID)
	if err != nil {
		s.logger.Error("Failed to load risk counts", log.String("org_id", audit.OrgID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	risks := snapshot.RiskCounts{
		Low:      levelCounts["LOW"],
		Medium:   levelCounts["MEDIUM"],
		High:     levelCounts["HIGH"],
		Critical: levelCounts["CRITICAL"],
	}
	return snapshot.Compute(controls, findings, risks, utils.GetCurrentTimeMillis()), nil
}

func (s *auditService) historyStep(auditID string, actor authz.ActorContext,
	current string, previous *string, actionTime int64) func(tx dbmodel.TxInterface) error {

	return func(tx dbmodel.TxInterface) error {
		return s.auditStore().InsertStatusHistory(tx, &model.AuditStatusHistory{
			HistoryID:      utils.GenerateUUID(),
			AuditID:        auditID,
			OrgID:          actor.OrgID,
			CurrentStatus:  current,
			PreviousStatus: previous,
			ActionBy:       actor.UserID,
			ActionTime:     actionTime,
		})
	}
}

func mergeReportFields(audit *model.Audit, summary, conclusion, signedDocRef *string) {
	if summary != nil {
		audit.Summary = summary
	}
	if conclusion != nil {
		audit.Conclusion = conclusion
	}
	if signedDocRef != nil {
		audit.SignedDocumentRef = signedDocRef
	}
}
