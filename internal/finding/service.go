// Package finding implements the remediation workflow for audit findings:
// creation against in-scope controls, the four-state remediation machine, and
// supporting-field edits, all frozen once the parent audit locks.
package finding

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustvault/audit-management-api/internal/audit"
	auditmodel "github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/authz"
	"github.com/trustvault/audit-management-api/internal/finding/model"
	"github.com/trustvault/audit-management-api/internal/finding/validator"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/log"
	"github.com/trustvault/audit-management-api/internal/system/stores"
	"github.com/trustvault/audit-management-api/internal/system/stores/interfaces"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

var errNoRowsUpdated = errors.New("no rows updated")

// FindingServiceInterface defines the finding workflow operations.
type FindingServiceInterface interface {
	CreateFinding(ctx context.Context, actor authz.ActorContext, auditID string, req *model.FindingCreateRequest) (*model.Finding, *serviceerror.ServiceError)
	GetFinding(ctx context.Context, actor authz.ActorContext, findingID string) (*model.FindingResponse, *serviceerror.ServiceError)
	ListFindingsByAudit(ctx context.Context, actor authz.ActorContext, auditID string) ([]model.FindingResponse, *serviceerror.ServiceError)
	StartRemediation(ctx context.Context, actor authz.ActorContext, findingID string) (*model.Finding, *serviceerror.ServiceError)
	SubmitForReview(ctx context.Context, actor authz.ActorContext, findingID string) (*model.Finding, *serviceerror.ServiceError)
	AcceptFinding(ctx context.Context, actor authz.ActorContext, findingID string) (*model.Finding, *serviceerror.ServiceError)
	RejectFinding(ctx context.Context, actor authz.ActorContext, findingID string) (*model.Finding, *serviceerror.ServiceError)
	UpdateFinding(ctx context.Context, actor authz.ActorContext, findingID string, req *model.FindingUpdateRequest) (*model.Finding, *serviceerror.ServiceError)
	GetStatusHistory(ctx context.Context, actor authz.ActorContext, findingID string) ([]model.FindingStatusHistory, *serviceerror.ServiceError)
}

type findingService struct {
	store  interfaces.FindingStoreInterface
	audits interfaces.AuditStoreInterface
	runTx  func(queries []func(tx dbmodel.TxInterface) error) error
	logger *log.Logger
}

// GetFindingService returns a finding service wired to the registered stores.
func GetFindingService() FindingServiceInterface {
	return &findingService{
		runTx:  stores.ExecuteTransaction,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "FindingService")),
	}
}

func (s *findingService) findingStore() interfaces.FindingStoreInterface {
	if s.store == nil {
		s.store, _ = stores.GetRegistry().GetFindingStore().(interfaces.FindingStoreInterface)
	}
	return s.store
}

func (s *findingService) auditStore() interfaces.AuditStoreInterface {
	if s.audits == nil {
		s.audits, _ = stores.GetRegistry().GetAuditStore().(interfaces.AuditStoreInterface)
	}
	return s.audits
}

// CreateFinding raises a finding against an in-scope control of an unlocked audit.
func (s *findingService) CreateFinding(ctx context.Context, actor authz.ActorContext,
	auditID string, req *model.FindingCreateRequest) (*model.Finding, *serviceerror.ServiceError) {

	if svcErr := validator.ValidateCreateRequest(req); svcErr != nil {
		return nil, svcErr
	}

	parent, svcErr := s.loadParentAudit(ctx, auditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := audit.EnsureMutable(parent); svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanRaiseFinding(actor, parent.AssignedUserID) {
		return nil, &serviceerror.PermissionError
	}

	controls, err := s.auditStore().GetAuditControls(ctx, auditID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to load audit scope", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	inScope := false
	for _, c := range controls {
		if c.ControlID == req.ControlID {
			inScope = true
			break
		}
	}
	if !inScope {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("control %s is not in the audit scope", req.ControlID))
	}

	now := utils.GetCurrentTimeMillis()
	finding := &model.Finding{
		FindingID:       utils.GenerateUUID(),
		AuditID:         auditID,
		ControlID:       req.ControlID,
		OrgID:           actor.OrgID,
		Severity:        model.Severity(req.Severity),
		Status:          model.StatusOpen,
		Description:     req.Description,
		AssignedTo:      req.AssignedTo,
		RemediationPlan: req.RemediationPlan,
		DueDate:         req.DueDate,
		CreatedTime:     now,
		UpdatedTime:     now,
	}

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.findingStore().CreateFinding(tx, finding)
		},
		s.historyStep(finding, actor, string(model.StatusOpen), nil, now),
	}
	if err := s.runTx(queries); err != nil {
		s.logger.Error("Failed to create finding", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	s.logger.Info("Finding created", log.String("finding_id", finding.FindingID),
		log.String("audit_id", auditID), log.String("severity", req.Severity))
	return finding, nil
}

// GetFinding returns one finding. Findings stay readable after the parent locks.
func (s *findingService) GetFinding(ctx context.Context, actor authz.ActorContext,
	findingID string) (*model.FindingResponse, *serviceerror.ServiceError) {

	finding, svcErr := s.loadFinding(ctx, findingID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	return toResponse(finding), nil
}

// ListFindingsByAudit returns every finding raised on an audit.
func (s *findingService) ListFindingsByAudit(ctx context.Context, actor authz.ActorContext,
	auditID string) ([]model.FindingResponse, *serviceerror.ServiceError) {

	if _, svcErr := s.loadParentAudit(ctx, auditID, actor.OrgID); svcErr != nil {
		return nil, svcErr
	}
	findings, err := s.findingStore().ListFindingsByAudit(ctx, auditID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to list findings", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	responses := make([]model.FindingResponse, 0, len(findings))
	for i := range findings {
		responses = append(responses, *toResponse(&findings[i]))
	}
	return responses, nil
}

// StartRemediation moves an Open finding to InRemediation.
func (s *findingService) StartRemediation(ctx context.Context, actor authz.ActorContext,
	findingID string) (*model.Finding, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, findingID, transitionSpec{
		from:     model.StatusOpen,
		to:       model.StatusInRemediation,
		byWorker: true,
	})
}

// SubmitForReview moves an InRemediation finding to ReadyForReview.
func (s *findingService) SubmitForReview(ctx context.Context, actor authz.ActorContext,
	findingID string) (*model.Finding, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, findingID, transitionSpec{
		from:     model.StatusInRemediation,
		to:       model.StatusReadyForReview,
		byWorker: true,
	})
}

// AcceptFinding closes a ReadyForReview finding. Reserved for audit authority
// so that nobody accepts their own remediation work.
func (s *findingService) AcceptFinding(ctx context.Context, actor authz.ActorContext,
	findingID string) (*model.Finding, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, findingID, transitionSpec{
		from:     model.StatusReadyForReview,
		to:       model.StatusClosed,
		setClose: true,
	})
}

// RejectFinding sends a ReadyForReview finding back to Open for rework.
func (s *findingService) RejectFinding(ctx context.Context, actor authz.ActorContext,
	findingID string) (*model.Finding, *serviceerror.ServiceError) {

	return s.transition(ctx, actor, findingID, transitionSpec{
		from: model.StatusReadyForReview,
		to:   model.StatusOpen,
	})
}

// transitionSpec describes one edge of the remediation machine. byWorker edges
// admit the assignee and contributors; the rest are authority-only.
type transitionSpec struct {
	from     model.FindingStatus
	to       model.FindingStatus
	byWorker bool
	setClose bool
}

func (s *findingService) transition(ctx context.Context, actor authz.ActorContext,
	findingID string, spec transitionSpec) (*model.Finding, *serviceerror.ServiceError) {

	finding, svcErr := s.loadFinding(ctx, findingID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	parent, svcErr := s.loadParentAudit(ctx, finding.AuditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := audit.EnsureMutable(parent); svcErr != nil {
		return nil, svcErr
	}

	allowed := false
	if spec.byWorker {
		allowed = authz.CanActOnFinding(actor, finding.AssignedTo) ||
			authz.CanResolveFinding(actor, parent.AssignedUserID)
	} else {
		allowed = authz.CanResolveFinding(actor, parent.AssignedUserID)
	}
	if !allowed {
		return nil, &serviceerror.PermissionError
	}

	if finding.Status != spec.from {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
			fmt.Sprintf("cannot move finding from %s to %s", finding.Status, spec.to))
	}

	now := utils.GetCurrentTimeMillis()
	var closedAt *int64
	if spec.setClose {
		closedAt = &now
	}
	prev := string(spec.from)

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.findingStore().UpdateFindingStatus(tx, findingID, actor.OrgID,
				spec.from, spec.to, closedAt, now)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errNoRowsUpdated
			}
			return nil
		},
		s.historyStep(finding, actor, string(spec.to), &prev, now),
	}
	if err := s.runTx(queries); err != nil {
		if errors.Is(err, errNoRowsUpdated) {
			// Either another transition won the state race or the parent
			// audit locked between our read and the write.
			if current, svcErr := s.loadParentAudit(ctx, finding.AuditID, actor.OrgID); svcErr == nil && current.IsLocked {
				return nil, &serviceerror.AuditLockedError
			}
			return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
				"finding state changed concurrently")
		}
		s.logger.Error("Failed to transition finding", log.String("finding_id", findingID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	finding.Status = spec.to
	finding.ClosedAt = closedAt
	finding.UpdatedTime = now
	s.logger.Info("Finding transitioned", log.String("finding_id", findingID),
		log.String("from", prev), log.String("to", string(spec.to)))
	return finding, nil
}

// UpdateFinding applies supporting-field edits to a non-Closed finding of an
// unlocked audit. Status never changes through this path.
func (s *findingService) UpdateFinding(ctx context.Context, actor authz.ActorContext,
	findingID string, req *model.FindingUpdateRequest) (*model.Finding, *serviceerror.ServiceError) {

	if svcErr := validator.ValidateUpdateRequest(req); svcErr != nil {
		return nil, svcErr
	}

	finding, svcErr := s.loadFinding(ctx, findingID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	parent, svcErr := s.loadParentAudit(ctx, finding.AuditID, actor.OrgID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := audit.EnsureMutable(parent); svcErr != nil {
		return nil, svcErr
	}
	if !authz.CanActOnFinding(actor, finding.AssignedTo) &&
		!authz.CanResolveFinding(actor, parent.AssignedUserID) {
		return nil, &serviceerror.PermissionError
	}
	if finding.Status == model.StatusClosed {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidTransitionError,
			"closed findings cannot be edited")
	}

	if req.RemediationPlan != nil {
		finding.RemediationPlan = req.RemediationPlan
	}
	if req.DueDate != nil {
		finding.DueDate = req.DueDate
	}
	if req.EvidenceURL != nil {
		finding.EvidenceURL = req.EvidenceURL
	}
	now := utils.GetCurrentTimeMillis()
	merged := &model.FindingUpdateRequest{
		RemediationPlan: finding.RemediationPlan,
		DueDate:         finding.DueDate,
		EvidenceURL:     finding.EvidenceURL,
	}

	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			rows, err := s.findingStore().UpdateFindingFields(tx, findingID, actor.OrgID, merged, now)
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
			if current, svcErr := s.loadParentAudit(ctx, finding.AuditID, actor.OrgID); svcErr == nil && current.IsLocked {
				return nil, &serviceerror.AuditLockedError
			}
			return nil, &serviceerror.ResourceNotFoundError
		}
		s.logger.Error("Failed to update finding", log.String("finding_id", findingID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}

	finding.UpdatedTime = now
	return finding, nil
}

// GetStatusHistory returns the workflow transition trail of a finding.
func (s *findingService) GetStatusHistory(ctx context.Context, actor authz.ActorContext,
	findingID string) ([]model.FindingStatusHistory, *serviceerror.ServiceError) {

	if _, svcErr := s.loadFinding(ctx, findingID, actor.OrgID); svcErr != nil {
		return nil, svcErr
	}
	history, err := s.findingStore().GetStatusHistory(ctx, findingID, actor.OrgID)
	if err != nil {
		s.logger.Error("Failed to load finding history", log.String("finding_id", findingID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	return history, nil
}

func (s *findingService) loadFinding(ctx context.Context, findingID, orgID string) (*model.Finding, *serviceerror.ServiceError) {
	finding, err := s.findingStore().GetFinding(ctx, findingID, orgID)
	if err != nil {
		s.logger.Error("Failed to load finding", log.String("finding_id", findingID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if finding == nil {
		return nil, &serviceerror.ResourceNotFoundError
	}
	return finding, nil
}

func (s *findingService) loadParentAudit(ctx context.Context, auditID, orgID string) (*auditmodel.Audit, *serviceerror.ServiceError) {
	parent, err := s.auditStore().GetAudit(ctx, auditID, orgID)
	if err != nil {
		s.logger.Error("Failed to load parent audit", log.String("audit_id", auditID), log.Error(err))
		return nil, &serviceerror.DatabaseError
	}
	if parent == nil {
		return nil, &serviceerror.ResourceNotFoundError
	}
	return parent, nil
}

func (s *findingService) historyStep(finding *model.Finding, actor authz.ActorContext,
	current string, previous *string, actionTime int64) func(tx dbmodel.TxInterface) error {

	return func(tx dbmodel.TxInterface) error {
		return s.findingStore().InsertStatusHistory(tx, &model.FindingStatusHistory{
			HistoryID:      utils.GenerateUUID(),
			FindingID:      finding.FindingID,
			AuditID:        finding.AuditID,
			OrgID:          finding.OrgID,
			CurrentStatus:  current,
			PreviousStatus: previous,
			ActionBy:       actor.UserID,
			ActionTime:     actionTime,
		})
	}
}

func toResponse(finding *model.Finding) *model.FindingResponse {
	return &model.FindingResponse{
		Finding: *finding,
		Overdue: finding.IsOverdue(utils.GetCurrentTimeMillis()),
	}
}
