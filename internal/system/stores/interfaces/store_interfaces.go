// Package interfaces defines typed store contracts shared across modules.
// Living here rather than in the module packages keeps cross-module reads
// (parent-audit lock checks, snapshot aggregation) free of import cycles.
package interfaces

import (
	"context"

	auditmodel "github.com/trustvault/audit-management-api/internal/audit/model"
	findingmodel "github.com/trustvault/audit-management-api/internal/finding/model"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
)

// AuditStoreInterface is the persistence contract for audits and their
// control scope. Reads go through the pooled client; writes participate in
// a caller-managed transaction.
type AuditStoreInterface interface {
	GetAudit(ctx context.Context, auditID, orgID string) (*auditmodel.Audit, error)
	ListAudits(ctx context.Context, orgID string, status, auditType string, limit, offset int) ([]auditmodel.Audit, int, error)
	GetAuditControls(ctx context.Context, auditID, orgID string) ([]auditmodel.AuditControl, error)
	GetStatusHistory(ctx context.Context, auditID, orgID string) ([]auditmodel.AuditStatusHistory, error)

	CreateAudit(tx dbmodel.TxInterface, audit *auditmodel.Audit) error
	AddAuditControl(tx dbmodel.TxInterface, ac *auditmodel.AuditControl) error
	UpdateAuditStatus(tx dbmodel.TxInterface, auditID, orgID string, from, to auditmodel.AuditStatus, updatedTime int64) (int64, error)
	UpdateReportFields(tx dbmodel.TxInterface, auditID, orgID string, req *auditmodel.AuditReportUpdateRequest, updatedTime int64) (int64, error)
	UpdateControlReview(tx dbmodel.TxInterface, auditID, controlID, orgID string, status auditmodel.ReviewStatus, notes *string, updatedTime int64) (int64, error)
	CompleteAndLockAudit(tx dbmodel.TxInterface, audit *auditmodel.Audit) (int64, error)
	InsertStatusHistory(tx dbmodel.TxInterface, h *auditmodel.AuditStatusHistory) error
}

// FindingStoreInterface is the persistence contract for findings.
type FindingStoreInterface interface {
	GetFinding(ctx context.Context, findingID, orgID string) (*findingmodel.Finding, error)
	ListFindingsByAudit(ctx context.Context, auditID, orgID string) ([]findingmodel.Finding, error)
	GetStatusHistory(ctx context.Context, findingID, orgID string) ([]findingmodel.FindingStatusHistory, error)

	CreateFinding(tx dbmodel.TxInterface, finding *findingmodel.Finding) error
	UpdateFindingStatus(tx dbmodel.TxInterface, findingID, orgID string, from, to findingmodel.FindingStatus, closedAt *int64, updatedTime int64) (int64, error)
	UpdateFindingFields(tx dbmodel.TxInterface, findingID, orgID string, req *findingmodel.FindingUpdateRequest, updatedTime int64) (int64, error)
	InsertStatusHistory(tx dbmodel.TxInterface, h *findingmodel.FindingStatusHistory) error
}

// ControlStoreInterface is the subset of the control catalog the workflow
// modules depend on, mainly for scope expansion.
type ControlStoreInterface interface {
	ListControlIDs(ctx context.Context, orgID string) ([]string, error)
	ControlExists(ctx context.Context, controlID, orgID string) (bool, error)
}

// RiskStoreInterface is the subset of the risk register the snapshot engine
// depends on.
type RiskStoreInterface interface {
	CountByLevel(ctx context.Context, orgID string) (map[string]int, error)
}
