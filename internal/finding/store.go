package finding

import (
	"context"
	"fmt"

	"github.com/trustvault/audit-management-api/internal/finding/model"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/database/provider"
	dbutils "github.com/trustvault/audit-management-api/internal/system/database/utils"
)

var (
	queryCreateFinding = dbmodel.DBQuery{
		ID: "AMQ-FINDING-01",
		Query: "INSERT INTO FINDING (FINDING_ID, AUDIT_ID, CONTROL_ID, ORG_ID, SEVERITY, STATUS, " +
			"DESCRIPTION, ASSIGNED_TO, REMEDIATION_PLAN, DUE_DATE, CREATED_TIME, UPDATED_TIME) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	queryGetFindingByID = dbmodel.DBQuery{
		ID: "AMQ-FINDING-02",
		Query: "SELECT FINDING_ID, AUDIT_ID, CONTROL_ID, ORG_ID, SEVERITY, STATUS, DESCRIPTION, " +
			"ASSIGNED_TO, REMEDIATION_PLAN, DUE_DATE, EVIDENCE_URL, CLOSED_AT, CREATED_TIME, " +
			"UPDATED_TIME FROM FINDING WHERE FINDING_ID = ? AND ORG_ID = ?",
	}

	queryListFindingsByAudit = dbmodel.DBQuery{
		ID: "AMQ-FINDING-03",
		Query: "SELECT FINDING_ID, AUDIT_ID, CONTROL_ID, ORG_ID, SEVERITY, STATUS, DESCRIPTION, " +
			"ASSIGNED_TO, REMEDIATION_PLAN, DUE_DATE, EVIDENCE_URL, CLOSED_AT, CREATED_TIME, " +
			"UPDATED_TIME FROM FINDING WHERE AUDIT_ID = ? AND ORG_ID = ? ORDER BY CREATED_TIME ASC",
	}

	// Transition compare-and-swap: the STATUS predicate makes concurrent
	// transitions on one finding race safely, first writer wins. The
	// parent-lock subquery keeps a transition racing the sign commit from
	// landing after the snapshot is captured.
	queryUpdateFindingStatus = dbmodel.DBQuery{
		ID: "AMQ-FINDING-04",
		Query: "UPDATE FINDING SET STATUS = ?, CLOSED_AT = ?, UPDATED_TIME = ? " +
			"WHERE FINDING_ID = ? AND ORG_ID = ? AND STATUS = ? AND EXISTS " +
			"(SELECT 1 FROM AUDIT A WHERE A.AUDIT_ID = FINDING.AUDIT_ID " +
			"AND A.ORG_ID = FINDING.ORG_ID AND A.IS_LOCKED = 0)",
	}

	// Same parent-lock guard as the status transition.
	queryUpdateFindingFields = dbmodel.DBQuery{
		ID: "AMQ-FINDING-05",
		Query: "UPDATE FINDING SET REMEDIATION_PLAN = ?, DUE_DATE = ?, EVIDENCE_URL = ?, " +
			"UPDATED_TIME = ? WHERE FINDING_ID = ? AND ORG_ID = ? AND EXISTS " +
			"(SELECT 1 FROM AUDIT A WHERE A.AUDIT_ID = FINDING.AUDIT_ID " +
			"AND A.ORG_ID = FINDING.ORG_ID AND A.IS_LOCKED = 0)",
	}

	queryInsertFindingHistory = dbmodel.DBQuery{
		ID: "AMQ-FINDING-06",
		Query: "INSERT INTO FINDING_STATUS_HISTORY (HISTORY_ID, FINDING_ID, AUDIT_ID, ORG_ID, " +
			"CURRENT_STATUS, PREVIOUS_STATUS, ACTION_BY, ACTION_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	}

	queryGetFindingHistory = dbmodel.DBQuery{
		ID: "AMQ-FINDING-07",
		Query: "SELECT HISTORY_ID, FINDING_ID, AUDIT_ID, ORG_ID, CURRENT_STATUS, PREVIOUS_STATUS, " +
			"ACTION_BY, ACTION_TIME FROM FINDING_STATUS_HISTORY WHERE FINDING_ID = ? AND ORG_ID = ? " +
			"ORDER BY ACTION_TIME ASC",
	}
)

type findingStore struct{}

func newFindingStore() *findingStore {
	return &findingStore{}
}

func (s *findingStore) getClient() (provider.DBClientInterface, error) {
	return provider.GetDBProvider().GetAuditDBClient()
}

// GetFinding fetches a single finding scoped to the organization.
func (s *findingStore) GetFinding(_ context.Context, findingID, orgID string) (*model.Finding, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryGetFindingByID, findingID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	finding := mapRowToFinding(rows[0])
	return &finding, nil
}

// ListFindingsByAudit returns every finding raised on an audit, oldest first.
func (s *findingStore) ListFindingsByAudit(_ context.Context, auditID, orgID string) ([]model.Finding, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryListFindingsByAudit, auditID, orgID)
	if err != nil {
		return nil, err
	}

	findings := make([]model.Finding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, mapRowToFinding(row))
	}
	return findings, nil
}

// GetStatusHistory returns the workflow transition trail of a finding.
func (s *findingStore) GetStatusHistory(_ context.Context, findingID, orgID string) ([]model.FindingStatusHistory, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryGetFindingHistory, findingID, orgID)
	if err != nil {
		return nil, err
	}

	history := make([]model.FindingStatusHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, model.FindingStatusHistory{
			HistoryID:      dbutils.ParseString(row["HISTORY_ID"]),
			FindingID:      dbutils.ParseString(row["FINDING_ID"]),
			AuditID:        dbutils.ParseString(row["AUDIT_ID"]),
			OrgID:          dbutils.ParseString(row["ORG_ID"]),
			CurrentStatus:  dbutils.ParseString(row["CURRENT_STATUS"]),
			PreviousStatus: dbutils.ParseStringPtr(row["PREVIOUS_STATUS"]),
			ActionBy:       dbutils.ParseString(row["ACTION_BY"]),
			ActionTime:     dbutils.ParseInt64(row["ACTION_TIME"]),
		})
	}
	return history, nil
}

// CreateFinding inserts the finding row within the given transaction.
func (s *findingStore) CreateFinding(tx dbmodel.TxInterface, finding *model.Finding) error {
	_, err := s.execTx(tx, &queryCreateFinding,
		finding.FindingID, finding.AuditID, finding.ControlID, finding.OrgID,
		string(finding.Severity), string(finding.Status), finding.Description,
		finding.AssignedTo, finding.RemediationPlan, finding.DueDate,
		finding.CreatedTime, finding.UpdatedTime)
	return err
}

// UpdateFindingStatus moves the finding between workflow states, conditioned
// on the expected current state. Returns the number of rows updated.
func (s *findingStore) UpdateFindingStatus(tx dbmodel.TxInterface, findingID, orgID string,
	from, to model.FindingStatus, closedAt *int64, updatedTime int64) (int64, error) {

	return s.execTx(tx, &queryUpdateFindingStatus,
		string(to), closedAt, updatedTime, findingID, orgID, string(from))
}

// UpdateFindingFields writes the merged supporting fields of a finding.
func (s *findingStore) UpdateFindingFields(tx dbmodel.TxInterface, findingID, orgID string,
	req *model.FindingUpdateRequest, updatedTime int64) (int64, error) {

	return s.execTx(tx, &queryUpdateFindingFields,
		req.RemediationPlan, req.DueDate, req.EvidenceURL, updatedTime, findingID, orgID)
}

// InsertStatusHistory appends one workflow transition record.
func (s *findingStore) InsertStatusHistory(tx dbmodel.TxInterface, h *model.FindingStatusHistory) error {
	_, err := s.execTx(tx, &queryInsertFindingHistory,
		h.HistoryID, h.FindingID, h.AuditID, h.OrgID, h.CurrentStatus, h.PreviousStatus,
		h.ActionBy, h.ActionTime)
	return err
}

func (s *findingStore) execTx(tx dbmodel.TxInterface, q *dbmodel.DBQuery, args ...interface{}) (int64, error) {
	client, err := s.getClient()
	if err != nil {
		return 0, err
	}
	query := q.GetQuery(client.DBType())
	if client.DBType() == "postgres" || client.DBType() == "postgresql" {
		query = dbutils.ConvertToPostgresParams(query)
	}
	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", q.GetID(), err)
	}
	return result.RowsAffected()
}

func mapRowToFinding(row map[string]interface{}) model.Finding {
	return model.Finding{
		FindingID:       dbutils.ParseString(row["FINDING_ID"]),
		AuditID:         dbutils.ParseString(row["AUDIT_ID"]),
		ControlID:       dbutils.ParseString(row["CONTROL_ID"]),
		OrgID:           dbutils.ParseString(row["ORG_ID"]),
		Severity:        model.Severity(dbutils.ParseString(row["SEVERITY"])),
		Status:          model.FindingStatus(dbutils.ParseString(row["STATUS"])),
		Description:     dbutils.ParseString(row["DESCRIPTION"]),
		AssignedTo:      dbutils.ParseStringPtr(row["ASSIGNED_TO"]),
		RemediationPlan: dbutils.ParseStringPtr(row["REMEDIATION_PLAN"]),
		DueDate:         dbutils.ParseInt64Ptr(row["DUE_DATE"]),
		EvidenceURL:     dbutils.ParseStringPtr(row["EVIDENCE_URL"]),
		ClosedAt:        dbutils.ParseInt64Ptr(row["CLOSED_AT"]),
		CreatedTime:     dbutils.ParseInt64(row["CREATED_TIME"]),
		UpdatedTime:     dbutils.ParseInt64(row["UPDATED_TIME"]),
	}
}
