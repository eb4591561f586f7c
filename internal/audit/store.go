package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustvault/audit-management-api/internal/audit/model"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/database/provider"
	dbutils "github.com/trustvault/audit-management-api/internal/system/database/utils"
)

var (
	queryCreateAudit = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-01",
		Query: "INSERT INTO AUDIT (AUDIT_ID, ORG_ID, NAME, AUDIT_TYPE, SCOPE_ALL, STATUS, " +
			"SCHEDULED_START, SCHEDULED_END, ASSIGNED_USER_ID, EXTERNAL_AUDITOR_EMAIL, " +
			"IS_LOCKED, CREATED_TIME, UPDATED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)",
	}

	queryGetAuditByID = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-02",
		Query: "SELECT AUDIT_ID, ORG_ID, NAME, AUDIT_TYPE, SCOPE_ALL, STATUS, SCHEDULED_START, " +
			"SCHEDULED_END, CLOSED_AT, ASSIGNED_USER_ID, EXTERNAL_AUDITOR_EMAIL, SUMMARY, " +
			"CONCLUSION, SIGNED_DOCUMENT_REF, IS_LOCKED, SNAPSHOT, CREATED_TIME, UPDATED_TIME " +
			"FROM AUDIT WHERE AUDIT_ID = ? AND ORG_ID = ?",
	}

	queryUpdateAuditStatus = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-03",
		Query: "UPDATE AUDIT SET STATUS = ?, UPDATED_TIME = ? " +
			"WHERE AUDIT_ID = ? AND ORG_ID = ? AND STATUS = ? AND IS_LOCKED = 0",
	}

	queryUpdateReportFields = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-04",
		Query: "UPDATE AUDIT SET SUMMARY = ?, CONCLUSION = ?, SIGNED_DOCUMENT_REF = ?, " +
			"UPDATED_TIME = ? WHERE AUDIT_ID = ? AND ORG_ID = ? AND IS_LOCKED = 0",
	}

	// The completion compare-and-swap. The IS_LOCKED predicate guarantees that
	// of two concurrent sign requests exactly one updates the row; the loser
	// sees zero affected rows.
	queryCompleteAndLockAudit = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-05",
		Query: "UPDATE AUDIT SET STATUS = ?, SUMMARY = ?, CONCLUSION = ?, SIGNED_DOCUMENT_REF = ?, " +
			"SNAPSHOT = ?, IS_LOCKED = 1, CLOSED_AT = ?, UPDATED_TIME = ? " +
			"WHERE AUDIT_ID = ? AND ORG_ID = ? AND IS_LOCKED = 0",
	}

	queryAddAuditControl = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-06",
		Query: "INSERT INTO AUDIT_CONTROL (AUDIT_ID, CONTROL_ID, ORG_ID, REVIEW_STATUS, NOTES, " +
			"UPDATED_TIME) VALUES (?, ?, ?, ?, ?, ?)",
	}

	queryGetAuditControls = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-07",
		Query: "SELECT AUDIT_ID, CONTROL_ID, ORG_ID, REVIEW_STATUS, NOTES, UPDATED_TIME " +
			"FROM AUDIT_CONTROL WHERE AUDIT_ID = ? AND ORG_ID = ? ORDER BY CONTROL_ID",
	}

	// Guarded by a parent-lock subquery so a review write racing the sign
	// transition cannot land after the snapshot is captured.
	queryUpdateControlReview = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-08",
		Query: "UPDATE AUDIT_CONTROL SET REVIEW_STATUS = ?, NOTES = ?, UPDATED_TIME = ? " +
			"WHERE AUDIT_ID = ? AND CONTROL_ID = ? AND ORG_ID = ? AND EXISTS " +
			"(SELECT 1 FROM AUDIT A WHERE A.AUDIT_ID = AUDIT_CONTROL.AUDIT_ID " +
			"AND A.ORG_ID = AUDIT_CONTROL.ORG_ID AND A.IS_LOCKED = 0)",
	}

	queryInsertStatusHistory = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-09",
		Query: "INSERT INTO AUDIT_STATUS_HISTORY (HISTORY_ID, AUDIT_ID, ORG_ID, CURRENT_STATUS, " +
			"PREVIOUS_STATUS, ACTION_BY, ACTION_TIME) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	queryGetStatusHistory = dbmodel.DBQuery{
		ID: "AMQ-AUDIT-10",
		Query: "SELECT HISTORY_ID, AUDIT_ID, ORG_ID, CURRENT_STATUS, PREVIOUS_STATUS, ACTION_BY, " +
			"ACTION_TIME FROM AUDIT_STATUS_HISTORY WHERE AUDIT_ID = ? AND ORG_ID = ? " +
			"ORDER BY ACTION_TIME ASC",
	}
)

type auditStore struct{}

func newAuditStore() *auditStore {
	return &auditStore{}
}

func (s *auditStore) getClient() (provider.DBClientInterface, error) {
	return provider.GetDBProvider().GetAuditDBClient()
}

// GetAudit fetches a single audit scoped to the organization.
func (s *auditStore) GetAudit(_ context.Context, auditID, orgID string) (*model.Audit, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryGetAuditByID, auditID, orgID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapRowToAudit(rows[0])
}

// ListAudits returns a page of the organization's audits with optional status
// and type filters, newest first, plus the unfiltered-page total.
func (s *auditStore) ListAudits(_ context.Context, orgID, status, auditType string,
	limit, offset int) ([]model.Audit, int, error) {

	client, err := s.getClient()
	if err != nil {
		return nil, 0, err
	}

	conditions := []string{"ORG_ID = ?"}
	args := []interface{}{orgID}
	if status != "" {
		conditions = append(conditions, "STATUS = ?")
		args = append(args, status)
	}
	if auditType != "" {
		conditions = append(conditions, "AUDIT_TYPE = ?")
		args = append(args, auditType)
	}
	where := strings.Join(conditions, " AND ")

	countQuery := dbmodel.DBQuery{
		ID:    "AMQ-AUDIT-11",
		Query: "SELECT COUNT(*) AS TOTAL FROM AUDIT WHERE " + where,
	}
	countRows, err := client.Query(&countQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	if len(countRows) > 0 {
		total = dbutils.ParseInt(countRows[0]["TOTAL"])
	}

	listQuery := dbmodel.DBQuery{
		ID: "AMQ-AUDIT-12",
		Query: dbutils.BuildPaginationQuery(
			"SELECT AUDIT_ID, ORG_ID, NAME, AUDIT_TYPE, SCOPE_ALL, STATUS, SCHEDULED_START, "+
				"SCHEDULED_END, CLOSED_AT, ASSIGNED_USER_ID, EXTERNAL_AUDITOR_EMAIL, SUMMARY, "+
				"CONCLUSION, SIGNED_DOCUMENT_REF, IS_LOCKED, SNAPSHOT, CREATED_TIME, UPDATED_TIME "+
				"FROM AUDIT WHERE "+where+" ORDER BY CREATED_TIME DESC", limit, offset),
	}
	rows, err := client.Query(&listQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	audits := make([]model.Audit, 0, len(rows))
	for _, row := range rows {
		audit, err := mapRowToAudit(row)
		if err != nil {
			return nil, 0, err
		}
		audits = append(audits, *audit)
	}
	return audits, total, nil
}

// GetAuditControls returns the control scope of an audit.
func (s *auditStore) GetAuditControls(_ context.Context, auditID, orgID string) ([]model.AuditControl, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryGetAuditControls, auditID, orgID)
	if err != nil {
		return nil, err
	}

	controls := make([]model.AuditControl, 0, len(rows))
	for _, row := range rows {
		controls = append(controls, model.AuditControl{
			AuditID:      dbutils.ParseString(row["AUDIT_ID"]),
			ControlID:    dbutils.ParseString(row["CONTROL_ID"]),
			OrgID:        dbutils.ParseString(row["ORG_ID"]),
			ReviewStatus: model.ReviewStatus(dbutils.ParseString(row["REVIEW_STATUS"])),
			Notes:        dbutils.ParseStringPtr(row["NOTES"]),
			UpdatedTime:  dbutils.ParseInt64(row["UPDATED_TIME"]),
		})
	}
	return controls, nil
}

// GetStatusHistory returns the lifecycle transition trail of an audit.
func (s *auditStore) GetStatusHistory(_ context.Context, auditID, orgID string) ([]model.AuditStatusHistory, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	rows, err := client.Query(&queryGetStatusHistory, auditID, orgID)
	if err != nil {
		return nil, err
	}

	history := make([]model.AuditStatusHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, model.AuditStatusHistory{
			HistoryID:      dbutils.ParseString(row["HISTORY_ID"]),
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

// CreateAudit inserts the audit row within the given transaction.
func (s *auditStore) CreateAudit(tx dbmodel.TxInterface, audit *model.Audit) error {
	_, err := s.execTx(tx, &queryCreateAudit,
		audit.AuditID, audit.OrgID, audit.Name, string(audit.AuditType), audit.ScopeAll,
		string(audit.Status), audit.ScheduledStart, audit.ScheduledEnd, audit.AssignedUserID,
		audit.ExternalAuditorEmail, audit.CreatedTime, audit.UpdatedTime)
	return err
}

// AddAuditControl inserts one scope row within the given transaction.
func (s *auditStore) AddAuditControl(tx dbmodel.TxInterface, ac *model.AuditControl) error {
	_, err := s.execTx(tx, &queryAddAuditControl,
		ac.AuditID, ac.ControlID, ac.OrgID, string(ac.ReviewStatus), ac.Notes, ac.UpdatedTime)
	return err
}

// UpdateAuditStatus moves the audit between lifecycle states, conditioned on
// the expected current state. Returns the number of rows updated.
func (s *auditStore) UpdateAuditStatus(tx dbmodel.TxInterface, auditID, orgID string,
	from, to model.AuditStatus, updatedTime int64) (int64, error) {

	return s.execTx(tx, &queryUpdateAuditStatus,
		string(to), updatedTime, auditID, orgID, string(from))
}

// UpdateReportFields writes the merged report fields of an unlocked audit.
func (s *auditStore) UpdateReportFields(tx dbmodel.TxInterface, auditID, orgID string,
	req *model.AuditReportUpdateRequest, updatedTime int64) (int64, error) {

	return s.execTx(tx, &queryUpdateReportFields,
		req.Summary, req.Conclusion, req.SignedDocumentRef, updatedTime, auditID, orgID)
}

// UpdateControlReview records a review outcome on one in-scope control.
func (s *auditStore) UpdateControlReview(tx dbmodel.TxInterface, auditID, controlID, orgID string,
	status model.ReviewStatus, notes *string, updatedTime int64) (int64, error) {

	return s.execTx(tx, &queryUpdateControlReview,
		string(status), notes, updatedTime, auditID, controlID, orgID)
}

// CompleteAndLockAudit performs the terminal sign transition as a single
// compare-and-swap on the unlocked row.
func (s *auditStore) CompleteAndLockAudit(tx dbmodel.TxInterface, audit *model.Audit) (int64, error) {
	var snapshot interface{}
	if len(audit.Snapshot) > 0 {
		snapshot = string(audit.Snapshot)
	}
	return s.execTx(tx, &queryCompleteAndLockAudit,
		string(model.StatusCompleted), audit.Summary, audit.Conclusion, audit.SignedDocumentRef,
		snapshot, audit.ClosedAt, audit.UpdatedTime, audit.AuditID, audit.OrgID)
}

// InsertStatusHistory appends one lifecycle transition record.
func (s *auditStore) InsertStatusHistory(tx dbmodel.TxInterface, h *model.AuditStatusHistory) error {
	_, err := s.execTx(tx, &queryInsertStatusHistory,
		h.HistoryID, h.AuditID, h.OrgID, h.CurrentStatus, h.PreviousStatus, h.ActionBy, h.ActionTime)
	return err
}

func (s *auditStore) execTx(tx dbmodel.TxInterface, q *dbmodel.DBQuery, args ...interface{}) (int64, error) {
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

func mapRowToAudit(row map[string]interface{}) (*model.Audit, error) {
	audit := &model.Audit{
		AuditID:              dbutils.ParseString(row["AUDIT_ID"]),
		OrgID:                dbutils.ParseString(row["ORG_ID"]),
		Name:                 dbutils.ParseString(row["NAME"]),
		AuditType:            model.AuditType(dbutils.ParseString(row["AUDIT_TYPE"])),
		ScopeAll:             dbutils.ParseBool(row["SCOPE_ALL"]),
		Status:               model.AuditStatus(dbutils.ParseString(row["STATUS"])),
		ScheduledStart:       dbutils.ParseInt64(row["SCHEDULED_START"]),
		ScheduledEnd:         dbutils.ParseInt64Ptr(row["SCHEDULED_END"]),
		ClosedAt:             dbutils.ParseInt64Ptr(row["CLOSED_AT"]),
		AssignedUserID:       dbutils.ParseStringPtr(row["ASSIGNED_USER_ID"]),
		ExternalAuditorEmail: dbutils.ParseStringPtr(row["EXTERNAL_AUDITOR_EMAIL"]),
		Summary:              dbutils.ParseStringPtr(row["SUMMARY"]),
		Conclusion:           dbutils.ParseStringPtr(row["CONCLUSION"]),
		SignedDocumentRef:    dbutils.ParseStringPtr(row["SIGNED_DOCUMENT_REF"]),
		IsLocked:             dbutils.ParseBool(row["IS_LOCKED"]),
		CreatedTime:          dbutils.ParseInt64(row["CREATED_TIME"]),
		UpdatedTime:          dbutils.ParseInt64(row["UPDATED_TIME"]),
	}
	if audit.AuditID == "" {
		return nil, fmt.Errorf("audit row missing identifier")
	}
	if raw := dbutils.ParseStringPtr(row["SNAPSHOT"]); raw != nil {
		audit.Snapshot = []byte(*raw)
	}
	return audit, nil
}
