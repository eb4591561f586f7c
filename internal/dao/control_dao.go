package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trustvault/audit-management-api/internal/models"
)

// ControlDAO handles database operations for the control catalog
type ControlDAO struct {
	db *sqlx.DB
}

// NewControlDAO creates a new ControlDAO
func NewControlDAO(db *sqlx.DB) *ControlDAO {
	return &ControlDAO{db: db}
}

// Create inserts a new control
func (dao *ControlDAO) Create(ctx context.Context, control *models.Control) error {
	query := `
		INSERT INTO CONTROL (CONTROL_ID, ORG_ID, CODE, TITLE, DESCRIPTION, CATEGORY,
			IMPLEMENTATION_STATUS, CREATED_TIME, UPDATED_TIME)
		VALUES (:CONTROL_ID, :ORG_ID, :CODE, :TITLE, :DESCRIPTION, :CATEGORY,
			:IMPLEMENTATION_STATUS, :CREATED_TIME, :UPDATED_TIME)
	`

	_, err := dao.db.NamedExecContext(ctx, query, control)
	if err != nil {
		return fmt.Errorf("failed to create control: %w", err)
	}
	return nil
}

// GetByID retrieves a control by ID within an organization
func (dao *ControlDAO) GetByID(ctx context.Context, controlID, orgID string) (*models.Control, error) {
	query := `
		SELECT CONTROL_ID, ORG_ID, CODE, TITLE, DESCRIPTION, CATEGORY,
			IMPLEMENTATION_STATUS, CREATED_TIME, UPDATED_TIME
		FROM CONTROL
		WHERE CONTROL_ID = ? AND ORG_ID = ?
	`

	var control models.Control
	err := dao.db.GetContext(ctx, &control, query, controlID, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get control: %w", err)
	}
	return &control, nil
}

// List retrieves all controls for an organization
func (dao *ControlDAO) List(ctx context.Context, orgID string, limit, offset int) ([]models.Control, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM CONTROL WHERE ORG_ID = ?`
	if err := dao.db.GetContext(ctx, &total, countQuery, orgID); err != nil {
		return nil, 0, fmt.Errorf("failed to count controls: %w", err)
	}

	query := `
		SELECT CONTROL_ID, ORG_ID, CODE, TITLE, DESCRIPTION, CATEGORY,
			IMPLEMENTATION_STATUS, CREATED_TIME, UPDATED_TIME
		FROM CONTROL
		WHERE ORG_ID = ?
		ORDER BY CODE
		LIMIT ? OFFSET ?
	`

	controls := make([]models.Control, 0)
	if err := dao.db.SelectContext(ctx, &controls, query, orgID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list controls: %w", err)
	}
	return controls, total, nil
}

// Update updates an existing control. Returns the number of affected rows.
func (dao *ControlDAO) Update(ctx context.Context, control *models.Control) (int64, error) {
	query := `
		UPDATE CONTROL
		SET CODE = :CODE, TITLE = :TITLE, DESCRIPTION = :DESCRIPTION, CATEGORY = :CATEGORY,
			IMPLEMENTATION_STATUS = :IMPLEMENTATION_STATUS, UPDATED_TIME = :UPDATED_TIME
		WHERE CONTROL_ID = :CONTROL_ID AND ORG_ID = :ORG_ID
	`

	result, err := dao.db.NamedExecContext(ctx, query, control)
	if err != nil {
		return 0, fmt.Errorf("failed to update control: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a control. Returns the number of affected rows.
func (dao *ControlDAO) Delete(ctx context.Context, controlID, orgID string) (int64, error) {
	query := `DELETE FROM CONTROL WHERE CONTROL_ID = ? AND ORG_ID = ?`

	result, err := dao.db.ExecContext(ctx, query, controlID, orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete control: %w", err)
	}
	return result.RowsAffected()
}

// ListControlIDs returns the identifiers of every control in the organization.
// Used by audit scope expansion when an audit selects "all controls".
func (dao *ControlDAO) ListControlIDs(ctx context.Context, orgID string) ([]string, error) {
	query := `SELECT CONTROL_ID FROM CONTROL WHERE ORG_ID = ? ORDER BY CODE`

	ids := make([]string, 0)
	if err := dao.db.SelectContext(ctx, &ids, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list control ids: %w", err)
	}
	return ids, nil
}

// ControlExists reports whether a control exists within the organization.
func (dao *ControlDAO) ControlExists(ctx context.Context, controlID, orgID string) (bool, error) {
	query := `SELECT COUNT(*) FROM CONTROL WHERE CONTROL_ID = ? AND ORG_ID = ?`

	var count int
	if err := dao.db.GetContext(ctx, &count, query, controlID, orgID); err != nil {
		return false, fmt.Errorf("failed to check control existence: %w", err)
	}
	return count > 0, nil
}
