package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trustvault/audit-management-api/internal/models"
)

// RiskDAO handles database operations for the risk register
type RiskDAO struct {
	db *sqlx.DB
}

// NewRiskDAO creates a new RiskDAO
func NewRiskDAO(db *sqlx.DB) *RiskDAO {
	return &RiskDAO{db: db}
}

// Create inserts a new risk
func (dao *RiskDAO) Create(ctx context.Context, risk *models.Risk) error {
	query := `
		INSERT INTO RISK (RISK_ID, ORG_ID, TITLE, DESCRIPTION, RISK_LEVEL, STATUS,
			OWNER_USER_ID, CONTROL_ID, CREATED_TIME, UPDATED_TIME)
		VALUES (:RISK_ID, :ORG_ID, :TITLE, :DESCRIPTION, :RISK_LEVEL, :STATUS,
			:OWNER_USER_ID, :CONTROL_ID, :CREATED_TIME, :UPDATED_TIME)
	`

	_, err := dao.db.NamedExecContext(ctx, query, risk)
	if err != nil {
		return fmt.Errorf("failed to create risk: %w", err)
	}
	return nil
}

// GetByID retrieves a risk by ID within an organization
func (dao *RiskDAO) GetByID(ctx context.Context, riskID, orgID string) (*models.Risk, error) {
	query := `
		SELECT RISK_ID, ORG_ID, TITLE, DESCRIPTION, RISK_LEVEL, STATUS,
			OWNER_USER_ID, CONTROL_ID, CREATED_TIME, UPDATED_TIME
		FROM RISK
		WHERE RISK_ID = ? AND ORG_ID = ?
	`

	var risk models.Risk
	err := dao.db.GetContext(ctx, &risk, query, riskID, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk: %w", err)
	}
	return &risk, nil
}

// List retrieves risks for an organization, optionally filtered by level
func (dao *RiskDAO) List(ctx context.Context, orgID, level string, limit, offset int) ([]models.Risk, int, error) {
	countQuery := `SELECT COUNT(*) FROM RISK WHERE ORG_ID = ?`
	listQuery := `
		SELECT RISK_ID, ORG_ID, TITLE, DESCRIPTION, RISK_LEVEL, STATUS,
			OWNER_USER_ID, CONTROL_ID, CREATED_TIME, UPDATED_TIME
		FROM RISK
		WHERE ORG_ID = ?
	`
	countArgs := []interface{}{orgID}
	listArgs := []interface{}{orgID}
	if level != "" {
		countQuery += ` AND RISK_LEVEL = ?`
		listQuery += ` AND RISK_LEVEL = ?`
		countArgs = append(countArgs, level)
		listArgs = append(listArgs, level)
	}
	listQuery += ` ORDER BY CREATED_TIME DESC LIMIT ? OFFSET ?`
	listArgs = append(listArgs, limit, offset)

	var total int
	if err := dao.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count risks: %w", err)
	}

	risks := make([]models.Risk, 0)
	if err := dao.db.SelectContext(ctx, &risks, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list risks: %w", err)
	}
	return risks, total, nil
}

// Update updates an existing risk. Returns the number of affected rows.
func (dao *RiskDAO) Update(ctx context.Context, risk *models.Risk) (int64, error) {
	query := `
		UPDATE RISK
		SET TITLE = :TITLE, DESCRIPTION = :DESCRIPTION, RISK_LEVEL = :RISK_LEVEL,
			STATUS = :STATUS, OWNER_USER_ID = :OWNER_USER_ID, CONTROL_ID = :CONTROL_ID,
			UPDATED_TIME = :UPDATED_TIME
		WHERE RISK_ID = :RISK_ID AND ORG_ID = :ORG_ID
	`

	result, err := dao.db.NamedExecContext(ctx, query, risk)
	if err != nil {
		return 0, fmt.Errorf("failed to update risk: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a risk. Returns the number of affected rows.
func (dao *RiskDAO) Delete(ctx context.Context, riskID, orgID string) (int64, error) {
	query := `DELETE FROM RISK WHERE RISK_ID = ? AND ORG_ID = ?`

	result, err := dao.db.ExecContext(ctx, query, riskID, orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete risk: %w", err)
	}
	return result.RowsAffected()
}

// CountByLevel returns the number of open risks per level. Consumed by the
// audit snapshot engine at completion time.
func (dao *RiskDAO) CountByLevel(ctx context.Context, orgID string) (map[string]int, error) {
	query := `
		SELECT RISK_LEVEL, COUNT(*) AS CNT
		FROM RISK
		WHERE ORG_ID = ?
		GROUP BY RISK_LEVEL
	`

	rows, err := dao.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count risks by level: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan risk count: %w", err)
		}
		counts[level] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk counts: %w", err)
	}
	return counts, nil
}
