package dao

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvault/audit-management-api/internal/models"
)

func TestRiskDAO_Create(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO RISK")).
		WithArgs("risk-1", "org-1", "Unpatched servers", nil, "HIGH", "OPEN",
			nil, nil, int64(1700000000000), int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := dao.Create(context.Background(), &models.Risk{
		RiskID:      "risk-1",
		OrgID:       "org-1",
		Title:       "Unpatched servers",
		Level:       "HIGH",
		Status:      "OPEN",
		CreatedTime: 1700000000000,
		UpdatedTime: 1700000000000,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskDAO_GetByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM RISK")).
		WithArgs("risk-404", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"RISK_ID", "ORG_ID", "TITLE", "DESCRIPTION",
			"RISK_LEVEL", "STATUS", "OWNER_USER_ID", "CONTROL_ID", "CREATED_TIME", "UPDATED_TIME"}))

	risk, err := dao.GetByID(context.Background(), "risk-404", "org-1")

	require.NoError(t, err)
	assert.Nil(t, risk)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskDAO_List_FilteredByLevel(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM RISK WHERE ORG_ID = ? AND RISK_LEVEL = ?")).
		WithArgs("org-1", "HIGH").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM RISK")).
		WithArgs("org-1", "HIGH", 30, 0).
		WillReturnRows(sqlmock.NewRows([]string{"RISK_ID", "ORG_ID", "TITLE", "DESCRIPTION",
			"RISK_LEVEL", "STATUS", "OWNER_USER_ID", "CONTROL_ID", "CREATED_TIME", "UPDATED_TIME"}).
			AddRow("risk-1", "org-1", "Unpatched servers", nil, "HIGH", "OPEN", nil, nil,
				int64(1), int64(1)))

	risks, total, err := dao.List(context.Background(), "org-1", "HIGH", 30, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, risks, 1)
	assert.Equal(t, "HIGH", risks[0].Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskDAO_Update(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE RISK")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := dao.Update(context.Background(), &models.Risk{
		RiskID:      "risk-1",
		OrgID:       "org-1",
		Title:       "Unpatched servers",
		Level:       "CRITICAL",
		Status:      "OPEN",
		UpdatedTime: 1700000000001,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskDAO_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM RISK WHERE RISK_ID = ? AND ORG_ID = ?")).
		WithArgs("risk-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := dao.Delete(context.Background(), "risk-1", "org-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskDAO_CountByLevel(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewRiskDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY RISK_LEVEL")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"RISK_LEVEL", "CNT"}).
			AddRow("HIGH", 3).
			AddRow("LOW", 1))

	counts, err := dao.CountByLevel(context.Background(), "org-1")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"HIGH": 3, "LOW": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
