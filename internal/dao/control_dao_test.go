package dao

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvault/audit-management-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestControlDAO_Create(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO CONTROL")).
		WithArgs("ctrl-1", "org-1", "AC-1", "Access Control Policy", nil, nil,
			"NOT_IMPLEMENTED", int64(1700000000000), int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := dao.Create(context.Background(), &models.Control{
		ControlID:            "ctrl-1",
		OrgID:                "org-1",
		Code:                 "AC-1",
		Title:                "Access Control Policy",
		ImplementationStatus: "NOT_IMPLEMENTED",
		CreatedTime:          1700000000000,
		UpdatedTime:          1700000000000,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	columns := []string{"CONTROL_ID", "ORG_ID", "CODE", "TITLE", "DESCRIPTION", "CATEGORY",
		"IMPLEMENTATION_STATUS", "CREATED_TIME", "UPDATED_TIME"}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM CONTROL")).
			WithArgs("ctrl-1", "org-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("ctrl-1", "org-1", "AC-1", "Access Control Policy", nil, nil,
					"IMPLEMENTED", int64(1700000000000), int64(1700000000000)))

		control, err := dao.GetByID(context.Background(), "ctrl-1", "org-1")
		require.NoError(t, err)
		require.NotNil(t, control)
		assert.Equal(t, "AC-1", control.Code)
		assert.Equal(t, "IMPLEMENTED", control.ImplementationStatus)
	})

	t.Run("missing row maps to nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM CONTROL")).
			WithArgs("ctrl-404", "org-1").
			WillReturnRows(sqlmock.NewRows(columns))

		control, err := dao.GetByID(context.Background(), "ctrl-404", "org-1")
		require.NoError(t, err)
		assert.Nil(t, control)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_List(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM CONTROL WHERE ORG_ID = ?")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM CONTROL")).
		WithArgs("org-1", 30, 0).
		WillReturnRows(sqlmock.NewRows([]string{"CONTROL_ID", "ORG_ID", "CODE", "TITLE",
			"DESCRIPTION", "CATEGORY", "IMPLEMENTATION_STATUS", "CREATED_TIME", "UPDATED_TIME"}).
			AddRow("ctrl-1", "org-1", "AC-1", "Access Control Policy", nil, nil, "IMPLEMENTED",
				int64(1), int64(1)).
			AddRow("ctrl-2", "org-1", "AC-2", "Account Management", nil, nil, "IN_PROGRESS",
				int64(2), int64(2)))

	controls, total, err := dao.List(context.Background(), "org-1", 30, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, controls, 2)
	assert.Equal(t, "AC-2", controls[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_Update(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE CONTROL")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := dao.Update(context.Background(), &models.Control{
		ControlID:            "ctrl-1",
		OrgID:                "org-1",
		Code:                 "AC-1",
		Title:                "Access Control Policy v2",
		ImplementationStatus: "IMPLEMENTED",
		UpdatedTime:          1700000000001,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM CONTROL WHERE CONTROL_ID = ? AND ORG_ID = ?")).
		WithArgs("ctrl-1", "org-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := dao.Delete(context.Background(), "ctrl-1", "org-2")

	require.NoError(t, err)
	assert.Equal(t, int64(0), rows, "cross-org delete must not match")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_ListControlIDs(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT CONTROL_ID FROM CONTROL WHERE ORG_ID = ? ORDER BY CODE")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"CONTROL_ID"}).
			AddRow("ctrl-1").AddRow("ctrl-2").AddRow("ctrl-3"))

	ids, err := dao.ListControlIDs(context.Background(), "org-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl-1", "ctrl-2", "ctrl-3"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestControlDAO_ControlExists(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewControlDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM CONTROL WHERE CONTROL_ID = ? AND ORG_ID = ?")).
		WithArgs("ctrl-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM CONTROL WHERE CONTROL_ID = ? AND ORG_ID = ?")).
		WithArgs("ctrl-1", "org-2").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	exists, err := dao.ControlExists(context.Background(), "ctrl-1", "org-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = dao.ControlExists(context.Background(), "ctrl-1", "org-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
