package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvault/audit-management-api/internal/system/error/apierror"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
)

func TestSendError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *serviceerror.ServiceError
		wantStatus int
	}{
		{"not found", &serviceerror.ResourceNotFoundError, http.StatusNotFound},
		{"permission", &serviceerror.PermissionError, http.StatusForbidden},
		{"invalid transition", &serviceerror.InvalidTransitionError, http.StatusConflict},
		{"locked", &serviceerror.AuditLockedError, http.StatusLocked},
		{"validation", &serviceerror.ValidationError, http.StatusBadRequest},
		{"database", &serviceerror.DatabaseError, http.StatusInternalServerError},
		{"internal", &serviceerror.InternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SendError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var body apierror.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error, body.Code)
		})
	}
}

func TestJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONResponse(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
