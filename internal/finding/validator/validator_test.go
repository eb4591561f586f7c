package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trustvault/audit-management-api/internal/finding/model"
)

func strptr(s string) *string { return &s }

func TestValidateCreateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.FindingCreateRequest
		wantErr bool
	}{
		{"valid", &model.FindingCreateRequest{
			ControlID: "ctrl-1", Severity: "MAJOR", Description: "Quarterly reviews missing",
		}, false},
		{"nil request", nil, true},
		{"missing control", &model.FindingCreateRequest{
			Severity: "MAJOR", Description: "x",
		}, true},
		{"unknown severity", &model.FindingCreateRequest{
			ControlID: "ctrl-1", Severity: "BLOCKER", Description: "x",
		}, true},
		{"missing description", &model.FindingCreateRequest{
			ControlID: "ctrl-1", Severity: "MINOR",
		}, true},
		{"description too long", &model.FindingCreateRequest{
			ControlID: "ctrl-1", Severity: "MINOR", Description: strings.Repeat("a", 4001),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcErr := ValidateCreateRequest(tt.req)
			if tt.wantErr {
				assert.NotNil(t, svcErr)
			} else {
				assert.Nil(t, svcErr)
			}
		})
	}
}

func TestValidateUpdateRequest(t *testing.T) {
	due := int64(1800000000000)

	tests := []struct {
		name    string
		req     *model.FindingUpdateRequest
		wantErr bool
	}{
		{"plan only", &model.FindingUpdateRequest{RemediationPlan: strptr("rotate keys")}, false},
		{"due date only", &model.FindingUpdateRequest{DueDate: &due}, false},
		{"valid evidence url", &model.FindingUpdateRequest{
			EvidenceURL: strptr("https://evidence.example.com/report.pdf"),
		}, false},
		{"nil request", nil, true},
		{"no fields", &model.FindingUpdateRequest{}, true},
		{"malformed evidence url", &model.FindingUpdateRequest{
			EvidenceURL: strptr("not a url"),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcErr := ValidateUpdateRequest(tt.req)
			if tt.wantErr {
				assert.NotNil(t, svcErr)
			} else {
				assert.Nil(t, svcErr)
			}
		})
	}
}
