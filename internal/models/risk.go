package models

// Risk represents one entry of the organization's risk register.
type Risk struct {
	RiskID      string  `json:"riskId" db:"RISK_ID"`
	OrgID       string  `json:"orgId" db:"ORG_ID"`
	Title       string  `json:"title" db:"TITLE"`
	Description *string `json:"description,omitempty" db:"DESCRIPTION"`
	Level       string  `json:"level" db:"RISK_LEVEL"`
	Status      string  `json:"status" db:"STATUS"`
	OwnerUserID *string `json:"ownerUserId,omitempty" db:"OWNER_USER_ID"`
	ControlID   *string `json:"controlId,omitempty" db:"CONTROL_ID"`
	CreatedTime int64   `json:"createdTime" db:"CREATED_TIME"`
	UpdatedTime int64   `json:"updatedTime" db:"UPDATED_TIME"`
}

// RiskCreateRequest represents the request to create a risk
type RiskCreateRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=4000"`
	Level       string  `json:"level" binding:"required"`
	OwnerUserID *string `json:"ownerUserId,omitempty"`
	ControlID   *string `json:"controlId,omitempty"`
}

// RiskUpdateRequest represents the request to update a risk
// All fields are required - no partial updates allowed
type RiskUpdateRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=4000"`
	Level       string  `json:"level" binding:"required"`
	Status      string  `json:"status" binding:"required"`
	OwnerUserID *string `json:"ownerUserId,omitempty"`
	ControlID   *string `json:"controlId,omitempty"`
}

// RiskListResponse represents a list of risks
type RiskListResponse struct {
	Risks []Risk `json:"risks"`
	Total int    `json:"total"`
}

// ValidRiskLevels are the accepted risk severity levels.
var ValidRiskLevels = map[string]bool{
	"LOW":      true,
	"MEDIUM":   true,
	"HIGH":     true,
	"CRITICAL": true,
}

// ValidRiskStatuses are the accepted risk lifecycle states.
var ValidRiskStatuses = map[string]bool{
	"OPEN":      true,
	"MITIGATED": true,
	"ACCEPTED":  true,
	"CLOSED":    true,
}
