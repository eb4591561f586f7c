package models

// Control represents one entry of the organization's control catalog.
type Control struct {
	ControlID            string  `json:"controlId" db:"CONTROL_ID"`
	OrgID                string  `json:"orgId" db:"ORG_ID"`
	Code                 string  `json:"code" db:"CODE"`
	Title                string  `json:"title" db:"TITLE"`
	Description          *string `json:"description,omitempty" db:"DESCRIPTION"`
	Category             *string `json:"category,omitempty" db:"CATEGORY"`
	ImplementationStatus string  `json:"implementationStatus" db:"IMPLEMENTATION_STATUS"`
	CreatedTime          int64   `json:"createdTime" db:"CREATED_TIME"`
	UpdatedTime          int64   `json:"updatedTime" db:"UPDATED_TIME"`
}

// ControlCreateRequest represents the request to create a control
type ControlCreateRequest struct {
	Code                 string  `json:"code" binding:"required,max=64"`
	Title                string  `json:"title" binding:"required,max=255"`
	Description          *string `json:"description,omitempty" binding:"omitempty,max=4000"`
	Category             *string `json:"category,omitempty" binding:"omitempty,max=255"`
	ImplementationStatus string  `json:"implementationStatus,omitempty"`
}

// ControlUpdateRequest represents the request to update a control
// All fields are required - no partial updates allowed
type ControlUpdateRequest struct {
	Code                 string  `json:"code" binding:"required,max=64"`
	Title                string  `json:"title" binding:"required,max=255"`
	Description          *string `json:"description,omitempty" binding:"omitempty,max=4000"`
	Category             *string `json:"category,omitempty" binding:"omitempty,max=255"`
	ImplementationStatus string  `json:"implementationStatus" binding:"required"`
}

// ControlListResponse represents a list of controls
type ControlListResponse struct {
	Controls []Control `json:"controls"`
	Total    int       `json:"total"`
}

// ValidImplementationStatuses are the accepted control implementation states.
var ValidImplementationStatuses = map[string]bool{
	"NOT_IMPLEMENTED": true,
	"IN_PROGRESS":     true,
	"IMPLEMENTED":     true,
	"NOT_APPLICABLE":  true,
}
