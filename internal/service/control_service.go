package service

import (
	"context"
	"fmt"

	"github.com/trustvault/audit-management-api/internal/dao"
	"github.com/trustvault/audit-management-api/internal/models"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

// ControlService provides business logic for the control catalog
type ControlService struct {
	controlDAO *dao.ControlDAO
}

// NewControlService creates a new control service instance
func NewControlService(controlDAO *dao.ControlDAO) *ControlService {
	return &ControlService{controlDAO: controlDAO}
}

// CreateControl creates a new catalog control
func (s *ControlService) CreateControl(ctx context.Context, orgID string, req *models.ControlCreateRequest) (*models.Control, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("control code cannot be empty")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("control title cannot be empty")
	}

	status := req.ImplementationStatus
	if status == "" {
		status = "NOT_IMPLEMENTED"
	}
	if !models.ValidImplementationStatuses[status] {
		return nil, fmt.Errorf("invalid implementation status '%s'", status)
	}

	now := utils.GetCurrentTimeMillis()
	control := &models.Control{
		ControlID:            utils.GenerateUUID(),
		OrgID:                orgID,
		Code:                 req.Code,
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		ImplementationStatus: status,
		CreatedTime:          now,
		UpdatedTime:          now,
	}

	if err := s.controlDAO.Create(ctx, control); err != nil {
		return nil, fmt.Errorf("failed to create control: %w", err)
	}
	return control, nil
}

// GetControl retrieves a single control
func (s *ControlService) GetControl(ctx context.Context, controlID, orgID string) (*models.Control, error) {
	control, err := s.controlDAO.GetByID(ctx, controlID, orgID)
	if err != nil {
		return nil, err
	}
	if control == nil {
		return nil, fmt.Errorf("control not found")
	}
	return control, nil
}

// ListControls retrieves a page of the organization's controls
func (s *ControlService) ListControls(ctx context.Context, orgID string, limit, offset int) (*models.ControlListResponse, error) {
	controls, total, err := s.controlDAO.List(ctx, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.ControlListResponse{Controls: controls, Total: total}, nil
}

// UpdateControl replaces the mutable fields of a control
func (s *ControlService) UpdateControl(ctx context.Context, controlID, orgID string, req *models.ControlUpdateRequest) (*models.Control, error) {
	if !models.ValidImplementationStatuses[req.ImplementationStatus] {
		return nil, fmt.Errorf("invalid implementation status '%s'", req.ImplementationStatus)
	}

	existing, err := s.controlDAO.GetByID(ctx, controlID, orgID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("control not found")
	}

	existing.Code = req.Code
	existing.Title = req.Title
	existing.Description = req.Description
	existing.Category = req.Category
	existing.ImplementationStatus = req.ImplementationStatus
	existing.UpdatedTime = utils.GetCurrentTimeMillis()

	rows, err := s.controlDAO.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("control not found")
	}
	return existing, nil
}

// DeleteControl removes a control from the catalog
func (s *ControlService) DeleteControl(ctx context.Context, controlID, orgID string) error {
	rows, err := s.controlDAO.Delete(ctx, controlID, orgID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("control not found")
	}
	return nil
}
