package service

import (
	"context"
	"fmt"

	"github.com/trustvault/audit-management-api/internal/dao"
	"github.com/trustvault/audit-management-api/internal/models"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

// RiskService provides business logic for the risk register
type RiskService struct {
	riskDAO    *dao.RiskDAO
	controlDAO *dao.ControlDAO
}

// NewRiskService creates a new risk service instance
func NewRiskService(riskDAO *dao.RiskDAO, controlDAO *dao.ControlDAO) *RiskService {
	return &RiskService{riskDAO: riskDAO, controlDAO: controlDAO}
}

// CreateRisk creates a new register entry
func (s *RiskService) CreateRisk(ctx context.Context, orgID string, req *models.RiskCreateRequest) (*models.Risk, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("risk title cannot be empty")
	}
	if !models.ValidRiskLevels[req.Level] {
		return nil, fmt.Errorf("invalid risk level '%s'", req.Level)
	}
	if req.ControlID != nil && *req.ControlID != "" {
		exists, err := s.controlDAO.ControlExists(ctx, *req.ControlID, orgID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("linked control not found")
		}
	}

	now := utils.GetCurrentTimeMillis()
	risk := &models.Risk{
		RiskID:      utils.GenerateUUID(),
		OrgID:       orgID,
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Status:      "OPEN",
		OwnerUserID: req.OwnerUserID,
		ControlID:   req.ControlID,
		CreatedTime: now,
		UpdatedTime: now,
	}

	if err := s.riskDAO.Create(ctx, risk); err != nil {
		return nil, fmt.Errorf("failed to create risk: %w", err)
	}
	return risk, nil
}

// GetRisk retrieves a single risk
func (s *RiskService) GetRisk(ctx context.Context, riskID, orgID string) (*models.Risk, error) {
	risk, err := s.riskDAO.GetByID(ctx, riskID, orgID)
	if err != nil {
		return nil, err
	}
	if risk == nil {
		return nil, fmt.Errorf("risk not found")
	}
	return risk, nil
}

// ListRisks retrieves a page of the organization's risks
func (s *RiskService) ListRisks(ctx context.Context, orgID, level string, limit, offset int) (*models.RiskListResponse, error) {
	if level != "" && !models.ValidRiskLevels[level] {
		return nil, fmt.Errorf("invalid risk level '%s'", level)
	}
	risks, total, err := s.riskDAO.List(ctx, orgID, level, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.RiskListResponse{Risks: risks, Total: total}, nil
}

// UpdateRisk replaces the mutable fields of a risk
func (s *RiskService) UpdateRisk(ctx context.Context, riskID, orgID string, req *models.RiskUpdateRequest) (*models.Risk, error) {
	if !models.ValidRiskLevels[req.Level] {
		return nil, fmt.Errorf("invalid risk level '%s'", req.Level)
	}
	if !models.ValidRiskStatuses[req.Status] {
		return nil, fmt.Errorf("invalid risk status '%s'", req.Status)
	}

	existing, err := s.riskDAO.GetByID(ctx, riskID, orgID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("risk not found")
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Level = req.Level
	existing.Status = req.Status
	existing.OwnerUserID = req.OwnerUserID
	existing.ControlID = req.ControlID
	existing.UpdatedTime = utils.GetCurrentTimeMillis()

	rows, err := s.riskDAO.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("risk not found")
	}
	return existing, nil
}

// DeleteRisk removes a risk from the register
func (s *RiskService) DeleteRisk(ctx context.Context, riskID, orgID string) error {
	rows, err := s.riskDAO.Delete(ctx, riskID, orgID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("risk not found")
	}
	return nil
}
