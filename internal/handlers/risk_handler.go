package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trustvault/audit-management-api/internal/models"
	"github.com/trustvault/audit-management-api/internal/service"
	"github.com/trustvault/audit-management-api/internal/utils"
)

// RiskHandler handles risk register HTTP requests
type RiskHandler struct {
	riskService *service.RiskService
}

// NewRiskHandler creates a new risk handler instance
func NewRiskHandler(riskService *service.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// CreateRisk handles POST /risks
func (h *RiskHandler) CreateRisk(c *gin.Context) {
	var req models.RiskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)
	if orgID == "" {
		utils.SendBadRequestError(c, "Organization header is required", "")
		return
	}

	risk, err := h.riskService.CreateRisk(c.Request.Context(), orgID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "cannot be empty") ||
			strings.Contains(err.Error(), "invalid") ||
			strings.Contains(err.Error(), "linked control not found") {
			utils.SendBadRequestError(c, "Invalid request", err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to create risk", err.Error())
		return
	}

	utils.SendCreatedResponse(c, risk)
}

// GetRisk handles GET /risks/:riskId
func (h *RiskHandler) GetRisk(c *gin.Context) {
	riskID := c.Param("riskId")
	if riskID == "" {
		utils.SendBadRequestError(c, "Risk ID is required", "")
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	risk, err := h.riskService.GetRisk(c.Request.Context(), riskID, orgID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Risk not found")
			return
		}
		utils.SendInternalServerError(c, "Failed to retrieve risk", err.Error())
		return
	}

	utils.SendOKResponse(c, risk)
}

// ListRisks handles GET /risks
func (h *RiskHandler) ListRisks(c *gin.Context) {
	orgID := utils.GetOrgIDFromContext(c)
	if orgID == "" {
		utils.SendBadRequestError(c, "Organization header is required", "")
		return
	}

	limit, offset := parsePagination(c)

	response, err := h.riskService.ListRisks(c.Request.Context(), orgID, c.Query("level"), limit, offset)
	if err != nil {
		if strings.Contains(err.Error(), "invalid") {
			utils.SendBadRequestError(c, "Invalid request", err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to list risks", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// UpdateRisk handles PUT /risks/:riskId
func (h *RiskHandler) UpdateRisk(c *gin.Context) {
	riskID := c.Param("riskId")
	if riskID == "" {
		utils.SendBadRequestError(c, "Risk ID is required", "")
		return
	}

	var req models.RiskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	risk, err := h.riskService.UpdateRisk(c.Request.Context(), riskID, orgID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Risk not found")
			return
		}
		if strings.Contains(err.Error(), "invalid") {
			utils.SendBadRequestError(c, "Invalid request", err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to update risk", err.Error())
		return
	}

	utils.SendOKResponse(c, risk)
}

// DeleteRisk handles DELETE /risks/:riskId
func (h *RiskHandler) DeleteRisk(c *gin.Context) {
	riskID := c.Param("riskId")
	if riskID == "" {
		utils.SendBadRequestError(c, "Risk ID is required", "")
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	if err := h.riskService.DeleteRisk(c.Request.Context(), riskID, orgID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Risk not found")
			return
		}
		utils.SendInternalServerError(c, "Failed to delete risk", err.Error())
		return
	}

	c.Status(204)
}
