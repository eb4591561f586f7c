package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trustvault/audit-management-api/internal/models"
	"github.com/trustvault/audit-management-api/internal/service"
	"github.com/trustvault/audit-management-api/internal/utils"
)

// ControlHandler handles control catalog HTTP requests
type ControlHandler struct {
	controlService *service.ControlService
}

// NewControlHandler creates a new control handler instance
func NewControlHandler(controlService *service.ControlService) *ControlHandler {
	return &ControlHandler{controlService: controlService}
}

// CreateControl handles POST /controls
func (h *ControlHandler) CreateControl(c *gin.Context) {
	var req models.ControlCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)
	if orgID == "" {
		utils.SendBadRequestError(c, "Organization header is required", "")
		return
	}

	control, err := h.controlService.CreateControl(c.Request.Context(), orgID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "cannot be empty") ||
			strings.Contains(err.Error(), "invalid") {
			utils.SendBadRequestError(c, "Invalid request", err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to create control", err.Error())
		return
	}

	utils.SendCreatedResponse(c, control)
}

// GetControl handles GET /controls/:controlId
func (h *ControlHandler) GetControl(c *gin.Context) {
	controlID := c.Param("controlId")
	if controlID == "" {
		utils.SendBadRequestError(c, "Control ID is required", "")
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	control, err := h.controlService.GetControl(c.Request.Context(), controlID, orgID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Control not found")
			return
		}
		utils.SendInternalServerError(c, "Failed to retrieve control", err.Error())
		return
	}

	utils.SendOKResponse(c, control)
}

// ListControls handles GET /controls
func (h *ControlHandler) ListControls(c *gin.Context) {
	orgID := utils.GetOrgIDFromContext(c)
	if orgID == "" {
		utils.SendBadRequestError(c, "Organization header is required", "")
		return
	}

	limit, offset := parsePagination(c)

	response, err := h.controlService.ListControls(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		utils.SendInternalServerError(c, "Failed to list controls", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// UpdateControl handles PUT /controls/:controlId
func (h *ControlHandler) UpdateControl(c *gin.Context) {
	controlID := c.Param("controlId")
	if controlID == "" {
		utils.SendBadRequestError(c, "Control ID is required", "")
		return
	}

	var req models.ControlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	control, err := h.controlService.UpdateControl(c.Request.Context(), controlID, orgID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Control not found")
			return
		}
		if strings.Contains(err.Error(), "invalid") {
			utils.SendBadRequestError(c, "Invalid request", err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to update control", err.Error())
		return
	}

	utils.SendOKResponse(c, control)
}

// DeleteControl handles DELETE /controls/:controlId
func (h *ControlHandler) DeleteControl(c *gin.Context) {
	controlID := c.Param("controlId")
	if controlID == "" {
		utils.SendBadRequestError(c, "Control ID is required", "")
		return
	}

	orgID := utils.GetOrgIDFromContext(c)

	if err := h.controlService.DeleteControl(c.Request.Context(), controlID, orgID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendNotFoundError(c, "Control not found")
			return
		}
		utils.SendInternalServerError(c, "Failed to delete control", err.Error())
		return
	}

	c.Status(204)
}

func parsePagination(c *gin.Context) (int, int) {
	limit := 30
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
