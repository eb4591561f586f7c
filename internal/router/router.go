package router

import (
	"github.com/gin-gonic/gin"

	"github.com/trustvault/audit-management-api/internal/handlers"
	"github.com/trustvault/audit-management-api/internal/service"
	"github.com/trustvault/audit-management-api/internal/system/constants"
	"github.com/trustvault/audit-management-api/internal/utils"
)

// SetupRouter configures the catalog API routes (control catalog and risk register)
func SetupRouter(
	controlService *service.ControlService,
	riskService *service.RiskService,
) *gin.Engine {
	router := gin.Default()

	// Global middleware to extract gateway headers and set context.
	router.Use(func(c *gin.Context) {
		if orgID := c.GetHeader(constants.HeaderOrgID); orgID != "" {
			utils.SetContextValue(c, "orgID", orgID)
		}
		if userID := c.GetHeader(constants.HeaderUserID); userID != "" {
			utils.SetContextValue(c, "userID", userID)
		}
		c.Next()
	})

	// Create handlers
	controlHandler := handlers.NewControlHandler(controlService)
	riskHandler := handlers.NewRiskHandler(riskService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Control catalog routes
		v1.POST("/controls", controlHandler.CreateControl)
		v1.GET("/controls", controlHandler.ListControls)
		v1.GET("/controls/:controlId", controlHandler.GetControl)
		v1.PUT("/controls/:controlId", controlHandler.UpdateControl)
		v1.DELETE("/controls/:controlId", controlHandler.DeleteControl)

		// Risk register routes
		risks := v1.Group("/risks")
		{
			risks.POST("", riskHandler.CreateRisk)
			risks.GET("", riskHandler.ListRisks)
			risks.GET("/:riskId", riskHandler.GetRisk)
			risks.PUT("/:riskId", riskHandler.UpdateRisk)
			risks.DELETE("/:riskId", riskHandler.DeleteRisk)
		}
	}

	return router
}
