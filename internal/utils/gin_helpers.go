// Package utils provides gin request/response helpers for the catalog API.
package utils

import (
	"github.com/gin-gonic/gin"
)

// SetContextValue stores a value on the gin context.
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}

// GetOrgIDFromContext returns the organization ID set by the header middleware.
func GetOrgIDFromContext(c *gin.Context) string {
	if v, ok := c.Get("orgID"); ok {
		if orgID, ok := v.(string); ok {
			return orgID
		}
	}
	return ""
}

// GetUserIDFromContext returns the user ID set by the header middleware.
func GetUserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

// SendOKResponse sends a 200 response with the given payload.
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// SendCreatedResponse sends a 201 response with the given payload.
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(201, data)
}

// SendBadRequestError sends a 400 error response.
func SendBadRequestError(c *gin.Context, message, detail string) {
	c.JSON(400, gin.H{
		"error":   message,
		"message": detail,
	})
}

// SendNotFoundError sends a 404 error response.
func SendNotFoundError(c *gin.Context, message string) {
	c.JSON(404, gin.H{
		"error": message,
	})
}

// SendConflictError sends a 409 error response.
func SendConflictError(c *gin.Context, message, detail string) {
	c.JSON(409, gin.H{
		"error":   message,
		"message": detail,
	})
}

// SendInternalServerError sends a 500 error response.
func SendInternalServerError(c *gin.Context, message, detail string) {
	c.JSON(500, gin.H{
		"error":   message,
		"message": detail,
	})
}
