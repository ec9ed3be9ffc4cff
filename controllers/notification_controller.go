package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/services"
)

// NotificationRequestBody represents the HTTP notification payload
type NotificationRequestBody struct {
	Type      string `json:"type" binding:"required"`
	Service   string `json:"service"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	RequestID uint   `json:"requestId"`
}

// SendNotification handles POST /api/v1/notifications - the HTTP notification
// path. The in-process notifier is the path wired to request writes; this
// endpoint exists for manual/operational dispatch and is admin-gated so the
// two paths cannot both fire for the same event.
func SendNotification(c *gin.Context) {
	var req NotificationRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Type != "new_request" {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid notification type",
		})
		return
	}

	sender := services.GetEmailService()
	if sender == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Email service not initialized",
		})
		return
	}

	cfg := config.GetConfig()

	adminContent, err := services.NewRequestAdminEmail(req.UserName, req.UserEmail, req.Service, req.RequestID)
	if err == nil {
		err = sender.Send(cfg.AdminEmail, adminContent.Subject, adminContent.HTML)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	userContent, err := services.RequestReceivedEmail(req.UserName, req.Service)
	if err == nil {
		err = sender.Send(req.UserEmail, userContent.Subject, userContent.HTML)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notifications sent",
	})
}
