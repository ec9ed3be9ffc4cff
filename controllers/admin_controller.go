package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
)

// GetAdminStats handles GET /api/v1/admin/stats - totals for the admin
// overview dashboard (admin only)
func GetAdminStats(c *gin.Context) {
	db := config.GetDB()

	var requests []models.ServiceRequest
	if err := db.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load request statistics",
			},
		})
		return
	}

	stats := gin.H{
		"total_requests":       len(requests),
		"pending_requests":     0,
		"in_progress_requests": 0,
		"resolved_requests":    0,
		"unseen_requests":      0,
	}
	for _, r := range requests {
		switch r.Status {
		case models.RequestPending:
			stats["pending_requests"] = stats["pending_requests"].(int) + 1
		case models.RequestInProgress:
			stats["in_progress_requests"] = stats["in_progress_requests"].(int) + 1
		case models.RequestResolved:
			stats["resolved_requests"] = stats["resolved_requests"].(int) + 1
		}
		if !r.SeenByAdmin {
			stats["unseen_requests"] = stats["unseen_requests"].(int) + 1
		}
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load user statistics",
			},
		})
		return
	}
	stats["total_users"] = userCount

	var serviceCount int64
	if err := db.Model(&models.Service{}).Count(&serviceCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load service statistics",
			},
		})
		return
	}
	stats["total_services"] = serviceCount

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
