package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/middleware"
	"github.com/meridian-ca/meridian-ca-api/models"
	"github.com/meridian-ca/meridian-ca-api/services"
)

// CreateRequestBody represents the request body for creating a service request
type CreateRequestBody struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// UpdateRequestBody represents the admin request body for triaging a request
type UpdateRequestBody struct {
	Status        *string `json:"status"`
	AdminNotes    *string `json:"admin_notes"`
	EstimatedTime *string `json:"estimated_time"`
}

// CreateRequest handles POST /api/v1/requests - submits a request for an
// available service. New requests always start pending and unseen.
func CreateRequest(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	var req CreateRequestBody
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

	var service models.Service
	if err := db.First(&service, req.ServiceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_NOT_FOUND",
				"message": "Service not found",
			},
		})
		return
	}

	// Requests can only target services currently offered
	if service.Status != models.ServiceAvailable {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_UNAVAILABLE",
				"message": "This service is not available for requests",
			},
		})
		return
	}

	request := models.ServiceRequest{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		Message:     req.Message,
		Status:      models.RequestPending,
		SeenByAdmin: false,
		RequestedAt: time.Now(),
	}

	if err := db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create request",
			},
		})
		return
	}

	// Notifications are at-most-once and can never fail the write above
	if notifier := services.GetRequestNotifier(); notifier != nil {
		notifier.RequestCreated(&request)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    request,
	})
}

// ListMyRequests handles GET /api/v1/requests - lists the caller's requests,
// newest first
func ListMyRequests(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	var requests []models.ServiceRequest
	if err := db.Where("user_id = ?", user.ID).Order("requested_at desc").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// GetRequest handles GET /api/v1/requests/:id - returns a single request.
// Accessible to the request's owner and to admins.
func GetRequest(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	var request models.ServiceRequest
	if err := db.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REQUEST_NOT_FOUND",
				"message": "Request not found",
			},
		})
		return
	}

	if request.UserID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this request",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// ListAllRequests handles GET /api/v1/admin/requests - lists all requests,
// newest first, optionally filtered by status (admin only)
func ListAllRequests(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("requested_at desc")

	if status := c.Query("status"); status != "" {
		if !models.IsValidRequestStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be one of: pending, in_progress, resolved",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var requests []models.ServiceRequest
	if err := query.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// UpdateRequest handles PATCH /api/v1/admin/requests/:id - admin triage:
// status, notes, and estimate. Any status value may be set, in any order.
// Entering resolved stamps resolved_at; leaving resolved keeps the previous
// stamp as a record of the last resolution.
func UpdateRequest(c *gin.Context) {
	db := config.GetDB()
	var request models.ServiceRequest
	if err := db.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REQUEST_NOT_FOUND",
				"message": "Request not found",
			},
		})
		return
	}

	var req UpdateRequestBody
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

	before := request

	updates := make(map[string]interface{})
	if req.Status != nil {
		if !models.IsValidRequestStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be one of: pending, in_progress, resolved",
				},
			})
			return
		}
		updates["status"] = *req.Status
		if *req.Status == models.RequestResolved && request.Status != models.RequestResolved {
			now := time.Now()
			updates["resolved_at"] = &now
		}
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = req.AdminNotes
	}
	if req.EstimatedTime != nil {
		updates["estimated_time"] = req.EstimatedTime
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    request,
		})
		return
	}

	if err := db.Model(&request).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update request",
			},
		})
		return
	}

	if err := db.First(&request, request.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load updated request",
			},
		})
		return
	}

	if notifier := services.GetRequestNotifier(); notifier != nil {
		notifier.RequestUpdated(&before, &request)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// MarkRequestSeen handles PATCH /api/v1/admin/requests/:id/seen - flags a
// request as reviewed by the admin. The false-to-true flip notifies the
// requester; repeat calls are idempotent and silent.
func MarkRequestSeen(c *gin.Context) {
	db := config.GetDB()
	var request models.ServiceRequest
	if err := db.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REQUEST_NOT_FOUND",
				"message": "Request not found",
			},
		})
		return
	}

	if request.SeenByAdmin {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    request,
		})
		return
	}

	before := request

	if err := db.Model(&request).Update("seen_by_admin", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update request",
			},
		})
		return
	}

	request.SeenByAdmin = true
	if notifier := services.GetRequestNotifier(); notifier != nil {
		notifier.RequestUpdated(&before, &request)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}
