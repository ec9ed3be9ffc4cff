package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
)

// CreateServiceRequestBody represents the request body for creating a catalog service
type CreateServiceRequestBody struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Status       string `json:"status" binding:"omitempty"`
	DisplayOrder *int   `json:"display_order" binding:"omitempty"`
}

// UpdateServiceRequestBody represents the request body for updating a catalog service
type UpdateServiceRequestBody struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	DisplayOrder *int    `json:"display_order"`
}

// ListServices handles GET /api/v1/services - lists the service catalog,
// ordered by display order
func ListServices(c *gin.Context) {
	db := config.GetDB()
	var servicesList []models.Service
	if err := db.Order("display_order asc, id asc").Find(&servicesList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load services",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    servicesList,
	})
}

// CreateService handles POST /api/v1/admin/services - creates a catalog service (admin only)
func CreateService(c *gin.Context) {
	var req CreateServiceRequestBody
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

	status := req.Status
	if status == "" {
		status = models.ServiceAvailable
	}
	if !models.IsValidServiceStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Status must be one of: available, starting_soon, not_available",
			},
		})
		return
	}

	service := models.Service{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
	}
	if req.DisplayOrder != nil {
		service.DisplayOrder = *req.DisplayOrder
	}

	db := config.GetDB()
	if err := db.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create service",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}

// UpdateService handles PUT /api/v1/admin/services/:id - partial update of a
// catalog service (admin only). Unspecified fields are left untouched.
func UpdateService(c *gin.Context) {
	db := config.GetDB()
	var service models.Service
	if err := db.First(&service, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_NOT_FOUND",
				"message": "Service not found",
			},
		})
		return
	}

	var req UpdateServiceRequestBody
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

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !models.IsValidServiceStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be one of: available, starting_soon, not_available",
				},
			})
			return
		}
		updates["status"] = *req.Status
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    service,
		})
		return
	}

	if err := db.Model(&service).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update service",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// DeleteService handles DELETE /api/v1/admin/services/:id - removes a catalog
// service (admin only). Existing requests keep their denormalized service name.
func DeleteService(c *gin.Context) {
	db := config.GetDB()
	var service models.Service
	if err := db.First(&service, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVICE_NOT_FOUND",
				"message": "Service not found",
			},
		})
		return
	}

	if err := db.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete service",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service deleted",
	})
}
