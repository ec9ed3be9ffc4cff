package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
)

// CreateTestimonialBody represents the request body for creating a testimonial
type CreateTestimonialBody struct {
	ClientName   string  `json:"client_name" binding:"required"`
	ClientRole   *string `json:"client_role"`
	Message      string  `json:"message" binding:"required"`
	Rating       int     `json:"rating" binding:"required,gte=1,lte=5"`
	IsVisible    *bool   `json:"is_visible"`
	DisplayOrder *int    `json:"display_order"`
}

// UpdateTestimonialBody represents the request body for updating a testimonial
type UpdateTestimonialBody struct {
	ClientName   *string `json:"client_name"`
	ClientRole   *string `json:"client_role"`
	Message      *string `json:"message"`
	Rating       *int    `json:"rating"`
	IsVisible    *bool   `json:"is_visible"`
	DisplayOrder *int    `json:"display_order"`
}

// ListTestimonials handles GET /api/v1/testimonials - lists visible
// testimonials in display order
func ListTestimonials(c *gin.Context) {
	db := config.GetDB()
	var testimonials []models.Testimonial
	if err := db.Where("is_visible = ?", true).Order("display_order asc, id asc").Find(&testimonials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load testimonials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    testimonials,
	})
}

// ListAllTestimonials handles GET /api/v1/admin/testimonials - lists all
// testimonials including hidden ones (admin only)
func ListAllTestimonials(c *gin.Context) {
	db := config.GetDB()
	var testimonials []models.Testimonial
	if err := db.Order("display_order asc, id asc").Find(&testimonials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load testimonials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    testimonials,
	})
}

// CreateTestimonial handles POST /api/v1/admin/testimonials (admin only)
func CreateTestimonial(c *gin.Context) {
	var req CreateTestimonialBody
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

	testimonial := models.Testimonial{
		ClientName: req.ClientName,
		ClientRole: req.ClientRole,
		Message:    req.Message,
		Rating:     req.Rating,
		IsVisible:  true,
	}
	if req.IsVisible != nil {
		testimonial.IsVisible = *req.IsVisible
	}
	if req.DisplayOrder != nil {
		testimonial.DisplayOrder = *req.DisplayOrder
	}

	db := config.GetDB()
	if err := db.Create(&testimonial).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create testimonial",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    testimonial,
	})
}

// UpdateTestimonial handles PUT /api/v1/admin/testimonials/:id (admin only)
func UpdateTestimonial(c *gin.Context) {
	db := config.GetDB()
	var testimonial models.Testimonial
	if err := db.First(&testimonial, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TESTIMONIAL_NOT_FOUND",
				"message": "Testimonial not found",
			},
		})
		return
	}

	var req UpdateTestimonialBody
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
	if req.ClientName != nil {
		updates["client_name"] = *req.ClientName
	}
	if req.ClientRole != nil {
		updates["client_role"] = req.ClientRole
	}
	if req.Message != nil {
		updates["message"] = *req.Message
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_RATING",
					"message": "Rating must be between 1 and 5",
				},
			})
			return
		}
		updates["rating"] = *req.Rating
	}
	if req.IsVisible != nil {
		updates["is_visible"] = *req.IsVisible
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    testimonial,
		})
		return
	}

	if err := db.Model(&testimonial).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update testimonial",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    testimonial,
	})
}

// DeleteTestimonial handles DELETE /api/v1/admin/testimonials/:id (admin only)
func DeleteTestimonial(c *gin.Context) {
	db := config.GetDB()
	var testimonial models.Testimonial
	if err := db.First(&testimonial, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TESTIMONIAL_NOT_FOUND",
				"message": "Testimonial not found",
			},
		})
		return
	}

	if err := db.Delete(&testimonial).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete testimonial",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Testimonial deleted",
	})
}
