package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/models"
)

// CreateFAQBody represents the request body for creating a FAQ entry
type CreateFAQBody struct {
	Question     string `json:"question" binding:"required"`
	Answer       string `json:"answer" binding:"required"`
	DisplayOrder *int   `json:"display_order" binding:"omitempty"`
}

// UpdateFAQBody represents the request body for updating a FAQ entry
type UpdateFAQBody struct {
	Question     *string `json:"question"`
	Answer       *string `json:"answer"`
	DisplayOrder *int    `json:"display_order"`
}

// ListFAQs handles GET /api/v1/faqs - lists FAQ entries in display order
func ListFAQs(c *gin.Context) {
	db := config.GetDB()
	var faqs []models.FAQ
	if err := db.Order("display_order asc, id asc").Find(&faqs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load FAQs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    faqs,
	})
}

// CreateFAQ handles POST /api/v1/admin/faqs - creates a FAQ entry (admin only)
func CreateFAQ(c *gin.Context) {
	var req CreateFAQBody
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

	faq := models.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
	}
	if req.DisplayOrder != nil {
		faq.DisplayOrder = *req.DisplayOrder
	}

	db := config.GetDB()
	if err := db.Create(&faq).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create FAQ",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    faq,
	})
}

// UpdateFAQ handles PUT /api/v1/admin/faqs/:id - partial update of a FAQ entry (admin only)
func UpdateFAQ(c *gin.Context) {
	db := config.GetDB()
	var faq models.FAQ
	if err := db.First(&faq, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FAQ_NOT_FOUND",
				"message": "FAQ not found",
			},
		})
		return
	}

	var req UpdateFAQBody
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
	if req.Question != nil {
		updates["question"] = *req.Question
	}
	if req.Answer != nil {
		updates["answer"] = *req.Answer
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    faq,
		})
		return
	}

	if err := db.Model(&faq).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update FAQ",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    faq,
	})
}

// DeleteFAQ handles DELETE /api/v1/admin/faqs/:id - removes a FAQ entry (admin only)
func DeleteFAQ(c *gin.Context) {
	db := config.GetDB()
	var faq models.FAQ
	if err := db.First(&faq, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FAQ_NOT_FOUND",
				"message": "FAQ not found",
			},
		})
		return
	}

	if err := db.Delete(&faq).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete FAQ",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "FAQ deleted",
	})
}
