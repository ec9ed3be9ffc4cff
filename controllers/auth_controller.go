package controllers

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/services"
)

// PasswordResetBody represents the request body for a password reset request
type PasswordResetBody struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset - asks the
// identity provider to send a password-reset email. The two enumerated
// provider errors map to specific messages; everything else is generic.
func RequestPasswordReset(c *gin.Context) {
	var req PasswordResetBody
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

	if _, err := mail.ParseAddress(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_EMAIL",
				"message": "Invalid email address",
			},
		})
		return
	}

	auth0Service := services.NewAuth0Service(config.GetConfig())
	if err := auth0Service.SendPasswordResetEmail(req.Email); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "No account found with this email address",
				},
			})
		case errors.Is(err, services.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_EMAIL",
					"message": "Invalid email address",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH0_ERROR",
					"message": "Failed to send password reset email. Please try again later.",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset email sent",
	})
}
