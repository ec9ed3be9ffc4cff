package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/middleware"
	"github.com/meridian-ca/meridian-ca-api/models"
	"github.com/meridian-ca/meridian-ca-api/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty"`
}

// SyncProfile handles POST /api/v1/users/sync - reconciles the caller's
// profile with the identity provider record. This is the sign-in path: it
// creates the profile on first login, self-heals the admin role for the
// configured admin email, stamps last activity, and (re)starts the
// inactivity session.
//
// If the profile store fails after successful authentication, a minimal
// non-persisted profile with role "user" is returned so the caller is not
// locked out entirely.
func SyncProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	// Fetch the identity-provider record
	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_EMAIL",
				"message": "Email not provided by Auth0",
			},
		})
		return
	}

	displayName := userInfo.Name
	if displayName == "" {
		displayName = "User"
	}

	isAdminEmail := cfg.AdminEmail != "" && userInfo.Email == cfg.AdminEmail

	db := config.GetDB()
	var user models.User
	findErr := db.Where("auth0_id = ?", auth0ID).First(&user).Error

	switch {
	case findErr == nil:
		updates := map[string]interface{}{
			"last_active_at": time.Now(),
		}
		// Self-healing one-way promotion for the configured admin email
		if isAdminEmail && !user.IsAdmin() {
			updates["role"] = models.RoleAdmin
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			degradedProfile(c, auth0ID, userInfo, displayName)
			return
		}
		if role, ok := updates["role"]; ok {
			user.Role = role.(string)
		}

	default:
		role := models.RoleUser
		if isAdminEmail {
			role = models.RoleAdmin
		}
		user = models.User{
			Auth0ID:      auth0ID,
			DisplayName:  displayName,
			Email:        userInfo.Email,
			Role:         role,
			LastActiveAt: time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			// A concurrent sync may have created the profile already
			errMsg := strings.ToLower(err.Error())
			if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
				if retryErr := db.Where("auth0_id = ?", auth0ID).First(&user).Error; retryErr != nil {
					degradedProfile(c, auth0ID, userInfo, displayName)
					return
				}
			} else {
				degradedProfile(c, auth0ID, userInfo, displayName)
				return
			}
		}
	}

	// A successful sign-in always starts a fresh inactivity session
	if mgr := services.GetSessionManager(); mgr != nil {
		mgr.Reset(auth0ID)
	}

	attachPhotoURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// degradedProfile responds with a minimal profile derived from the identity
// provider record when the store is unavailable, so the app stays usable in a
// degraded mode instead of blocking the user out.
func degradedProfile(c *gin.Context, auth0ID string, userInfo *services.Auth0UserInfo, displayName string) {
	if mgr := services.GetSessionManager(); mgr != nil {
		mgr.Reset(auth0ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"degraded": true,
		"data": models.User{
			Auth0ID:      auth0ID,
			DisplayName:  displayName,
			Email:        userInfo.Email,
			Role:         models.RoleUser,
			LastActiveAt: time.Now(),
		},
	})
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
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

	attachPhotoURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
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

	var req UpdateUserRequest
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

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found",
			},
		})
		return
	}

	// Partial update: only touch fields that were provided
	updates := make(map[string]interface{})
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}

	if len(updates) == 0 {
		attachPhotoURL(&user)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update user profile",
			},
		})
		return
	}

	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated profile",
			},
		})
		return
	}

	attachPhotoURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UploadProfilePhoto handles POST /api/v1/users/me/photo - uploads a profile photo
func UploadProfilePhoto(c *gin.Context) {
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
				"message": "User profile not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Photo file is required (multipart field 'photo')",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	photoKey, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Best effort cleanup of the previous photo; the new key is the source of truth
	oldKey := user.PhotoS3Key
	if err := db.Model(&user).Update("photo_s3_key", photoKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}
	if oldKey != nil && *oldKey != "" {
		_ = photoService.DeletePhoto(*oldKey)
	}

	user.PhotoS3Key = &photoKey
	attachPhotoURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyStats handles GET /api/v1/users/me/stats - request counts for the dashboard
func GetMyStats(c *gin.Context) {
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
				"message": "User profile not found",
			},
		})
		return
	}

	var requests []models.ServiceRequest
	if err := db.Where("user_id = ?", user.ID).Find(&requests).Error; err != nil {
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
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// ListUsers handles GET /api/v1/admin/users - lists all user profiles (admin only)
func ListUsers(c *gin.Context) {
	db := config.GetDB()
	var users []models.User
	if err := db.Order("created_at desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// attachPhotoURL fills the computed presigned photo URL when a photo exists
func attachPhotoURL(user *models.User) {
	if user.PhotoS3Key == nil || *user.PhotoS3Key == "" {
		return
	}
	photoService := services.GetPhotoService()
	if photoService == nil {
		return
	}
	if url, err := photoService.GetPhotoURL(*user.PhotoS3Key); err == nil {
		user.PhotoURL = url
	}
}
