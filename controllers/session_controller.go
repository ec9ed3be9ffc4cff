package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridian-ca/meridian-ca-api/middleware"
	"github.com/meridian-ca/meridian-ca-api/services"
)

// GetSessionStatus handles GET /api/v1/session - reports the inactivity
// session state so the client can show the "stay logged in" prompt during
// the warning window.
func GetSessionStatus(c *gin.Context) {
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

	mgr := services.GetSessionManager()
	if mgr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_ERROR",
				"message": "Session tracking not initialized",
			},
		})
		return
	}

	status, ok := mgr.Status(auth0ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "No active session. Please sign in.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// KeepSessionAlive handles POST /api/v1/session/keepalive - the explicit
// "stay logged in" action; it re-arms both inactivity timers.
func KeepSessionAlive(c *gin.Context) {
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

	mgr := services.GetSessionManager()
	if mgr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_ERROR",
				"message": "Session tracking not initialized",
			},
		})
		return
	}

	if !mgr.Touch(auth0ID) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"timeout": true,
			"error": gin.H{
				"code":    "SESSION_TIMEOUT",
				"message": "Your session has expired due to inactivity. Please sign in again.",
			},
		})
		return
	}

	status, _ := mgr.Status(auth0ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// EndSession handles DELETE /api/v1/session - sign-out; cancels the
// inactivity timers and discards the session.
func EndSession(c *gin.Context) {
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

	if mgr := services.GetSessionManager(); mgr != nil {
		mgr.End(auth0ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Signed out",
	})
}
