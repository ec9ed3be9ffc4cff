package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meridian-ca/meridian-ca-api/config"
	"github.com/meridian-ca/meridian-ca-api/controllers"
	"github.com/meridian-ca/meridian-ca-api/logger"
	"github.com/meridian-ca/meridian-ca-api/middleware"
	"github.com/meridian-ca/meridian-ca-api/models"
	"github.com/meridian-ca/meridian-ca-api/services"
)

func main() {
	log.Println("Starting Meridian CA Practice API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Structured logger
	zapLogger, cleanup := logger.New(cfg.LogLevel, cfg.LogJSON)
	defer cleanup()

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.ServiceRequest{},
		&models.FAQ{},
		&models.Testimonial{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Email + request notifications
	sender := services.InitEmailService(cfg, zapLogger)
	services.InitRequestNotifier(sender, cfg.AdminEmail, zapLogger)

	// Inactivity sessions
	sessionTimeout := time.Duration(cfg.SessionTimeoutMinutes) * time.Minute
	sessionManager := services.InitSessionManager(sessionTimeout, zapLogger)
	defer sessionManager.Stop()

	// Profile photo storage (optional: requires an S3 bucket)
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		services.InitPhotoService(s3Service)
	} else {
		zapLogger.Warn("AWS_S3_BUCKET is not set, profile photo uploads disabled")
	}

	router := setupRouter(cfg, zapLogger)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures all middleware and routes
func setupRouter(cfg *config.Config, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if zapLogger != nil {
		router.Use(logger.Middleware(zapLogger))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authRequired := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public catalog pages
		v1.GET("/services", controllers.ListServices)
		v1.GET("/faqs", controllers.ListFAQs)
		v1.GET("/testimonials", controllers.ListTestimonials)

		// Password reset (pre-auth)
		v1.POST("/auth/password-reset", controllers.RequestPasswordReset)

		// Sign-in path: reconciles the profile and starts a fresh session,
		// so it must not go through the session timeout check
		v1.POST("/users/sync", authRequired, controllers.SyncProfile)

		// Session endpoints: authenticated, but status polling is not user
		// activity and must not re-arm the timers
		session := v1.Group("/session", authRequired)
		{
			session.GET("", controllers.GetSessionStatus)
			session.POST("/keepalive", controllers.KeepSessionAlive)
			session.DELETE("", controllers.EndSession)
		}

		// Authenticated user routes
		user := v1.Group("", authRequired, middleware.TrackSession())
		{
			user.GET("/users/me", controllers.GetMyProfile)
			user.PUT("/users/me", controllers.UpdateMyProfile)
			user.POST("/users/me/photo", controllers.UploadProfilePhoto)
			user.GET("/users/me/stats", controllers.GetMyStats)

			user.POST("/requests", controllers.CreateRequest)
			user.GET("/requests", controllers.ListMyRequests)
			user.GET("/requests/:id", controllers.GetRequest)
		}

		// Admin routes
		admin := v1.Group("/admin", authRequired, middleware.TrackSession(), middleware.RequireAdmin())
		{
			admin.GET("/stats", controllers.GetAdminStats)
			admin.GET("/users", controllers.ListUsers)

			admin.GET("/requests", controllers.ListAllRequests)
			admin.PATCH("/requests/:id", controllers.UpdateRequest)
			admin.PATCH("/requests/:id/seen", controllers.MarkRequestSeen)

			admin.POST("/services", controllers.CreateService)
			admin.PUT("/services/:id", controllers.UpdateService)
			admin.DELETE("/services/:id", controllers.DeleteService)

			admin.POST("/faqs", controllers.CreateFAQ)
			admin.PUT("/faqs/:id", controllers.UpdateFAQ)
			admin.DELETE("/faqs/:id", controllers.DeleteFAQ)

			admin.GET("/testimonials", controllers.ListAllTestimonials)
			admin.POST("/testimonials", controllers.CreateTestimonial)
			admin.PUT("/testimonials/:id", controllers.UpdateTestimonial)
			admin.DELETE("/testimonials/:id", controllers.DeleteTestimonial)

			// HTTP notification path (see controllers.SendNotification)
			admin.POST("/notifications", controllers.SendNotification)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Meridian CA Practice API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
