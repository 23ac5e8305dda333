package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/cache"
	"github.com/fixitnow/maintenance-backend/internal/config"
	"github.com/fixitnow/maintenance-backend/internal/database"
	"github.com/fixitnow/maintenance-backend/internal/handlers"
	"github.com/fixitnow/maintenance-backend/internal/middleware"
	"github.com/fixitnow/maintenance-backend/internal/models"
	"github.com/fixitnow/maintenance-backend/internal/services"
	"github.com/fixitnow/maintenance-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting FixItNow Maintenance Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize the staff routing cache. Redis is used when configured so
	// multiple instances share invalidation; otherwise an in-process cache.
	var staffCache cache.StaffListCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatalf("Failed to ping Redis: %v", err)
		}
		defer redisClient.Close()
		staffCache = cache.NewRedisCache(redisClient, logger)
		logger.Info("Redis staff cache enabled")
	} else {
		staffCache = cache.NewMemoryCache()
		logger.Info("In-process staff cache enabled")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	staffRepository := database.NewStaffRepository(db)
	complaintRepository := database.NewComplaintRepository(db)
	eventRepository := database.NewEventRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(eventRepository, logger)
	routerService := services.NewRouterService(staffRepository, staffCache, logger)
	lifecycleService := services.NewLifecycleService(complaintRepository, staffRepository, auditService, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	complaintHandler := handlers.NewComplaintHandler(lifecycleService, auditService, logger)
	staffHandler := handlers.NewStaffHandler(staffRepository, routerService, cfg.Security.BcryptCost, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/me", authHandler.Me)
			}
		}

		// Complaint routes (all protected)
		complaints := v1.Group("/complaints")
		complaints.Use(middleware.AuthMiddleware(jwtService))
		{
			complaints.GET("", complaintHandler.List)
			complaints.POST("", complaintHandler.Create)
			complaints.GET("/:id", complaintHandler.Get)
			complaints.PUT("/:id", complaintHandler.Update)
			complaints.PATCH("/:id/assign", complaintHandler.Assign)
			complaints.PATCH("/:id/status", complaintHandler.SetStatus)
			complaints.POST("/:id/notes", complaintHandler.AddNote)
			complaints.DELETE("/:id", complaintHandler.Delete)
		}

		// Eligible staff lookup for the assignment UI
		staff := v1.Group("/staff")
		staff.Use(middleware.AuthMiddleware(jwtService))
		staff.Use(middleware.RequireRole(models.RoleMaintenance, models.RoleStaff, models.RoleAdmin))
		{
			staff.GET("/eligible", staffHandler.ListEligible)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/maintenance-staff", staffHandler.List)
			admin.POST("/maintenance-staff", staffHandler.Create)
			admin.GET("/maintenance-staff/:id", staffHandler.Get)
			admin.PUT("/maintenance-staff/:id", staffHandler.Update)
			admin.PATCH("/maintenance-staff/:id/active", staffHandler.SetActive)

			admin.GET("/complaints/:id/events", complaintHandler.History)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
