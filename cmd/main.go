package main

import (
	"church-service/internal/handler"
	"church-service/internal/identity"
	"church-service/internal/middleware"
	"church-service/internal/setup"
	"church-service/pkg/config"
	"church-service/pkg/database"
	"church-service/pkg/jwtutil"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting church service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire core services over the shared database handle
	db := database.GetDB()
	setupHandler := handler.NewSetupHandler(setup.NewService(setup.NewGormStore(db)))
	authHandler := handler.NewAuthHandler(db, identity.NewResolver(identity.NewGormStore(db)))
	churchHandler := handler.NewChurchHandler(db)
	memberHandler := handler.NewMemberHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// First-run setup - must be reachable before any user exists
	st := e.Group("/setup")
	st.GET("/status", setupHandler.Status)
	st.POST("/initialize", setupHandler.Initialize)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Profile management
	users := api.Group("/users")
	users.GET("/profile", authHandler.GetProfile)
	users.PATCH("/profile", authHandler.UpdateProfile)
	users.POST("/change-password", authHandler.ChangePassword)

	// Church management - provisioning restricted to super admins
	churches := api.Group("/churches")
	churches.POST("", churchHandler.CreateChurch, middleware.RequireSuperAdmin)
	churches.GET("/:id", churchHandler.GetChurch)
	churches.PATCH("/:id", churchHandler.UpdateChurch)

	// Member profiles - require church context from the token
	members := api.Group("/members")
	members.Use(middleware.RequireChurchContext)
	members.POST("", memberHandler.CreateMember)
	members.GET("", memberHandler.ListMembers)
	members.GET("/:id", memberHandler.GetMember)
	members.PATCH("/:id", memberHandler.UpdateMember)
	members.DELETE("/:id", memberHandler.DeleteMember)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
