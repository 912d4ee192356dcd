package main

import (
	"context"

	"identity-service/internal/authz"
	"identity-service/internal/handler"
	"identity-service/internal/middleware"
	"identity-service/internal/permission"
	"identity-service/internal/seeder"
	"identity-service/internal/store/gormstore"
	"identity-service/internal/token"
	"identity-service/pkg/config"
	"identity-service/pkg/database"
	"identity-service/pkg/logger"
	"identity-service/prometheus"

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
	log.Info("Starting identity service...", zap.String("environment", cfg.Server.Env))

	// Initialize database connections
	manager, err := database.NewManager(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	provider := gormstore.NewProvider(manager)

	// Provision the root tenant and seed every tenant's roles,
	// permissions, and administrator account
	seed := seeder.New(provider, cfg.Seed, log)
	if err := seed.RunForAllTenants(context.Background()); err != nil {
		log.Fatal("Failed to provision tenants", zap.Error(err))
	}
	log.Info("Tenant provisioning completed")

	// Token service and authorization policies
	tokens := token.NewService(provider, cfg.JWT, log)
	registry := authz.NewRegistry()
	log.Info("Authorization policies registered", zap.Int("policies", registry.Len()))

	tokenHandler := handler.NewTokenHandler(tokens)
	tenantHandler := handler.NewTenantHandler(provider.Directory())

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

	// Authentication routes - tenant context resolved from the header
	auth := e.Group("/auth")
	auth.Use(middleware.ResolveTenant(provider.Directory()))
	auth.POST("/login", tokenHandler.Login)
	auth.POST("/refresh", tokenHandler.Refresh)

	// API routes - all require a validated bearer token
	api := e.Group("/api")
	api.Use(middleware.Auth(tokens))

	// Tenant directory - root-tier permissions only
	tenants := api.Group("/tenants")
	tenants.POST("", tenantHandler.CreateTenant,
		middleware.RequirePermission(registry, permission.Name(permission.FeatureTenants, permission.ActionCreate)))
	tenants.GET("", tenantHandler.ListTenants,
		middleware.RequirePermission(registry, permission.Name(permission.FeatureTenants, permission.ActionRead)))
	tenants.GET("/:id", tenantHandler.GetTenant,
		middleware.RequirePermission(registry, permission.Name(permission.FeatureTenants, permission.ActionRead)))

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
