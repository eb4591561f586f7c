package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trustvault/audit-management-api/internal/dao"
	"github.com/trustvault/audit-management-api/internal/router"
	"github.com/trustvault/audit-management-api/internal/service"
	"github.com/trustvault/audit-management-api/internal/system/config"
	"github.com/trustvault/audit-management-api/internal/system/database"
	"github.com/trustvault/audit-management-api/internal/system/database/provider"
	"github.com/trustvault/audit-management-api/internal/system/log"
	"github.com/trustvault/audit-management-api/internal/system/middleware"
	"github.com/trustvault/audit-management-api/internal/system/stores"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load configuration
	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.GetLogger().Fatal("Failed to load configuration", log.Error(err))
	}

	log.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger := log.GetLogger()
	logger.Info("Starting Audit Management API Server...",
		log.String("version", version), log.String("build_date", buildDate))

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Audit)
	if err != nil {
		logger.Fatal("Failed to initialize database", log.Error(err))
	}

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		logger.Fatal("Database health check failed", log.Error(err))
	}

	// Initialize the DB provider for the new system architecture
	provider.InitDBProvider(db, cfg.Database.Audit.GetType())

	// Initialize DAOs (old architecture - to be migrated)
	controlDAO := dao.NewControlDAO(db.DB)
	riskDAO := dao.NewRiskDAO(db.DB)

	// The catalog DAOs double as the scope and risk sources of the workflow
	// modules, so they go into the registry before the modules initialize.
	stores.GetRegistry().RegisterControlStore(controlDAO)
	stores.GetRegistry().RegisterRiskStore(riskDAO)

	// Initialize services (old architecture - to be migrated)
	controlService := service.NewControlService(controlDAO)
	riskService := service.NewRiskService(riskDAO, controlDAO)

	// Create http.ServeMux for new architecture and register workflow modules
	mux := http.NewServeMux()
	registerServices(mux, cfg)

	// Setup Gin router for catalog endpoints (to be migrated)
	ginRouter := router.SetupRouter(controlService, riskService)
	mux.Handle("/api/v1/controls", ginRouter)
	mux.Handle("/api/v1/controls/", ginRouter)
	mux.Handle("/api/v1/risks", ginRouter)
	mux.Handle("/api/v1/risks/", ginRouter)

	// Wrap with correlation ID middleware
	httpHandler := middleware.WrapWithCorrelationID(mux)

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        httpHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server...", log.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", log.Error(err))
	}

	unregisterServices()
	if err := provider.GetDBProviderCloser().Close(); err != nil {
		logger.Error("Failed to close DB provider", log.Error(err))
	}
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", log.Error(err))
	}

	logger.Info("Server exited gracefully")
}
