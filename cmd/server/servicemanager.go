package main

import (
	"net/http"

	"github.com/trustvault/audit-management-api/internal/audit"
	"github.com/trustvault/audit-management-api/internal/finding"
	"github.com/trustvault/audit-management-api/internal/system/config"
	"github.com/trustvault/audit-management-api/internal/system/log"
	"github.com/trustvault/audit-management-api/internal/system/middleware"
)

// registerServices registers the workflow modules with the provided HTTP
// multiplexer. Each module wires its own store into the registry and mounts
// its routes.
func registerServices(mux *http.ServeMux, cfg *config.Config) {
	logger := log.GetLogger()

	corsOpts := middleware.CORSOptions{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}
	if len(cfg.CORS.AllowedOrigins) == 1 {
		corsOpts.AllowOrigin = cfg.CORS.AllowedOrigins[0]
	}

	audit.Initialize(mux, corsOpts)
	logger.Info("Audit module initialized")

	finding.Initialize(mux, corsOpts)
	logger.Info("Finding module initialized")

	// Register health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
}

// unregisterServices performs cleanup of the modules during shutdown.
// Currently a placeholder; stores hold no resources of their own.
func unregisterServices() {
}
