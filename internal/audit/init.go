package audit

import (
	"net/http"

	"github.com/trustvault/audit-management-api/internal/system/constants"
	"github.com/trustvault/audit-management-api/internal/system/middleware"
	"github.com/trustvault/audit-management-api/internal/system/stores"
)

// Initialize registers the audit store and mounts the audit routes.
func Initialize(mux *http.ServeMux, corsOpts middleware.CORSOptions) {
	stores.GetRegistry().RegisterAuditStore(newAuditStore())

	handler := newAuditHandler(GetAuditService())

	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/audits", handler.HandleCreateAudit, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits", handler.HandleListAudits, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits/{id}", handler.HandleGetAudit, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/audits/{id}/plan", handler.HandlePlanAudit, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/audits/{id}/start", handler.HandleStartAudit, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/audits/{id}/complete", handler.HandleCompleteAudit, corsOpts))
	mux.HandleFunc(middleware.WithCORS("PUT "+constants.APIBasePath+"/audits/{id}/report", handler.HandleUpdateReport, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits/{id}/report", handler.HandleGetAuditReport, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits/{id}/controls", handler.HandleGetAuditControls, corsOpts))
	mux.HandleFunc(middleware.WithCORS("PUT "+constants.APIBasePath+"/audits/{id}/controls/{controlId}", handler.HandleSetControlReview, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits/{id}/history", handler.HandleGetStatusHistory, corsOpts))
}
