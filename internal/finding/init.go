package finding

import (
	"net/http"

	"github.com/trustvault/audit-management-api/internal/system/constants"
	"github.com/trustvault/audit-management-api/internal/system/middleware"
	"github.com/trustvault/audit-management-api/internal/system/stores"
)

// Initialize registers the finding store and mounts the finding routes.
func Initialize(mux *http.ServeMux, corsOpts middleware.CORSOptions) {
	stores.GetRegistry().RegisterFindingStore(newFindingStore())

	handler := newFindingHandler(GetFindingService())

	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/audits/{id}/findings", handler.HandleCreateFinding, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/audits/{id}/findings", handler.HandleListFindings, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/findings/{id}", handler.HandleGetFinding, corsOpts))
	mux.HandleFunc(middleware.WithCORS("PATCH "+constants.APIBasePath+"/findings/{id}", handler.HandleUpdateFinding, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/findings/{id}/start-remediation", handler.HandleStartRemediation, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/findings/{id}/submit-review", handler.HandleSubmitForReview, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/findings/{id}/accept", handler.HandleAcceptFinding, corsOpts))
	mux.HandleFunc(middleware.WithCORS("POST "+constants.APIBasePath+"/findings/{id}/reject", handler.HandleRejectFinding, corsOpts))
	mux.HandleFunc(middleware.WithCORS("GET "+constants.APIBasePath+"/findings/{id}/history", handler.HandleGetStatusHistory, corsOpts))
}
