package finding

import (
	"context"
	"net/http"

	"github.com/trustvault/audit-management-api/internal/authz"
	"github.com/trustvault/audit-management-api/internal/finding/model"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

type findingHandler struct {
	service FindingServiceInterface
}

func newFindingHandler(service FindingServiceInterface) *findingHandler {
	return &findingHandler{service: service}
}

// HandleCreateFinding handles POST /audits/{id}/findings.
func (h *findingHandler) HandleCreateFinding(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	var req model.FindingCreateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"malformed request body"))
		return
	}

	finding, svcErr := h.service.CreateFinding(r.Context(), actor, r.PathValue("id"), &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, finding)
}

// HandleGetFinding handles GET /findings/{id}.
func (h *findingHandler) HandleGetFinding(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	finding, svcErr := h.service.GetFinding(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, finding)
}

// HandleListFindings handles GET /audits/{id}/findings.
func (h *findingHandler) HandleListFindings(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	findings, svcErr := h.service.ListFindingsByAudit(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, findings)
}

// HandleStartRemediation handles POST /findings/{id}/start-remediation.
func (h *findingHandler) HandleStartRemediation(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.StartRemediation)
}

// HandleSubmitForReview handles POST /findings/{id}/submit-review.
func (h *findingHandler) HandleSubmitForReview(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.SubmitForReview)
}

// HandleAcceptFinding handles POST /findings/{id}/accept.
func (h *findingHandler) HandleAcceptFinding(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.AcceptFinding)
}

// HandleRejectFinding handles POST /findings/{id}/reject.
func (h *findingHandler) HandleRejectFinding(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.RejectFinding)
}

func (h *findingHandler) handleTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor authz.ActorContext, findingID string) (*model.Finding, *serviceerror.ServiceError)) {

	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	finding, svcErr := op(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, finding)
}

// HandleUpdateFinding handles PATCH /findings/{id}.
func (h *findingHandler) HandleUpdateFinding(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	var req model.FindingUpdateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"malformed request body"))
		return
	}

	finding, svcErr := h.service.UpdateFinding(r.Context(), actor, r.PathValue("id"), &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, finding)
}

// HandleGetStatusHistory handles GET /findings/{id}/history.
func (h *findingHandler) HandleGetStatusHistory(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	history, svcErr := h.service.GetStatusHistory(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, history)
}
