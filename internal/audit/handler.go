package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/trustvault/audit-management-api/internal/audit/model"
	"github.com/trustvault/audit-management-api/internal/authz"
	"github.com/trustvault/audit-management-api/internal/system/constants"
	"github.com/trustvault/audit-management-api/internal/system/error/serviceerror"
	"github.com/trustvault/audit-management-api/internal/system/utils"
)

type auditHandler struct {
	service AuditServiceInterface
}

func newAuditHandler(service AuditServiceInterface) *auditHandler {
	return &auditHandler{service: service}
}

// HandleCreateAudit handles POST /audits.
func (h *auditHandler) HandleCreateAudit(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	var req model.AuditCreateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"malformed request body"))
		return
	}

	audit, svcErr := h.service.CreateAudit(r.Context(), actor, &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, audit)
}

// HandleGetAudit handles GET /audits/{id}.
func (h *auditHandler) HandleGetAudit(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	audit, svcErr := h.service.GetAudit(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, audit)
}

// HandleListAudits handles GET /audits.
func (h *auditHandler) HandleListAudits(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	limit := constants.DefaultPageSize
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	list, svcErr := h.service.ListAudits(r.Context(), actor,
		r.URL.Query().Get("status"), r.URL.Query().Get("type"), limit, offset)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, list)
}

// HandlePlanAudit handles POST /audits/{id}/plan.
func (h *auditHandler) HandlePlanAudit(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.PlanAudit)
}

// HandleStartAudit handles POST /audits/{id}/start.
func (h *auditHandler) HandleStartAudit(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.StartAudit)
}

func (h *auditHandler) handleTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor authz.ActorContext, auditID string) (*model.Audit, *serviceerror.ServiceError)) {

	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	audit, svcErr := op(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, audit)
}

// HandleCompleteAudit handles POST /audits/{id}/complete.
func (h *auditHandler) HandleCompleteAudit(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	// Body is optional: signing without fresh report edits is allowed.
	var req model.AuditCompleteRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
				"malformed request body"))
			return
		}
	}

	audit, svcErr := h.service.SignAndCompleteAudit(r.Context(), actor, r.PathValue("id"), &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, audit)
}

// HandleUpdateReport handles PUT /audits/{id}/report.
func (h *auditHandler) HandleUpdateReport(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	var req model.AuditReportUpdateRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"malformed request body"))
		return
	}

	audit, svcErr := h.service.UpdateReport(r.Context(), actor, r.PathValue("id"), &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, audit)
}

// HandleSetControlReview handles PUT /audits/{id}/controls/{controlId}.
func (h *auditHandler) HandleSetControlReview(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	var req model.ControlReviewRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.SendError(w, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"malformed request body"))
		return
	}

	review, svcErr := h.service.SetControlReview(r.Context(), actor,
		r.PathValue("id"), r.PathValue("controlId"), &req)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, review)
}

// HandleGetAuditControls handles GET /audits/{id}/controls.
func (h *auditHandler) HandleGetAuditControls(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	controls, svcErr := h.service.GetAuditControls(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, controls)
}

// HandleGetAuditReport handles GET /audits/{id}/report.
func (h *auditHandler) HandleGetAuditReport(w http.ResponseWriter, r *http.Request) {
	actor, svcErr := authz.ActorFromRequest(r)
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}

	report, svcErr := h.service.GetAuditReport(r.Context(), actor, r.PathValue("id"))
	if svcErr != nil {
		utils.SendError(w, svcErr)
		return
	}
	utils.JSONResponse(w, http.StatusOK, report)
}

// HandleGetStatusHistory handles GET /audits/{id}/history.
func (h *auditHandler) HandleGetStatusHistory(w http.ResponseWriter, r *http.Request) {
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
