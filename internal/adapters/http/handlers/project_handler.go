// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"net/http"

	"github.com/laurensbos/webstability-backend/internal/adapters/http/dto"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// ProjectHandler handles HTTP requests for the project lifecycle: intake,
// phase transitions, payment, checklist, referral codes, chat and feedback.
type ProjectHandler struct {
	svc ports.LifecycleService
}

// NewProjectHandler creates a new ProjectHandler with the given service port.
func NewProjectHandler(svc ports.LifecycleService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// CreateProject handles POST /api/v1/projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.CreateProject(r.Context(), req.ToIntake())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(created))
}

// ListProjects handles GET /api/v1/projects with optional phase, package and
// service_type query filters.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	f := project.Filter{
		Phase:       project.Phase(r.URL.Query().Get("phase")),
		Package:     project.Package(r.URL.Query().Get("package")),
		ServiceType: project.ServiceType(r.URL.Query().Get("service_type")),
	}

	projects, err := h.svc.ListProjects(r.Context(), f)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectListResponse(projects))
}

// GetProject handles GET /api/v1/projects/{id}. The id may be the internal
// id or the client-facing short code.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	p, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}

// DeleteProject handles DELETE /api/v1/projects/{id}.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestPhaseTransition handles POST /api/v1/projects/{id}/phase.
func (h *ProjectHandler) RequestPhaseTransition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.PhaseTransitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.RequestPhaseTransition(r.Context(), id, project.Phase(req.Target), req.ActorOrDefault())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}

// CreatePaymentLink handles POST /api/v1/projects/{id}/payment-link.
func (h *ProjectHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.PaymentLinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.CreatePaymentLink(r.Context(), id, req.AmountCents)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}

// ConfirmPayment handles POST /api/v1/projects/{id}/payments/confirm.
// Confirmations are idempotent by provider reference.
func (h *ProjectHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.PaymentConfirmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.RecordPaymentConfirmed(r.Context(), id, req.AmountCents, req.Reference)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}

// EvaluateChecklist handles GET /api/v1/projects/{id}/checklist.
func (h *ProjectHandler) EvaluateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	result, err := h.svc.EvaluateChecklist(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChecklistResponse(result))
}

// UpdateChecklist handles PATCH /api/v1/projects/{id}/checklist.
func (h *ProjectHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateChecklistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateChecklist(r.Context(), id, req.ToUpdate())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}

// GetOrCreateReferralCode handles POST /api/v1/projects/{id}/referral-code.
func (h *ProjectHandler) GetOrCreateReferralCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	code, err := h.svc.GetOrCreateReferralCode(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReferralCodeResponse{ReferralCode: code})
}

// AppendMessage handles POST /api/v1/projects/{id}/messages.
func (h *ProjectHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.MessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.AppendMessage(r.Context(), id, project.Sender(req.Sender), req.Body)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(p))
}

// SubmitFeedback handles POST /api/v1/projects/{id}/feedback.
func (h *ProjectHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.FeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.svc.SubmitFeedback(r.Context(), id, req.ToEntry())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(p))
}

// ResolveFeedback handles POST /api/v1/projects/{id}/feedback/{feedbackId}/resolve.
func (h *ProjectHandler) ResolveFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	feedbackID, err := pathID(r, "feedbackId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	p, err := h.svc.ResolveFeedback(r.Context(), id, feedbackID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(p))
}
