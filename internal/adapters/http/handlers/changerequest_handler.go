package handlers

import (
	"net/http"

	"github.com/laurensbos/webstability-backend/internal/adapters/http/dto"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// ChangeRequestHandler handles HTTP requests for the change-request ledger.
type ChangeRequestHandler struct {
	svc ports.ChangeRequestService
}

// NewChangeRequestHandler creates a new ChangeRequestHandler with the given
// service port.
func NewChangeRequestHandler(svc ports.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{svc: svc}
}

// Submit handles POST /api/v1/projects/{id}/change-requests.
func (h *ChangeRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CreateChangeRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.Submit(r.Context(), projectID, req.ToChangeRequest())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToChangeRequestResponse(created))
}

// List handles GET /api/v1/change-requests with optional status, priority
// and project_id query filters. Legacy status aliases are accepted.
func (h *ChangeRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	f := changerequest.Filter{
		Priority:  changerequest.Priority(r.URL.Query().Get("priority")),
		ProjectID: r.URL.Query().Get("project_id"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		f.Status = changerequest.Normalize(raw)
	}

	requests, err := h.svc.List(r.Context(), f)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChangeRequestListResponse(requests))
}

// Stats handles GET /api/v1/change-requests/stats with an optional
// project_id query filter.
func (h *ChangeRequestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// UpdateStatus handles PATCH /api/v1/change-requests/{id}.
func (h *ChangeRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateChangeRequestStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), id, req.NormalizedStatus(), req.Response)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChangeRequestResponse(updated))
}

// BulkUpdate handles PATCH /api/v1/change-requests/bulk.
func (h *ChangeRequestHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkUpdateChangeRequestsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.svc.BulkUpdate(r.Context(), req.ToStatusUpdates())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBulkUpdateResponse(result))
}
