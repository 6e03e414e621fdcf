package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/laurensbos/webstability-backend/internal/domain"
)

func TestNewErrorResponse_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("wrap: %w", domain.ErrValidation), http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"payment required", domain.ErrPaymentRequired, http.StatusPaymentRequired},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"checklist incomplete", domain.ErrChecklistIncomplete, http.StatusUnprocessableEntity},
		{"unresolved feedback", domain.ErrUnresolvedFeedback, http.StatusUnprocessableEntity},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"invalid status transition", domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"quota exceeded", domain.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"unavailable", domain.ErrUnavailable, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1", nil)
			resp := NewErrorResponse(r, tt.err)

			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status, tt.wantStatus)
			}
			if resp.Title != http.StatusText(tt.wantStatus) {
				t.Errorf("Title = %q", resp.Title)
			}
			if resp.Instance != "/api/v1/projects/p1" {
				t.Errorf("Instance = %q", resp.Instance)
			}
		})
	}
}

// Guard sentinels must win over the generic conflict mapping even when a
// transition error wraps them.
func TestNewErrorResponse_TransitionErrorUnwrapsToGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reason     error
		wantStatus int
	}{
		{"adjacency", domain.ErrInvalidTransition, http.StatusConflict},
		{"payment gate", domain.ErrPaymentRequired, http.StatusPaymentRequired},
		{"checklist gate", domain.ErrChecklistIncomplete, http.StatusUnprocessableEntity},
		{"feedback gate", domain.ErrUnresolvedFeedback, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			terr := &domain.TransitionError{From: "domain", To: "live", Reason: tt.reason}
			r := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/transition", nil)
			resp := NewErrorResponse(r, terr)

			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status, tt.wantStatus)
			}
		})
	}
}

func TestNewErrorResponse_MissingGates(t *testing.T) {
	t.Parallel()

	terr := &domain.TransitionError{
		From:    "domain",
		To:      "live",
		Reason:  domain.ErrChecklistIncomplete,
		Missing: []string{"payment_received", "final_approval_given"},
	}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/transition", nil)
	resp := NewErrorResponse(r, terr)

	if len(resp.Missing) != 2 || resp.Missing[0] != "payment_received" {
		t.Errorf("Missing = %v", resp.Missing)
	}
}

func TestNewErrorResponse_ValidationDetails(t *testing.T) {
	t.Parallel()

	verr := &domain.ValidationError{Fields: map[string]string{
		"client_name": "is required",
		"package":     `invalid: "gold"`,
	}}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
	resp := NewErrorResponse(r, verr)

	if resp.Status != http.StatusBadRequest {
		t.Fatalf("Status = %d", resp.Status)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2 sorted details", resp.Errors)
	}
	// Details are sorted by location.
	if resp.Errors[0].Location != "body.client_name" || resp.Errors[1].Location != "body.package" {
		t.Errorf("locations = %q, %q", resp.Errors[0].Location, resp.Errors[1].Location)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/projects/nope", nil)
	WriteErrorResponse(w, r, fmt.Errorf("%w: project nope", domain.ErrNotFound))

	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusNotFound || body.Detail == "" {
		t.Errorf("body = %+v", body)
	}
}
