// Package changerequest defines the ChangeRequest entity: a client-submitted
// request to modify a live website. Change requests consume monthly quota,
// are never deleted, and keep a full audit trail through status transitions.
package changerequest

import (
	"fmt"
	"strings"
	"time"

	"github.com/laurensbos/webstability-backend/internal/domain"
)

// ChangeRequest is a child entity of a Project, created once the project is
// live. CompletedAt is set if and only if Status is completed; Response is
// developer-authored and may be set at completion time (and corrected
// afterwards without touching CompletedAt).
type ChangeRequest struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Response    string     `json:"response,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Validate checks business rules for the ChangeRequest entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (c *ChangeRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(c.ProjectID) == "" {
		fields["project_id"] = domain.MsgRequired
	}
	if strings.TrimSpace(c.Description) == "" {
		fields["description"] = domain.MsgRequired
	}
	if !c.Category.IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", c.Category)
	}
	if !c.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", c.Priority)
	}
	if !c.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", c.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Transition applies a status change at the given time. Completed requests
// stamp CompletedAt exactly once; an optional developer response is recorded
// alongside. Returns domain.ErrInvalidStatusTransition for moves the status
// graph does not allow.
func (c *ChangeRequest) Transition(target Status, response string, now time.Time) error {
	if !target.IsValid() {
		return &domain.ValidationError{
			Fields: map[string]string{"status": fmt.Sprintf("invalid: %q", target)},
		}
	}
	if !c.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, c.Status, target)
	}

	c.Status = target
	c.UpdatedAt = now
	if target == StatusCompleted {
		if response != "" {
			c.Response = response
		}
		if c.CompletedAt == nil {
			c.CompletedAt = &now
		}
	}
	return nil
}

// AmendResponse edits the developer response on a completed request without
// touching CompletedAt. Used for post-completion corrections.
func (c *ChangeRequest) AmendResponse(response string, now time.Time) {
	c.Response = response
	c.UpdatedAt = now
}

// Filter holds optional criteria for listing change requests.
// Zero-value fields mean "no filter"; set fields combine with logical AND.
type Filter struct {
	Status    Status
	Priority  Priority
	ProjectID string
}

// Matches reports whether the change request satisfies every set criterion.
func (f Filter) Matches(c *ChangeRequest) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if f.ProjectID != "" && c.ProjectID != f.ProjectID {
		return false
	}
	return true
}

// Stats aggregates change-request counts by status.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Tally computes stats over a slice of change requests.
func Tally(requests []ChangeRequest) Stats {
	var s Stats
	for i := range requests {
		s.Total++
		switch requests[i].Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}
