package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laurensbos/webstability-backend/internal/app/fanout"
	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/ports"
	"github.com/laurensbos/webstability-backend/internal/quota"
)

// Compile-time check that ChangeService implements ports.ChangeRequestService.
var _ ports.ChangeRequestService = (*ChangeService)(nil)

// bulkUpdateWorkers bounds concurrency for bulk status updates.
const bulkUpdateWorkers = 4

// ChangeService implements ports.ChangeRequestService: the ledger of
// client-submitted change requests. Submission pairs quota consumption with
// request creation in one versioned store write, so concurrent submissions
// can never overspend the monthly allowance.
type ChangeService struct {
	store    ports.Store
	quota    *quota.Tracker
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewChangeService creates a ChangeService.
func NewChangeService(store ports.Store, tracker *quota.Tracker, notifier ports.Notifier, logger *slog.Logger) *ChangeService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChangeService{
		store:    store,
		quota:    tracker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit creates a change request for a live project. The description check
// runs before any quota is spent; the quota check and counter increment are
// re-applied on every optimistic-concurrency attempt against the freshly
// read project, and the request plus the bumped counter are written in one
// atomic store call.
func (s *ChangeService) Submit(ctx context.Context, projectID string, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	if strings.TrimSpace(cr.Description) == "" {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"description": domain.MsgRequired},
		}
	}

	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		rec, err := getProjectRecord(ctx, s.store, projectID)
		if err != nil {
			return nil, err
		}
		p := rec.Project

		if !p.IsLive() {
			return nil, fmt.Errorf("%w: change requests require a live project (phase %s)", domain.ErrForbidden, p.Phase)
		}
		if err := s.quota.Consume(&p); err != nil {
			return nil, err
		}

		now := s.now()
		created := *cr
		created.ID = uuid.New().String()
		created.ProjectID = p.ID
		created.Status = changerequest.StatusPending
		created.Response = ""
		created.CompletedAt = nil
		created.CreatedAt = now
		created.UpdatedAt = now
		if err := created.Validate(); err != nil {
			return nil, err
		}

		p.UpdatedAt = now
		err = s.store.CreateChangeRequest(ctx, &created, &p, rec.Version)
		if err == nil {
			remaining, unlimited := s.quota.Remaining(p.Package, p.ChangesThisMonth)
			s.logger.InfoContext(ctx, "change request submitted",
				slog.String("project_id", p.ID),
				slog.String("change_request_id", created.ID),
				slog.Int("remaining", remaining),
				slog.Bool("unlimited", unlimited),
			)
			return &created, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			s.logger.ErrorContext(ctx, "failed to create change request",
				slog.String("operation", "Submit"),
				slog.String("project_id", p.ID),
				slog.Any("error", err),
			)
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: change request write kept conflicting: %v", domain.ErrUnavailable, lastErr)
}

// UpdateStatus transitions a change request. Re-completing an already
// completed request is a no-op that may correct the developer response;
// CompletedAt never changes after the first completion. All other invalid
// moves fail with domain.ErrInvalidStatusTransition.
//
// The write is guarded by the record version and retried from a fresh read
// on conflict, so concurrent updaters serialize: a completion can never be
// silently overwritten by a racing writer holding a stale snapshot.
func (s *ChangeService) UpdateStatus(ctx context.Context, id string, status changerequest.Status, response string) (*changerequest.ChangeRequest, error) {
	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		rec, err := s.store.GetChangeRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		cr := rec.ChangeRequest

		if cr.Status == changerequest.StatusCompleted && status == changerequest.StatusCompleted {
			if response == "" || response == cr.Response {
				return &cr, nil
			}
			cr.AmendResponse(response, s.now())
			err := s.store.PutChangeRequest(ctx, &cr, rec.Version)
			if err == nil {
				return &cr, nil
			}
			if !errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			lastErr = err
			continue
		}

		if err := cr.Transition(status, response, s.now()); err != nil {
			return nil, err
		}

		err = s.store.PutChangeRequest(ctx, &cr, rec.Version)
		if err == nil {
			s.logger.InfoContext(ctx, "change request updated",
				slog.String("change_request_id", cr.ID),
				slog.String("status", cr.Status.String()),
			)
			if cr.Status == changerequest.StatusCompleted {
				s.notifyCompletion(ctx, &cr)
			}
			return &cr, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			s.logger.ErrorContext(ctx, "failed to update change request",
				slog.String("operation", "UpdateStatus"),
				slog.String("change_request_id", id),
				slog.Any("error", err),
			)
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: change request %s write kept conflicting: %v", domain.ErrUnavailable, id, lastErr)
}

// List returns change requests matching the filter, most recent first by
// creation time.
func (s *ChangeService) List(ctx context.Context, f changerequest.Filter) ([]changerequest.ChangeRequest, error) {
	requests, err := s.store.ListChangeRequests(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

// Stats aggregates counts by status, optionally scoped to one project.
// Counts are derived from the same snapshot List would observe.
func (s *ChangeService) Stats(ctx context.Context, projectID string) (changerequest.Stats, error) {
	requests, err := s.store.ListChangeRequests(ctx, changerequest.Filter{ProjectID: projectID})
	if err != nil {
		return changerequest.Stats{}, err
	}
	return changerequest.Tally(requests), nil
}

// BulkUpdate applies status updates concurrently with partial-success
// semantics: each update succeeds or fails on its own, and per-item
// failures are collected rather than aborting the batch.
func (s *ChangeService) BulkUpdate(ctx context.Context, updates []ports.StatusUpdate) (*ports.BulkUpdateResult, error) {
	results := fanout.Run(ctx, bulkUpdateWorkers, updates,
		func(ctx context.Context, u ports.StatusUpdate) (*changerequest.ChangeRequest, error) {
			return s.UpdateStatus(ctx, u.ChangeRequestID, u.Status, u.Response)
		})

	out := &ports.BulkUpdateResult{}
	for i, res := range results {
		if res.Err != nil {
			out.Errors = append(out.Errors, ports.BulkUpdateError{
				ChangeRequestID: updates[i].ChangeRequestID,
				Err:             res.Err,
			})
			continue
		}
		out.Updated = append(out.Updated, *res.Value)
	}
	return out, nil
}

// notifyCompletion sends a best-effort completion notification to the
// owning project's client.
func (s *ChangeService) notifyCompletion(ctx context.Context, cr *changerequest.ChangeRequest) {
	if s.notifier == nil {
		return
	}

	var recipient string
	if rec, err := s.store.GetProject(ctx, cr.ProjectID); err == nil {
		recipient = rec.Project.ClientEmail
	}

	payload := map[string]any{
		"change_request_id": cr.ID,
		"description":       cr.Description,
		"response":          cr.Response,
	}
	if err := s.notifier.Send(ctx, ports.NotifyChangeCompleted, recipient, payload); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("kind", string(ports.NotifyChangeCompleted)),
			slog.Any("error", err),
		)
	}
}
