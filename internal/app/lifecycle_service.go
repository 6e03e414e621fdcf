// Package app provides the application services that orchestrate the
// project lifecycle and the change-request ledger. Services compose the
// core engines (state machine, quota tracker, checklist, referral codes)
// over the store port and dispatch best-effort notifications; they are the
// only entry points external adapters call.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/phase"
	"github.com/laurensbos/webstability-backend/internal/ports"
	"github.com/laurensbos/webstability-backend/internal/referral"
)

// Compile-time check that LifecycleService implements ports.LifecycleService.
var _ ports.LifecycleService = (*LifecycleService)(nil)

// referralAttempts bounds the collision-retry loop when minting codes.
const referralAttempts = 5

// LifecycleService implements ports.LifecycleService. All project mutations
// funnel through the optimistic-concurrency helper so concurrent writers on
// the same aggregate serialize; the caller-supplied phase is never trusted,
// the legal next state is always recomputed from the stored record.
type LifecycleService struct {
	store     ports.Store
	machine   *phase.Machine
	checklist checklist.Engine
	gateway   ports.PaymentGateway
	notifier  ports.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewLifecycleService creates a LifecycleService.
func NewLifecycleService(
	store ports.Store,
	machine *phase.Machine,
	cl checklist.Engine,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	logger *slog.Logger,
) *LifecycleService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LifecycleService{
		store:     store,
		machine:   machine,
		checklist: cl,
		gateway:   gateway,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateProject registers a new engagement from intake data.
func (s *LifecycleService) CreateProject(ctx context.Context, intake ports.Intake) (*project.Project, error) {
	now := s.now()

	p := &project.Project{
		ID:            uuid.New().String(),
		ProjectID:     newProjectCode(),
		ClientName:    intake.ClientName,
		ClientEmail:   intake.ClientEmail,
		Package:       intake.Package,
		ServiceType:   intake.ServiceType,
		Phase:         s.machine.Graph().Start,
		PaymentStatus: project.PaymentPending,
		DomainInfo:    intake.DomainInfo,
		EmailInfo:     intake.EmailInfo,
		LegalInfo:     intake.LegalInfo,
		BusinessInfo:  intake.BusinessInfo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.DomainInfo.TransferStatus == "" {
		p.DomainInfo.TransferStatus = project.TransferNotStarted
		if !p.DomainInfo.HasDomain {
			p.DomainInfo.TransferStatus = project.TransferNotNeeded
		}
	}
	if p.EmailInfo.EmailSetupStatus == "" {
		p.EmailInfo.EmailSetupStatus = project.EmailSetupNotStarted
		if !p.EmailInfo.WantsWebstabilityEmail && !p.EmailInfo.WantsEmailForwarding {
			p.EmailInfo.EmailSetupStatus = project.EmailSetupNotNeeded
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateProject(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to create project",
			slog.String("operation", "CreateProject"),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "project created",
		slog.String("project_id", p.ID),
		slog.String("code", p.ProjectID),
		slog.String("package", p.Package.String()),
	)
	return p, nil
}

// GetProject looks a project up by internal id or client-facing code.
func (s *LifecycleService) GetProject(ctx context.Context, id string) (*project.Project, error) {
	rec, err := getProjectRecord(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	return &rec.Project, nil
}

// ListProjects returns projects matching the filter, most recent first.
func (s *LifecycleService) ListProjects(ctx context.Context, f project.Filter) ([]project.Project, error) {
	return s.store.ListProjects(ctx, f)
}

// DeleteProject hard-deletes a project and its change requests.
func (s *LifecycleService) DeleteProject(ctx context.Context, id string) error {
	rec, err := getProjectRecord(ctx, s.store, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, rec.Project.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete project",
			slog.String("operation", "DeleteProject"),
			slog.String("project_id", rec.Project.ID),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "project deleted", slog.String("project_id", rec.Project.ID))
	return nil
}

// RequestPhaseTransition validates and applies a phase transition. The
// target phase is recomputed against the stored record on every attempt, so
// a stale caller can never push a project somewhere the guards forbid.
func (s *LifecycleService) RequestPhaseTransition(ctx context.Context, id string, target project.Phase, actor ports.Actor) (*project.Project, error) {
	override := actor == ports.ActorDeveloper
	var from project.Phase

	p, err := updateProject(ctx, s.store, id, func(p *project.Project) error {
		from = p.Phase
		return s.machine.Apply(p, target, override, s.now())
	})
	if err != nil {
		if isGuardFailure(err) {
			s.logger.InfoContext(ctx, "phase transition blocked",
				slog.String("project_id", id),
				slog.String("target", target.String()),
				slog.Any("reason", err),
			)
		} else {
			s.logger.ErrorContext(ctx, "failed to apply phase transition",
				slog.String("operation", "RequestPhaseTransition"),
				slog.String("project_id", id),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "phase transition applied",
		slog.String("project_id", p.ID),
		slog.String("from", from.String()),
		slog.String("to", target.String()),
		slog.String("actor", string(actor)),
	)

	s.notify(ctx, ports.NotifyPhaseChanged, p.ClientEmail, map[string]any{
		"project_id": p.ProjectID,
		"from":       from.String(),
		"to":         target.String(),
	})
	return p, nil
}

// CreatePaymentLink asks the payment gateway for a checkout and stores the
// URL on the project. The gateway call happens before the store write; a
// gateway failure leaves the project untouched.
func (s *LifecycleService) CreatePaymentLink(ctx context.Context, id string, amountCents int64) (*project.Project, error) {
	if amountCents <= 0 {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"amount_cents": fmt.Sprintf("must be positive, got %d", amountCents)},
		}
	}

	rec, err := getProjectRecord(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	checkout, err := s.gateway.CreateCheckout(ctx, &rec.Project, amountCents)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create checkout",
			slog.String("operation", "CreatePaymentLink"),
			slog.String("project_id", rec.Project.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: payment gateway: %v", domain.ErrUnavailable, err)
	}

	p, err := updateProject(ctx, s.store, rec.Project.ID, func(p *project.Project) error {
		p.PaymentURL = checkout.URL
		p.PaymentReference = checkout.Reference
		if p.PaymentStatus == project.PaymentPending {
			p.PaymentStatus = project.PaymentAwaiting
		}
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, ports.NotifyPaymentLinkReady, p.ClientEmail, map[string]any{
		"project_id":  p.ProjectID,
		"payment_url": checkout.URL,
	})
	return p, nil
}

// RecordPaymentConfirmed marks the build payment as received and satisfies
// the payment checklist gate. Idempotent by reference: confirming an
// already-paid project again is a no-op, not an error, and replaying the
// confirmation of a payment that was since refunded leaves the refund
// standing.
func (s *LifecycleService) RecordPaymentConfirmed(ctx context.Context, id string, amountCents int64, reference string) (*project.Project, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"reference": domain.MsgRequired},
		}
	}

	var applied bool
	p, err := updateProject(ctx, s.store, id, func(p *project.Project) error {
		if p.PaymentStatus == project.PaymentPaid {
			applied = false
			return nil
		}
		if p.PaymentStatus == project.PaymentRefunded && p.PaymentReference == reference {
			// A webhook replay of the recorded confirmation. Only a fresh
			// payment, carrying a new reference, may pay the project again.
			applied = false
			return nil
		}
		now := s.now()
		p.PaymentStatus = project.PaymentPaid
		p.PaymentReference = reference
		p.Checklist.PaymentReceived.Set(true, now)
		p.UpdatedAt = now
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.logger.InfoContext(ctx, "payment confirmed",
			slog.String("project_id", p.ID),
			slog.String("reference", reference),
			slog.Int64("amount_cents", amountCents),
		)
	}
	return p, nil
}

// GetOrCreateReferralCode returns the project's referral code, minting a
// store-wide unique one on first call. A concurrent caller losing the
// versioned write observes the winner's code on re-read and returns it.
func (s *LifecycleService) GetOrCreateReferralCode(ctx context.Context, id string) (string, error) {
	rec, err := getProjectRecord(ctx, s.store, id)
	if err != nil {
		return "", err
	}
	if rec.Project.ReferralCode != "" {
		return rec.Project.ReferralCode, nil
	}

	code, err := s.mintReferralCode(ctx)
	if err != nil {
		return "", err
	}

	var stored string
	_, err = updateProject(ctx, s.store, rec.Project.ID, func(p *project.Project) error {
		if p.ReferralCode != "" {
			// Another caller won the race; keep theirs.
			stored = p.ReferralCode
			return nil
		}
		p.ReferralCode = code
		p.UpdatedAt = s.now()
		stored = code
		return nil
	})
	if err != nil {
		return "", err
	}

	if stored == code {
		s.logger.InfoContext(ctx, "referral code issued",
			slog.String("project_id", rec.Project.ID),
			slog.String("code", code),
		)
		s.notify(ctx, ports.NotifyReferralIssued, rec.Project.ClientEmail, map[string]any{
			"project_id": rec.Project.ProjectID,
			"code":       code,
		})
	}
	return stored, nil
}

// EvaluateChecklist reports pre-live checklist completeness.
func (s *LifecycleService) EvaluateChecklist(ctx context.Context, id string) (checklist.Result, error) {
	rec, err := getProjectRecord(ctx, s.store, id)
	if err != nil {
		return checklist.Result{}, err
	}
	return s.checklist.Evaluate(&rec.Project), nil
}

// UpdateChecklist flips developer-managed pre-live checklist gates. Gates
// the update does not name keep their state and completion stamps; flipping
// a gate to its current value is a no-op so stamps never move on replays.
// The payment gate has no field here: only RecordPaymentConfirmed sets it.
func (s *LifecycleService) UpdateChecklist(ctx context.Context, id string, update ports.ChecklistUpdate) (*project.Project, error) {
	return updateProjectLogged(ctx, s, "UpdateChecklist", id, func(p *project.Project) error {
		now := s.now()
		changed := false
		apply := func(gate *project.ChecklistGate, want *bool) {
			if want == nil || gate.Done == *want {
				return
			}
			gate.Set(*want, now)
			changed = true
		}

		cl := &p.Checklist
		apply(&cl.AuthCodeProvided, update.AuthCodeProvided)
		apply(&cl.DomainTransferCompleted, update.DomainTransferCompleted)
		apply(&cl.PrivacyPolicyProvided, update.PrivacyPolicyProvided)
		apply(&cl.TermsConditionsProvided, update.TermsConditionsProvided)
		apply(&cl.EmailPreferenceConfirmed, update.EmailPreferenceConfirmed)
		apply(&cl.EmailSetupCompleted, update.EmailSetupCompleted)
		apply(&cl.AnalyticsAgreed, update.AnalyticsAgreed)
		apply(&cl.FinalApprovalGiven, update.FinalApprovalGiven)

		if changed {
			p.UpdatedAt = now
		}
		return nil
	})
}

// AppendMessage adds a chat message to the project's append-only thread.
func (s *LifecycleService) AppendMessage(ctx context.Context, id string, sender project.Sender, body string) (*project.Project, error) {
	if !sender.IsValid() {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"sender": fmt.Sprintf("invalid: %q", sender)},
		}
	}
	if strings.TrimSpace(body) == "" {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"body": domain.MsgRequired},
		}
	}

	return updateProjectLogged(ctx, s, "AppendMessage", id, func(p *project.Project) error {
		now := s.now()
		p.Messages = append(p.Messages, project.ChatMessage{
			ID:     uuid.New().String(),
			Sender: sender,
			Body:   body,
			SentAt: now,
		})
		p.UpdatedAt = now
		return nil
	})
}

// SubmitFeedback records a design/review feedback entry as pending.
func (s *LifecycleService) SubmitFeedback(ctx context.Context, id string, entry project.FeedbackEntry) (*project.Project, error) {
	if !entry.Type.IsValid() {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"type": fmt.Sprintf("invalid: %q", entry.Type)},
		}
	}
	if len(entry.Items) == 0 {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"items": domain.MsgRequired},
		}
	}
	for i, item := range entry.Items {
		if !item.Rating.IsValid() {
			return nil, &domain.ValidationError{
				Fields: map[string]string{fmt.Sprintf("items[%d].rating", i): fmt.Sprintf("invalid: %q", item.Rating)},
			}
		}
	}

	return updateProjectLogged(ctx, s, "SubmitFeedback", id, func(p *project.Project) error {
		now := s.now()
		entry.ID = uuid.New().String()
		entry.Date = now
		entry.Status = project.FeedbackPending
		entry.ResolvedAt = nil
		p.FeedbackHistory = append(p.FeedbackHistory, entry)
		p.UpdatedAt = now
		return nil
	})
}

// ResolveFeedback marks a feedback entry as resolved.
func (s *LifecycleService) ResolveFeedback(ctx context.Context, id string, feedbackID string) (*project.Project, error) {
	return updateProjectLogged(ctx, s, "ResolveFeedback", id, func(p *project.Project) error {
		for i := range p.FeedbackHistory {
			if p.FeedbackHistory[i].ID != feedbackID {
				continue
			}
			now := s.now()
			p.FeedbackHistory[i].Status = project.FeedbackResolved
			p.FeedbackHistory[i].ResolvedAt = &now
			p.UpdatedAt = now
			return nil
		}
		return fmt.Errorf("%w: feedback entry %s", domain.ErrNotFound, feedbackID)
	})
}

// mintReferralCode generates codes until one is unused, bounded by
// referralAttempts.
func (s *LifecycleService) mintReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < referralAttempts; attempt++ {
		code, err := referral.NewCode()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		taken, err := s.store.ReferralCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not mint a unique referral code", domain.ErrUnavailable)
}

// notify dispatches a best-effort notification. Failures are logged and
// never propagate; committed state is the source of truth.
func (s *LifecycleService) notify(ctx context.Context, kind ports.NotificationKind, recipient string, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, kind, recipient, payload); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}

// updateProjectLogged wraps updateProject with the service's standard error
// logging for simple mutations.
func updateProjectLogged(ctx context.Context, s *LifecycleService, op, id string, mutate func(*project.Project) error) (*project.Project, error) {
	p, err := updateProject(ctx, s.store, id, mutate)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.ErrorContext(ctx, "project update failed",
				slog.String("operation", op),
				slog.String("project_id", id),
				slog.Any("error", err),
			)
		}
		return nil, err
	}
	return p, nil
}

// isGuardFailure reports whether the error is a blocked-transition result
// rather than an infrastructure failure.
func isGuardFailure(err error) bool {
	var terr *domain.TransitionError
	return errors.As(err, &terr)
}

// isBusinessError reports whether the error belongs to the recoverable
// business-rule taxonomy (logged at info level by callers, not as errors).
func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrPaymentRequired) ||
		errors.Is(err, domain.ErrChecklistIncomplete) ||
		errors.Is(err, domain.ErrUnresolvedFeedback) ||
		errors.Is(err, domain.ErrQuotaExceeded) ||
		errors.Is(err, domain.ErrInvalidStatusTransition)
}

// newProjectCode derives the client-facing short code for a new project.
func newProjectCode() string {
	return "P-" + strings.ToUpper(uuid.New().String()[:8])
}
