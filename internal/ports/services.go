package ports

import (
	"context"

	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// Actor identifies who initiates a mutation. Developer-initiated phase
// transitions may bypass graph adjacency and the feedback guard; payment and
// checklist guards hold for everyone.
type Actor string

const (
	ActorClient    Actor = "client"
	ActorDeveloper Actor = "developer"
)

// IsValid returns true if the actor is one of the defined constants.
func (a Actor) IsValid() bool {
	return a == ActorClient || a == ActorDeveloper
}

// Intake carries the data captured by the onboarding form.
type Intake struct {
	ClientName   string
	ClientEmail  string
	Package      project.Package
	ServiceType  project.ServiceType
	DomainInfo   project.DomainInfo
	EmailInfo    project.EmailInfo
	LegalInfo    project.LegalInfo
	BusinessInfo project.BusinessInfo
}

// LifecycleService is the service port for project aggregate operations:
// intake, phase transitions, payment, checklist, referral codes, chat and
// feedback. Implemented by the application layer; the only entry point
// external callers should use for project mutations.
type LifecycleService interface {
	// CreateProject registers a new engagement from intake data.
	// Returns domain.ErrValidation if the intake fails validation.
	CreateProject(ctx context.Context, intake Intake) (*project.Project, error)

	// GetProject looks a project up by internal id or client-facing code.
	// Returns domain.ErrNotFound if neither matches.
	GetProject(ctx context.Context, id string) (*project.Project, error)

	// ListProjects returns projects matching the filter, most recent first.
	ListProjects(ctx context.Context, f project.Filter) ([]project.Project, error)

	// DeleteProject hard-deletes a project and its change requests.
	DeleteProject(ctx context.Context, id string) error

	// RequestPhaseTransition validates and applies a phase transition.
	// Guard failures are returned as *domain.TransitionError naming the
	// blocked precondition.
	RequestPhaseTransition(ctx context.Context, id string, target project.Phase, actor Actor) (*project.Project, error)

	// CreatePaymentLink asks the payment gateway for a checkout and stores
	// the URL on the project.
	CreatePaymentLink(ctx context.Context, id string, amountCents int64) (*project.Project, error)

	// RecordPaymentConfirmed marks the build payment as received.
	// Idempotent by reference: a duplicate confirmation is a no-op, and a
	// replay of a since-refunded confirmation leaves the refund standing.
	RecordPaymentConfirmed(ctx context.Context, id string, amountCents int64, reference string) (*project.Project, error)

	// GetOrCreateReferralCode returns the project's referral code, minting
	// and persisting a unique one on first call. Concurrent calls converge
	// on a single stored code.
	GetOrCreateReferralCode(ctx context.Context, id string) (string, error)

	// EvaluateChecklist reports pre-live checklist completeness and the
	// missing mandatory gates.
	EvaluateChecklist(ctx context.Context, id string) (checklist.Result, error)

	// UpdateChecklist flips developer-managed pre-live checklist gates.
	// The payment gate is excluded; only a confirmed payment sets it.
	UpdateChecklist(ctx context.Context, id string, update ChecklistUpdate) (*project.Project, error)

	// AppendMessage adds a chat message to the project thread.
	AppendMessage(ctx context.Context, id string, sender project.Sender, body string) (*project.Project, error)

	// SubmitFeedback records a design/review feedback entry.
	SubmitFeedback(ctx context.Context, id string, entry project.FeedbackEntry) (*project.Project, error)

	// ResolveFeedback marks a feedback entry as resolved.
	// Returns domain.ErrNotFound if the entry does not exist.
	ResolveFeedback(ctx context.Context, id string, feedbackID string) (*project.Project, error)
}

// ChecklistUpdate carries the pre-live gates to flip. Nil fields are left
// untouched, so a partial update never clears gates it does not name.
type ChecklistUpdate struct {
	AuthCodeProvided         *bool
	DomainTransferCompleted  *bool
	PrivacyPolicyProvided    *bool
	TermsConditionsProvided  *bool
	EmailPreferenceConfirmed *bool
	EmailSetupCompleted      *bool
	AnalyticsAgreed          *bool
	FinalApprovalGiven       *bool
}

// StatusUpdate pairs a change-request id with a target status for bulk
// operations.
type StatusUpdate struct {
	ChangeRequestID string
	Status          changerequest.Status
	Response        string
}

// BulkUpdateError records a single failed update within a bulk operation.
type BulkUpdateError struct {
	ChangeRequestID string
	Err             error
}

// BulkUpdateResult holds the outcomes of a bulk status update.
// Updated contains the successfully transitioned requests; Errors the
// per-item failures.
type BulkUpdateResult struct {
	Updated []changerequest.ChangeRequest
	Errors  []BulkUpdateError
}

// ChangeRequestService is the service port for the change-request ledger.
type ChangeRequestService interface {
	// Submit creates a change request for a live project, consuming one
	// unit of monthly quota in the same logical transaction.
	// Returns domain.ErrQuotaExceeded when the allowance is spent and
	// domain.ErrValidation for empty descriptions (checked before quota).
	Submit(ctx context.Context, projectID string, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error)

	// UpdateStatus transitions a change request, optionally recording a
	// developer response. Returns domain.ErrInvalidStatusTransition for
	// moves the status graph does not allow; re-completing an already
	// completed request is a no-op (with optional response correction).
	UpdateStatus(ctx context.Context, id string, status changerequest.Status, response string) (*changerequest.ChangeRequest, error)

	// List returns change requests matching the filter, most recent first.
	List(ctx context.Context, f changerequest.Filter) ([]changerequest.ChangeRequest, error)

	// Stats aggregates counts by status, optionally scoped to one project.
	Stats(ctx context.Context, projectID string) (changerequest.Stats, error)

	// BulkUpdate applies status updates concurrently with partial-success
	// semantics: each update succeeds or fails independently.
	BulkUpdate(ctx context.Context, updates []StatusUpdate) (*BulkUpdateResult, error)
}
