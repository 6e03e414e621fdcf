package dto

import (
	"fmt"
	"strings"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

const (
	msgRequired = "is required"
)

// CreateProjectRequest represents the JSON body of the intake form.
// The nested info blocks reuse the domain value types; they are pure data
// with stable JSON tags.
type CreateProjectRequest struct {
	ClientName   string               `json:"client_name"`
	ClientEmail  string               `json:"client_email"`
	Package      string               `json:"package"`
	ServiceType  string               `json:"service_type"`
	DomainInfo   project.DomainInfo   `json:"domain_info"`
	EmailInfo    project.EmailInfo    `json:"email_info"`
	LegalInfo    project.LegalInfo    `json:"legal_info"`
	BusinessInfo project.BusinessInfo `json:"business_info"`
}

// Validate checks that required fields are present and enums are valid.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateProjectRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.ClientName) == "" {
		fields["client_name"] = msgRequired
	}
	if strings.TrimSpace(r.ClientEmail) == "" {
		fields["client_email"] = msgRequired
	}
	if !project.Package(r.Package).IsValid() {
		fields["package"] = fmt.Sprintf("invalid: %q", r.Package)
	}
	if !project.ServiceType(r.ServiceType).IsValid() {
		fields["service_type"] = fmt.Sprintf("invalid: %q", r.ServiceType)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToIntake converts the validated request to the service intake value.
func (r *CreateProjectRequest) ToIntake() ports.Intake {
	return ports.Intake{
		ClientName:   r.ClientName,
		ClientEmail:  r.ClientEmail,
		Package:      project.Package(r.Package),
		ServiceType:  project.ServiceType(r.ServiceType),
		DomainInfo:   r.DomainInfo,
		EmailInfo:    r.EmailInfo,
		LegalInfo:    r.LegalInfo,
		BusinessInfo: r.BusinessInfo,
	}
}

// PhaseTransitionRequest represents the JSON body for requesting a phase
// transition. Actor defaults to "client" when omitted.
type PhaseTransitionRequest struct {
	Target string `json:"target"`
	Actor  string `json:"actor,omitempty"`
}

// Validate checks that the target phase is present and the actor, when set,
// is a known value.
func (r *PhaseTransitionRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Target) == "" {
		fields["target"] = msgRequired
	}
	if r.Actor != "" && !ports.Actor(r.Actor).IsValid() {
		fields["actor"] = fmt.Sprintf("invalid: %q", r.Actor)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ActorOrDefault returns the requested actor, defaulting to client.
func (r *PhaseTransitionRequest) ActorOrDefault() ports.Actor {
	if r.Actor == "" {
		return ports.ActorClient
	}
	return ports.Actor(r.Actor)
}

// PaymentLinkRequest represents the JSON body for creating a checkout.
type PaymentLinkRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// Validate checks that the amount is positive.
func (r *PaymentLinkRequest) Validate() error {
	if r.AmountCents <= 0 {
		return &domain.ValidationError{
			Fields: map[string]string{"amount_cents": fmt.Sprintf("must be positive, got %d", r.AmountCents)},
		}
	}
	return nil
}

// PaymentConfirmRequest represents the JSON body of a payment confirmation
// (webhook-driven). Confirmations are idempotent by reference.
type PaymentConfirmRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
}

// Validate checks that the provider reference is present and the amount
// is positive.
func (r *PaymentConfirmRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Reference) == "" {
		fields["reference"] = msgRequired
	}
	if r.AmountCents <= 0 {
		fields["amount_cents"] = fmt.Sprintf("must be positive, got %d", r.AmountCents)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateChecklistRequest represents the JSON body for flipping pre-live
// checklist gates from the developer dashboard. Omitted gates are left
// untouched. The payment gate has no field: it is only satisfied by a
// confirmed payment.
type UpdateChecklistRequest struct {
	AuthCodeProvided         *bool `json:"auth_code_provided,omitempty"`
	DomainTransferCompleted  *bool `json:"domain_transfer_completed,omitempty"`
	PrivacyPolicyProvided    *bool `json:"privacy_policy_provided,omitempty"`
	TermsConditionsProvided  *bool `json:"terms_conditions_provided,omitempty"`
	EmailPreferenceConfirmed *bool `json:"email_preference_confirmed,omitempty"`
	EmailSetupCompleted      *bool `json:"email_setup_completed,omitempty"`
	AnalyticsAgreed          *bool `json:"analytics_agreed,omitempty"`
	FinalApprovalGiven       *bool `json:"final_approval_given,omitempty"`
}

// Validate checks that the request names at least one gate.
func (r *UpdateChecklistRequest) Validate() error {
	for _, gate := range []*bool{
		r.AuthCodeProvided, r.DomainTransferCompleted, r.PrivacyPolicyProvided,
		r.TermsConditionsProvided, r.EmailPreferenceConfirmed,
		r.EmailSetupCompleted, r.AnalyticsAgreed, r.FinalApprovalGiven,
	} {
		if gate != nil {
			return nil
		}
	}
	return &domain.ValidationError{
		Fields: map[string]string{"gates": "must name at least one gate"},
	}
}

// ToUpdate converts the validated request to the service update value.
func (r *UpdateChecklistRequest) ToUpdate() ports.ChecklistUpdate {
	return ports.ChecklistUpdate{
		AuthCodeProvided:         r.AuthCodeProvided,
		DomainTransferCompleted:  r.DomainTransferCompleted,
		PrivacyPolicyProvided:    r.PrivacyPolicyProvided,
		TermsConditionsProvided:  r.TermsConditionsProvided,
		EmailPreferenceConfirmed: r.EmailPreferenceConfirmed,
		EmailSetupCompleted:      r.EmailSetupCompleted,
		AnalyticsAgreed:          r.AnalyticsAgreed,
		FinalApprovalGiven:       r.FinalApprovalGiven,
	}
}

// MessageRequest represents the JSON body for appending a chat message.
type MessageRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// Validate checks that the sender is known and the body is non-empty.
func (r *MessageRequest) Validate() error {
	fields := make(map[string]string)

	if !project.Sender(r.Sender).IsValid() {
		fields["sender"] = fmt.Sprintf("invalid: %q", r.Sender)
	}
	if strings.TrimSpace(r.Body) == "" {
		fields["body"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// FeedbackItemRequest is one rated remark within a feedback submission.
type FeedbackItemRequest struct {
	Rating   string `json:"rating"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// FeedbackRequest represents the JSON body for submitting design or review
// feedback.
type FeedbackRequest struct {
	Type  string                `json:"type"`
	Items []FeedbackItemRequest `json:"items"`
}

// Validate checks the feedback type, that at least one item is present, and
// that every item carries a known rating.
func (r *FeedbackRequest) Validate() error {
	fields := make(map[string]string)

	if !project.FeedbackType(r.Type).IsValid() {
		fields["type"] = fmt.Sprintf("invalid: %q", r.Type)
	}
	if len(r.Items) == 0 {
		fields["items"] = "must contain at least one item"
	}
	for i, item := range r.Items {
		if !project.Rating(item.Rating).IsValid() {
			fields[fmt.Sprintf("items[%d].rating", i)] = fmt.Sprintf("invalid: %q", item.Rating)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToEntry converts the validated request to a domain feedback entry.
// ID, date and status are assigned by the service.
func (r *FeedbackRequest) ToEntry() project.FeedbackEntry {
	items := make([]project.FeedbackItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, project.FeedbackItem{
			Rating:   project.Rating(item.Rating),
			Category: item.Category,
			Priority: item.Priority,
			Comment:  item.Comment,
		})
	}
	return project.FeedbackEntry{
		Type:  project.FeedbackType(r.Type),
		Items: items,
	}
}

// CreateChangeRequestRequest represents the JSON body for submitting a
// change request. Category defaults to "other" and priority to "normal"
// when omitted.
type CreateChangeRequestRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Validate checks that the description is present and optional enums have
// valid values.
func (r *CreateChangeRequestRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Description) == "" {
		fields["description"] = msgRequired
	}
	if r.Category != "" && !changerequest.Category(r.Category).IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", r.Category)
	}
	if r.Priority != "" && !changerequest.Priority(r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", r.Priority)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToChangeRequest converts the validated request to a domain change request.
// The service assigns identity, status and timestamps.
func (r *CreateChangeRequestRequest) ToChangeRequest() *changerequest.ChangeRequest {
	cr := &changerequest.ChangeRequest{
		Title:       r.Title,
		Description: r.Description,
		Category:    changerequest.CategoryOther,
		Priority:    changerequest.PriorityNormal,
	}
	if r.Category != "" {
		cr.Category = changerequest.Category(r.Category)
	}
	if r.Priority != "" {
		cr.Priority = changerequest.Priority(r.Priority)
	}
	return cr
}

// UpdateChangeRequestStatusRequest represents the JSON body for a status
// update. Legacy status aliases (done, open, busy, ...) are normalized at
// this boundary.
type UpdateChangeRequestStatusRequest struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
}

// Validate checks that the status, after alias normalization, is a known
// value.
func (r *UpdateChangeRequestStatusRequest) Validate() error {
	if !changerequest.Normalize(r.Status).IsValid() {
		return &domain.ValidationError{
			Fields: map[string]string{"status": fmt.Sprintf("invalid: %q", r.Status)},
		}
	}
	return nil
}

// NormalizedStatus returns the canonical status for the requested value.
func (r *UpdateChangeRequestStatusRequest) NormalizedStatus() changerequest.Status {
	return changerequest.Normalize(r.Status)
}

// BulkStatusUpdateItem is one entry in a bulk status update.
type BulkStatusUpdateItem struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
}

// BulkUpdateChangeRequestsRequest represents the JSON body for a bulk
// status update.
type BulkUpdateChangeRequestsRequest struct {
	Updates []BulkStatusUpdateItem `json:"updates"`
}

// Validate checks that the batch is non-empty and every entry has an id and
// a known status.
func (r *BulkUpdateChangeRequestsRequest) Validate() error {
	fields := make(map[string]string)

	if len(r.Updates) == 0 {
		fields["updates"] = "must contain at least one update"
	}
	for i, u := range r.Updates {
		if strings.TrimSpace(u.ID) == "" {
			fields[fmt.Sprintf("updates[%d].id", i)] = msgRequired
		}
		if !changerequest.Normalize(u.Status).IsValid() {
			fields[fmt.Sprintf("updates[%d].status", i)] = fmt.Sprintf("invalid: %q", u.Status)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToStatusUpdates converts the validated request to service status updates.
func (r *BulkUpdateChangeRequestsRequest) ToStatusUpdates() []ports.StatusUpdate {
	updates := make([]ports.StatusUpdate, 0, len(r.Updates))
	for _, u := range r.Updates {
		updates = append(updates, ports.StatusUpdate{
			ChangeRequestID: u.ID,
			Status:          changerequest.Normalize(u.Status),
			Response:        u.Response,
		})
	}
	return updates
}
