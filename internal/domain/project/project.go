package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/laurensbos/webstability-backend/internal/domain"
)

// Project is the aggregate root for one client engagement, from intake
// through go-live and into the maintenance phase. It is stored as a single
// versioned record; all mutations go through the lifecycle service.
type Project struct {
	ID        string `json:"id"`         // internal id
	ProjectID string `json:"project_id"` // client-facing short code, immutable

	ClientName  string      `json:"client_name"`
	ClientEmail string      `json:"client_email"`
	Package     Package     `json:"package"`
	ServiceType ServiceType `json:"service_type"`

	Phase            Phase         `json:"phase"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	PaymentURL       string        `json:"payment_url,omitempty"`

	RevisionsUsed    int `json:"revisions_used"`
	ChangesThisMonth int `json:"changes_this_month"`

	ReferralCode string `json:"referral_code,omitempty"`

	DomainInfo   DomainInfo       `json:"domain_info"`
	EmailInfo    EmailInfo        `json:"email_info"`
	LegalInfo    LegalInfo        `json:"legal_info"`
	BusinessInfo BusinessInfo     `json:"business_info"`
	Checklist    PreLiveChecklist `json:"pre_live_checklist"`

	Messages        []ChatMessage   `json:"messages,omitempty"`
	FeedbackHistory []FeedbackEntry `json:"feedback_history,omitempty"`

	LiveDate  *time.Time `json:"live_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks business rules for the Project aggregate.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Project) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.ClientName) == "" {
		fields["client_name"] = domain.MsgRequired
	}
	if strings.TrimSpace(p.ClientEmail) == "" {
		fields["client_email"] = domain.MsgRequired
	}
	if !p.Package.IsValid() {
		fields["package"] = fmt.Sprintf("invalid: %q", p.Package)
	}
	if !p.ServiceType.IsValid() {
		fields["service_type"] = fmt.Sprintf("invalid: %q", p.ServiceType)
	}
	if !p.Phase.IsValid() {
		fields["phase"] = fmt.Sprintf("invalid: %q", p.Phase)
	}
	if !p.PaymentStatus.IsValid() {
		fields["payment_status"] = fmt.Sprintf("invalid: %q", p.PaymentStatus)
	}
	if p.RevisionsUsed < 0 {
		fields["revisions_used"] = fmt.Sprintf("must be >= 0, got %d", p.RevisionsUsed)
	}
	if p.ChangesThisMonth < 0 {
		fields["changes_this_month"] = fmt.Sprintf("must be >= 0, got %d", p.ChangesThisMonth)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// IsLive reports whether the project has entered the live phase.
func (p *Project) IsLive() bool {
	return p.Phase == PhaseLive
}

// UnresolvedNegativeFeedback returns true if any feedback entry is still
// pending and contains negative items. Such entries block leaving the
// feedback/revisie phases without a developer override.
func (p *Project) UnresolvedNegativeFeedback() bool {
	for i := range p.FeedbackHistory {
		entry := &p.FeedbackHistory[i]
		if entry.Status == FeedbackPending && entry.HasNegativeItems() {
			return true
		}
	}
	return false
}

// MarkLive stamps the live date if not already set. Idempotent: an existing
// live date is never overwritten.
func (p *Project) MarkLive(now time.Time) {
	if p.LiveDate == nil {
		p.LiveDate = &now
	}
}

// Filter holds optional criteria for listing projects.
// Zero-value fields mean "no filter" for that dimension.
type Filter struct {
	Phase       Phase
	Package     Package
	ServiceType ServiceType
}

// Matches reports whether the project satisfies every set criterion.
func (f Filter) Matches(p *Project) bool {
	if f.Phase != "" && p.Phase != f.Phase {
		return false
	}
	if f.Package != "" && p.Package != f.Package {
		return false
	}
	if f.ServiceType != "" && p.ServiceType != f.ServiceType {
		return false
	}
	return true
}
