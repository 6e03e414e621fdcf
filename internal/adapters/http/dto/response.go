package dto

import (
	"time"

	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`

	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Package     string `json:"package"`
	ServiceType string `json:"service_type"`

	Phase            string `json:"phase"`
	PaymentStatus    string `json:"payment_status"`
	PaymentReference string `json:"payment_reference,omitempty"`
	PaymentURL       string `json:"payment_url,omitempty"`

	RevisionsUsed    int `json:"revisions_used"`
	ChangesThisMonth int `json:"changes_this_month"`

	ReferralCode string `json:"referral_code,omitempty"`

	DomainInfo   project.DomainInfo       `json:"domain_info"`
	EmailInfo    project.EmailInfo        `json:"email_info"`
	LegalInfo    project.LegalInfo        `json:"legal_info"`
	BusinessInfo project.BusinessInfo     `json:"business_info"`
	Checklist    project.PreLiveChecklist `json:"pre_live_checklist"`

	Messages        []project.ChatMessage   `json:"messages,omitempty"`
	FeedbackHistory []project.FeedbackEntry `json:"feedback_history,omitempty"`

	LiveDate  *time.Time `json:"live_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToProjectResponse converts a domain project to its API representation.
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:               p.ID,
		ProjectID:        p.ProjectID,
		ClientName:       p.ClientName,
		ClientEmail:      p.ClientEmail,
		Package:          string(p.Package),
		ServiceType:      string(p.ServiceType),
		Phase:            string(p.Phase),
		PaymentStatus:    string(p.PaymentStatus),
		PaymentReference: p.PaymentReference,
		PaymentURL:       p.PaymentURL,
		RevisionsUsed:    p.RevisionsUsed,
		ChangesThisMonth: p.ChangesThisMonth,
		ReferralCode:     p.ReferralCode,
		DomainInfo:       p.DomainInfo,
		EmailInfo:        p.EmailInfo,
		LegalInfo:        p.LegalInfo,
		BusinessInfo:     p.BusinessInfo,
		Checklist:        p.Checklist,
		Messages:         p.Messages,
		FeedbackHistory:  p.FeedbackHistory,
		LiveDate:         p.LiveDate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProjectListResponse wraps a list of projects with a total count.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

// ToProjectListResponse converts a slice of domain projects to the list
// response.
func ToProjectListResponse(projects []project.Project) ProjectListResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, ToProjectResponse(&projects[i]))
	}
	return ProjectListResponse{Projects: out, Total: len(out)}
}

// ChangeRequestResponse represents a change request in API responses.
type ChangeRequestResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Response    string     `json:"response,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ToChangeRequestResponse converts a domain change request to its API
// representation.
func ToChangeRequestResponse(cr *changerequest.ChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:          cr.ID,
		ProjectID:   cr.ProjectID,
		Title:       cr.Title,
		Description: cr.Description,
		Category:    string(cr.Category),
		Priority:    string(cr.Priority),
		Status:      string(cr.Status),
		Response:    cr.Response,
		CreatedAt:   cr.CreatedAt,
		UpdatedAt:   cr.UpdatedAt,
		CompletedAt: cr.CompletedAt,
	}
}

// ChangeRequestListResponse wraps a list of change requests with a total
// count.
type ChangeRequestListResponse struct {
	ChangeRequests []ChangeRequestResponse `json:"change_requests"`
	Total          int                     `json:"total"`
}

// ToChangeRequestListResponse converts a slice of domain change requests to
// the list response.
func ToChangeRequestListResponse(requests []changerequest.ChangeRequest) ChangeRequestListResponse {
	out := make([]ChangeRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToChangeRequestResponse(&requests[i]))
	}
	return ChangeRequestListResponse{ChangeRequests: out, Total: len(out)}
}

// ChecklistResponse reports pre-live checklist completeness.
type ChecklistResponse struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// ToChecklistResponse converts a checklist evaluation to its API
// representation. Missing is always a JSON array, never null.
func ToChecklistResponse(res checklist.Result) ChecklistResponse {
	missing := res.Missing
	if missing == nil {
		missing = []string{}
	}
	return ChecklistResponse{Complete: res.Complete, Missing: missing}
}

// ReferralCodeResponse carries a project's referral code.
type ReferralCodeResponse struct {
	ReferralCode string `json:"referral_code"`
}

// BulkUpdateErrorDetail records one failed entry in a bulk update.
type BulkUpdateErrorDetail struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkUpdateResponse reports the partial-success outcome of a bulk status
// update.
type BulkUpdateResponse struct {
	Updated []ChangeRequestResponse `json:"updated"`
	Errors  []BulkUpdateErrorDetail `json:"errors"`
}

// ToBulkUpdateResponse converts a service bulk-update result to its API
// representation. Both slices are always JSON arrays, never null.
func ToBulkUpdateResponse(result *ports.BulkUpdateResult) BulkUpdateResponse {
	resp := BulkUpdateResponse{
		Updated: make([]ChangeRequestResponse, 0, len(result.Updated)),
		Errors:  make([]BulkUpdateErrorDetail, 0, len(result.Errors)),
	}
	for i := range result.Updated {
		resp.Updated = append(resp.Updated, ToChangeRequestResponse(&result.Updated[i]))
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, BulkUpdateErrorDetail{
			ID:    e.ChangeRequestID,
			Error: e.Err.Error(),
		})
	}
	return resp
}
