package project

import (
	"errors"
	"testing"
	"time"

	"github.com/laurensbos/webstability-backend/internal/domain"
)

func validProject() *Project {
	now := time.Now()
	return &Project{
		ID:            "proj-1",
		ProjectID:     "WSB-1001",
		ClientName:    "Bakkerij Jansen",
		ClientEmail:   "info@bakkerijjansen.nl",
		Package:       PackageStarter,
		ServiceType:   ServiceWebsite,
		Phase:         PhaseOnboarding,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestProject_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*Project)
		wantField string
	}{
		{"valid", func(_ *Project) {}, ""},
		{"missing client name", func(p *Project) { p.ClientName = " " }, "client_name"},
		{"missing client email", func(p *Project) { p.ClientEmail = "" }, "client_email"},
		{"bad package", func(p *Project) { p.Package = "platinum" }, "package"},
		{"bad service type", func(p *Project) { p.ServiceType = "app" }, "service_type"},
		{"bad phase", func(p *Project) { p.Phase = "launch" }, "phase"},
		{"bad payment status", func(p *Project) { p.PaymentStatus = "settled" }, "payment_status"},
		{"negative revisions", func(p *Project) { p.RevisionsUsed = -1 }, "revisions_used"},
		{"negative monthly counter", func(p *Project) { p.ChangesThisMonth = -3 }, "changes_this_month"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validProject()
			tt.modify(p)
			err := p.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *domain.ValidationError", err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Error("validation error does not wrap ErrValidation")
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want entry for %q", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestProject_UnresolvedNegativeFeedback(t *testing.T) {
	t.Parallel()

	entry := func(status FeedbackStatus, ratings ...Rating) FeedbackEntry {
		e := FeedbackEntry{ID: "fb", Type: FeedbackDesign, Status: status}
		for _, r := range ratings {
			e.Items = append(e.Items, FeedbackItem{Rating: r})
		}
		return e
	}

	tests := []struct {
		name    string
		history []FeedbackEntry
		want    bool
	}{
		{"no feedback", nil, false},
		{"pending positive only", []FeedbackEntry{entry(FeedbackPending, RatingPositive, RatingNeutral)}, false},
		{"pending with negative", []FeedbackEntry{entry(FeedbackPending, RatingPositive, RatingNegative)}, true},
		{"resolved negative", []FeedbackEntry{entry(FeedbackResolved, RatingNegative)}, false},
		{
			name: "one resolved one pending negative",
			history: []FeedbackEntry{
				entry(FeedbackResolved, RatingNegative),
				entry(FeedbackPending, RatingNegative),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validProject()
			p.FeedbackHistory = tt.history
			if got := p.UnresolvedNegativeFeedback(); got != tt.want {
				t.Errorf("UnresolvedNegativeFeedback = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_MarkLive(t *testing.T) {
	t.Parallel()

	p := validProject()
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	p.MarkLive(first)
	if p.LiveDate == nil || !p.LiveDate.Equal(first) {
		t.Fatalf("LiveDate = %v, want %v", p.LiveDate, first)
	}

	p.MarkLive(first.Add(24 * time.Hour))
	if !p.LiveDate.Equal(first) {
		t.Errorf("LiveDate = %v, want original %v kept", p.LiveDate, first)
	}
}

func TestProject_IsLive(t *testing.T) {
	t.Parallel()

	p := validProject()
	if p.IsLive() {
		t.Error("IsLive = true for onboarding project")
	}
	p.Phase = PhaseLive
	if !p.IsLive() {
		t.Error("IsLive = false for live project")
	}
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	p := validProject()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"phase match", Filter{Phase: PhaseOnboarding}, true},
		{"phase mismatch", Filter{Phase: PhaseLive}, false},
		{"package match", Filter{Package: PackageStarter}, true},
		{"package mismatch", Filter{Package: PackageBusiness}, false},
		{"service match", Filter{ServiceType: ServiceWebsite}, true},
		{"service mismatch", Filter{ServiceType: ServiceWebshop}, false},
		{"combined AND", Filter{Phase: PhaseOnboarding, Package: PackageWebshop}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.filter.Matches(p); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
