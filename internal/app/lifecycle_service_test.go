package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/laurensbos/webstability-backend/internal/adapters/store/memory"
	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/phase"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// fakeGateway records checkout calls and returns a canned result or error.
type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	checkout ports.Checkout
	err      error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, _ *project.Project, _ int64) (*ports.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	c := g.checkout
	return &c, nil
}

// fakeNotifier records sent notifications and optionally fails every send.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []ports.NotificationKind
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, kind ports.NotificationKind, _ string, _ map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
	return n.err
}

func (n *fakeNotifier) kinds() []ports.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ports.NotificationKind, len(n.sent))
	copy(out, n.sent)
	return out
}

func newService(t *testing.T) (*LifecycleService, *memory.Store, *fakeGateway, *fakeNotifier) {
	t.Helper()

	store := memory.New()
	gateway := &fakeGateway{checkout: ports.Checkout{URL: "https://pay.example/c1", Reference: "tr_123"}}
	notifier := &fakeNotifier{}
	machine := phase.NewMachine(phase.ClientGraph(), checklist.New())
	svc := NewLifecycleService(store, machine, checklist.New(), gateway, notifier, nil)
	return svc, store, gateway, notifier
}

func validIntake() ports.Intake {
	return ports.Intake{
		ClientName:  "Bakkerij Jansen",
		ClientEmail: "info@bakkerijjansen.nl",
		Package:     project.PackageStarter,
		ServiceType: project.ServiceWebsite,
	}
}

func createProject(t *testing.T, svc *LifecycleService) *project.Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("CreateProject = %v", err)
	}
	return p
}

func TestLifecycleService_CreateProject(t *testing.T) {
	t.Parallel()

	svc, store, _, _ := newService(t)
	ctx := context.Background()

	p := createProject(t, svc)
	if p.Phase != project.PhaseOnboarding {
		t.Errorf("Phase = %s, want onboarding", p.Phase)
	}
	if p.PaymentStatus != project.PaymentPending {
		t.Errorf("PaymentStatus = %s", p.PaymentStatus)
	}
	if p.ProjectID == "" || p.ID == "" {
		t.Error("ids not assigned")
	}
	// No domain and no email wishes: statuses derived as not needed.
	if p.DomainInfo.TransferStatus != project.TransferNotNeeded {
		t.Errorf("TransferStatus = %s", p.DomainInfo.TransferStatus)
	}
	if p.EmailInfo.EmailSetupStatus != project.EmailSetupNotNeeded {
		t.Errorf("EmailSetupStatus = %s", p.EmailInfo.EmailSetupStatus)
	}

	rec, err := store.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("stored project missing: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("stored version = %d, want 1", rec.Version)
	}

	_, err = svc.CreateProject(ctx, ports.Intake{ClientEmail: "x@example.com"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("invalid intake = %v, want *domain.ValidationError", err)
	}
}

func TestLifecycleService_CreateProject_DomainTransferNeeded(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	intake := validIntake()
	intake.DomainInfo.HasDomain = true

	p, err := svc.CreateProject(context.Background(), intake)
	if err != nil {
		t.Fatalf("CreateProject = %v", err)
	}
	if p.DomainInfo.TransferStatus != project.TransferNotStarted {
		t.Errorf("TransferStatus = %s, want not_started", p.DomainInfo.TransferStatus)
	}
}

func TestLifecycleService_GetProject_ByIDAndCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	byID, err := svc.GetProject(ctx, p.ID)
	if err != nil || byID.ID != p.ID {
		t.Errorf("GetProject(id) = (%v, %v)", byID, err)
	}
	byCode, err := svc.GetProject(ctx, p.ProjectID)
	if err != nil || byCode.ID != p.ID {
		t.Errorf("GetProject(code) = (%v, %v)", byCode, err)
	}
	if _, err := svc.GetProject(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProject(unknown) = %v, want ErrNotFound", err)
	}
}

func TestLifecycleService_RequestPhaseTransition(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	updated, err := svc.RequestPhaseTransition(ctx, p.ID, project.PhaseDesign, ports.ActorClient)
	if err != nil {
		t.Fatalf("RequestPhaseTransition = %v", err)
	}
	if updated.Phase != project.PhaseDesign {
		t.Errorf("Phase = %s, want design", updated.Phase)
	}
	if kinds := notifier.kinds(); len(kinds) != 1 || kinds[0] != ports.NotifyPhaseChanged {
		t.Errorf("notifications = %v, want [phase_changed]", kinds)
	}
}

func TestLifecycleService_RequestPhaseTransition_GuardBlocks(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	// Skipping straight to live violates adjacency for a client actor.
	_, err := svc.RequestPhaseTransition(ctx, p.ID, project.PhaseLive, ports.ActorClient)
	var terr *domain.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *domain.TransitionError", err)
	}

	// The blocked transition must not leave a partial write or notify.
	fresh, err := svc.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	if fresh.Phase != project.PhaseOnboarding {
		t.Errorf("Phase = %s, want onboarding unchanged", fresh.Phase)
	}
	if len(notifier.kinds()) != 0 {
		t.Errorf("notifications sent for blocked transition: %v", notifier.kinds())
	}
}

func TestLifecycleService_RequestPhaseTransition_NotifierFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newService(t)
	notifier.err = errors.New("smtp down")
	ctx := context.Background()
	p := createProject(t, svc)

	updated, err := svc.RequestPhaseTransition(ctx, p.ID, project.PhaseDesign, ports.ActorClient)
	if err != nil {
		t.Fatalf("RequestPhaseTransition = %v, notification failure leaked", err)
	}
	if updated.Phase != project.PhaseDesign {
		t.Errorf("Phase = %s", updated.Phase)
	}
}

func TestLifecycleService_CreatePaymentLink(t *testing.T) {
	t.Parallel()

	svc, _, gateway, notifier := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	updated, err := svc.CreatePaymentLink(ctx, p.ID, 49900)
	if err != nil {
		t.Fatalf("CreatePaymentLink = %v", err)
	}
	if updated.PaymentURL != "https://pay.example/c1" || updated.PaymentReference != "tr_123" {
		t.Errorf("payment fields = %q %q", updated.PaymentURL, updated.PaymentReference)
	}
	if updated.PaymentStatus != project.PaymentAwaiting {
		t.Errorf("PaymentStatus = %s, want awaiting", updated.PaymentStatus)
	}
	if gateway.calls != 1 {
		t.Errorf("gateway calls = %d", gateway.calls)
	}
	if kinds := notifier.kinds(); len(kinds) != 1 || kinds[0] != ports.NotifyPaymentLinkReady {
		t.Errorf("notifications = %v", kinds)
	}

	if _, err := svc.CreatePaymentLink(ctx, p.ID, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero amount = %v, want ErrValidation", err)
	}
}

func TestLifecycleService_CreatePaymentLink_GatewayFailure(t *testing.T) {
	t.Parallel()

	svc, _, gateway, _ := newService(t)
	gateway.err = errors.New("provider 500")
	ctx := context.Background()
	p := createProject(t, svc)

	_, err := svc.CreatePaymentLink(ctx, p.ID, 49900)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("CreatePaymentLink = %v, want ErrUnavailable", err)
	}

	fresh, _ := svc.GetProject(ctx, p.ID)
	if fresh.PaymentURL != "" || fresh.PaymentStatus != project.PaymentPending {
		t.Errorf("project mutated despite gateway failure: %q %s", fresh.PaymentURL, fresh.PaymentStatus)
	}
}

func TestLifecycleService_RecordPaymentConfirmed_Idempotent(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	first, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "tr_123")
	if err != nil {
		t.Fatalf("RecordPaymentConfirmed = %v", err)
	}
	if first.PaymentStatus != project.PaymentPaid {
		t.Errorf("PaymentStatus = %s, want paid", first.PaymentStatus)
	}
	if !first.Checklist.PaymentReceived.Done {
		t.Error("payment checklist gate not set")
	}
	stamp := first.Checklist.PaymentReceived.CompletedAt

	again, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "tr_456")
	if err != nil {
		t.Fatalf("duplicate RecordPaymentConfirmed = %v", err)
	}
	if again.PaymentReference != "tr_123" {
		t.Errorf("PaymentReference = %q, duplicate confirmation overwrote state", again.PaymentReference)
	}
	if !again.Checklist.PaymentReceived.CompletedAt.Equal(*stamp) {
		t.Error("duplicate confirmation moved the gate timestamp")
	}

	if _, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank reference = %v, want ErrValidation", err)
	}
}

func TestLifecycleService_RecordPaymentConfirmed_RefundReplayKeepsRefund(t *testing.T) {
	t.Parallel()

	svc, store, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	if _, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "tr_abc"); err != nil {
		t.Fatalf("RecordPaymentConfirmed = %v", err)
	}

	// Refund issued out of band.
	rec, err := store.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	rec.Project.PaymentStatus = project.PaymentRefunded
	if err := store.PutProject(ctx, &rec.Project, rec.Version); err != nil {
		t.Fatalf("PutProject = %v", err)
	}

	// The provider replays the original confirmation webhook: the refund
	// must stand.
	after, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "tr_abc")
	if err != nil {
		t.Fatalf("replayed confirmation = %v", err)
	}
	if after.PaymentStatus != project.PaymentRefunded {
		t.Errorf("PaymentStatus = %s, replayed confirmation undid the refund", after.PaymentStatus)
	}

	// A genuinely new payment carries a new reference and applies.
	repaid, err := svc.RecordPaymentConfirmed(ctx, p.ID, 49900, "tr_new")
	if err != nil {
		t.Fatalf("new confirmation = %v", err)
	}
	if repaid.PaymentStatus != project.PaymentPaid || repaid.PaymentReference != "tr_new" {
		t.Errorf("after new payment = %s %q, want paid tr_new", repaid.PaymentStatus, repaid.PaymentReference)
	}
}

func TestLifecycleService_UpdateChecklist(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	yes, no := true, false
	updated, err := svc.UpdateChecklist(ctx, p.ID, ports.ChecklistUpdate{
		PrivacyPolicyProvided:   &yes,
		TermsConditionsProvided: &yes,
	})
	if err != nil {
		t.Fatalf("UpdateChecklist = %v", err)
	}
	if !updated.Checklist.PrivacyPolicyProvided.Done || updated.Checklist.PrivacyPolicyProvided.CompletedAt == nil {
		t.Error("privacy gate not stamped")
	}
	if !updated.Checklist.TermsConditionsProvided.Done {
		t.Error("terms gate not set")
	}
	stamp := updated.Checklist.PrivacyPolicyProvided.CompletedAt

	// Re-sending a gate at its current value keeps the original stamp.
	again, err := svc.UpdateChecklist(ctx, p.ID, ports.ChecklistUpdate{PrivacyPolicyProvided: &yes})
	if err != nil {
		t.Fatalf("repeat UpdateChecklist = %v", err)
	}
	if !again.Checklist.PrivacyPolicyProvided.CompletedAt.Equal(*stamp) {
		t.Error("repeated update moved the gate timestamp")
	}

	// Clearing a gate drops its stamp; gates the update does not name stay.
	cleared, err := svc.UpdateChecklist(ctx, p.ID, ports.ChecklistUpdate{TermsConditionsProvided: &no})
	if err != nil {
		t.Fatalf("clearing UpdateChecklist = %v", err)
	}
	if cleared.Checklist.TermsConditionsProvided.Done || cleared.Checklist.TermsConditionsProvided.CompletedAt != nil {
		t.Error("terms gate not cleared")
	}
	if !cleared.Checklist.PrivacyPolicyProvided.Done {
		t.Error("partial update touched an unnamed gate")
	}

	if _, err := svc.UpdateChecklist(ctx, "ghost", ports.ChecklistUpdate{PrivacyPolicyProvided: &yes}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateChecklist(unknown) = %v, want ErrNotFound", err)
	}
}

func TestLifecycleService_GetOrCreateReferralCode(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	code, err := svc.GetOrCreateReferralCode(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetOrCreateReferralCode = %v", err)
	}
	if code == "" {
		t.Fatal("empty code")
	}

	// Second call returns the stored code without minting a new one.
	again, err := svc.GetOrCreateReferralCode(ctx, p.ID)
	if err != nil {
		t.Fatalf("second GetOrCreateReferralCode = %v", err)
	}
	if again != code {
		t.Errorf("second call = %q, want stable %q", again, code)
	}
	if kinds := notifier.kinds(); len(kinds) != 1 || kinds[0] != ports.NotifyReferralIssued {
		t.Errorf("notifications = %v, want one referral_issued", kinds)
	}
}

func TestLifecycleService_GetOrCreateReferralCode_Concurrent(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	const callers = 8
	codes := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], errs[i] = svc.GetOrCreateReferralCode(ctx, p.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if codes[i] != codes[0] {
			t.Fatalf("callers observed different codes: %q vs %q", codes[i], codes[0])
		}
	}
}

func TestLifecycleService_EvaluateChecklist(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	res, err := svc.EvaluateChecklist(ctx, p.ID)
	if err != nil {
		t.Fatalf("EvaluateChecklist = %v", err)
	}
	if res.Complete {
		t.Error("fresh project reported complete")
	}
	if len(res.Missing) == 0 {
		t.Error("no missing gates reported")
	}
}

func TestLifecycleService_AppendMessage(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	updated, err := svc.AppendMessage(ctx, p.ID, project.SenderClient, "when is the design ready?")
	if err != nil {
		t.Fatalf("AppendMessage = %v", err)
	}
	if len(updated.Messages) != 1 || updated.Messages[0].Body != "when is the design ready?" {
		t.Errorf("Messages = %v", updated.Messages)
	}
	if updated.Messages[0].ID == "" {
		t.Error("message id not assigned")
	}

	if _, err := svc.AppendMessage(ctx, p.ID, "bot", "hi"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid sender = %v, want ErrValidation", err)
	}
	if _, err := svc.AppendMessage(ctx, p.ID, project.SenderClient, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank body = %v, want ErrValidation", err)
	}
}

func TestLifecycleService_FeedbackFlow(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	entry := project.FeedbackEntry{
		Type:  project.FeedbackDesign,
		Items: []project.FeedbackItem{{Rating: project.RatingNegative, Comment: "logo too small"}},
	}
	updated, err := svc.SubmitFeedback(ctx, p.ID, entry)
	if err != nil {
		t.Fatalf("SubmitFeedback = %v", err)
	}
	if len(updated.FeedbackHistory) != 1 {
		t.Fatalf("FeedbackHistory = %v", updated.FeedbackHistory)
	}
	stored := updated.FeedbackHistory[0]
	if stored.Status != project.FeedbackPending || stored.ID == "" {
		t.Errorf("entry = %+v, want pending with id", stored)
	}
	if !updated.UnresolvedNegativeFeedback() {
		t.Error("negative pending entry not reported as unresolved")
	}

	resolved, err := svc.ResolveFeedback(ctx, p.ID, stored.ID)
	if err != nil {
		t.Fatalf("ResolveFeedback = %v", err)
	}
	if resolved.FeedbackHistory[0].Status != project.FeedbackResolved {
		t.Errorf("Status = %s, want resolved", resolved.FeedbackHistory[0].Status)
	}
	if resolved.FeedbackHistory[0].ResolvedAt == nil {
		t.Error("ResolvedAt not stamped")
	}

	if _, err := svc.ResolveFeedback(ctx, p.ID, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ResolveFeedback(unknown) = %v, want ErrNotFound", err)
	}
}

func TestLifecycleService_SubmitFeedback_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	tests := []struct {
		name  string
		entry project.FeedbackEntry
	}{
		{"bad type", project.FeedbackEntry{Type: "rant", Items: []project.FeedbackItem{{Rating: project.RatingNeutral}}}},
		{"no items", project.FeedbackEntry{Type: project.FeedbackDesign}},
		{"bad rating", project.FeedbackEntry{Type: project.FeedbackDesign, Items: []project.FeedbackItem{{Rating: "meh"}}}},
	}
	for _, tt := range tests {
		if _, err := svc.SubmitFeedback(ctx, p.ID, tt.entry); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: SubmitFeedback = %v, want ErrValidation", tt.name, err)
		}
	}
}

func TestLifecycleService_DeleteProject(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()
	p := createProject(t, svc)

	// Delete accepts the client-facing code too.
	if err := svc.DeleteProject(ctx, p.ProjectID); err != nil {
		t.Fatalf("DeleteProject = %v", err)
	}
	if _, err := svc.GetProject(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProject after delete = %v, want ErrNotFound", err)
	}
}

func TestLifecycleService_ListProjects(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		intake := validIntake()
		intake.ClientEmail = fmt.Sprintf("c%d@example.com", i)
		if _, err := svc.CreateProject(ctx, intake); err != nil {
			t.Fatalf("CreateProject = %v", err)
		}
	}

	projects, err := svc.ListProjects(ctx, project.Filter{})
	if err != nil {
		t.Fatalf("ListProjects = %v", err)
	}
	if len(projects) != 3 {
		t.Errorf("len = %d, want 3", len(projects))
	}

	none, err := svc.ListProjects(ctx, project.Filter{Phase: project.PhaseLive})
	if err != nil || len(none) != 0 {
		t.Errorf("filtered = (%d, %v), want empty", len(none), err)
	}
}
