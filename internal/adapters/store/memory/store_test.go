package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

func newProject(id, code string) *project.Project {
	now := time.Now()
	return &project.Project{
		ID:            id,
		ProjectID:     code,
		ClientName:    "Client " + id,
		ClientEmail:   id + "@example.com",
		Package:       project.PackageStarter,
		ServiceType:   project.ServiceWebsite,
		Phase:         project.PhaseOnboarding,
		PaymentStatus: project.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func mustCreate(t *testing.T, s *Store, p *project.Project) {
	t.Helper()
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject(%s) = %v", p.ID, err)
	}
}

func TestStore_CreateAndGetProject(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	rec, err := s.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("Version = %d, want 1", rec.Version)
	}
	if rec.Project.ClientName != p.ClientName {
		t.Errorf("ClientName = %q", rec.Project.ClientName)
	}

	if err := s.CreateProject(ctx, p); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate CreateProject = %v, want ErrConflict", err)
	}

	if _, err := s.GetProject(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProject(missing) = %v, want ErrNotFound", err)
	}
}

func TestStore_GetProjectByCode(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	mustCreate(t, s, newProject("p1", "WSB-1001"))

	rec, err := s.GetProjectByCode(ctx, "WSB-1001")
	if err != nil {
		t.Fatalf("GetProjectByCode = %v", err)
	}
	if rec.Project.ID != "p1" {
		t.Errorf("ID = %q, want p1", rec.Project.ID)
	}

	if _, err := s.GetProjectByCode(ctx, "WSB-9999"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProjectByCode(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_PutProject_VersionedWrites(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	p.ClientName = "Renamed"
	if err := s.PutProject(ctx, p, 1); err != nil {
		t.Fatalf("PutProject(v1) = %v", err)
	}

	rec, err := s.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	if rec.Version != 2 {
		t.Errorf("Version = %d, want 2", rec.Version)
	}
	if rec.Project.ClientName != "Renamed" {
		t.Errorf("ClientName = %q", rec.Project.ClientName)
	}

	// Stale version loses.
	if err := s.PutProject(ctx, p, 1); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("PutProject(stale) = %v, want ErrConflict", err)
	}
	if err := s.PutProject(ctx, newProject("ghost", "WSB-0"), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("PutProject(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_PutProject_ReindexesCode(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	p.ProjectID = "WSB-2002"
	if err := s.PutProject(ctx, p, 1); err != nil {
		t.Fatalf("PutProject = %v", err)
	}

	if _, err := s.GetProjectByCode(ctx, "WSB-1001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old code lookup = %v, want ErrNotFound", err)
	}
	if _, err := s.GetProjectByCode(ctx, "WSB-2002"); err != nil {
		t.Errorf("new code lookup = %v, want nil", err)
	}
}

func TestStore_CloneIsolation(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	p.Messages = []project.ChatMessage{{ID: "m1", Sender: project.SenderClient, Body: "hello"}}
	mustCreate(t, s, p)

	// Mutating the caller's copy must not leak into the store.
	p.ClientName = "Mutated"
	p.Messages[0].Body = "tampered"

	rec, err := s.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	if rec.Project.ClientName != "Client p1" {
		t.Errorf("stored ClientName = %q, caller mutation leaked", rec.Project.ClientName)
	}
	if rec.Project.Messages[0].Body != "hello" {
		t.Errorf("stored message = %q, caller mutation leaked", rec.Project.Messages[0].Body)
	}

	// Mutating a returned record must not leak either.
	rec.Project.ClientName = "Tampered"
	again, _ := s.GetProject(ctx, "p1")
	if again.Project.ClientName != "Client p1" {
		t.Errorf("stored ClientName = %q, returned record aliased store state", again.Project.ClientName)
	}
}

func TestStore_ListProjects(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	oldest := newProject("p1", "WSB-1")
	oldest.CreatedAt = time.Now().Add(-2 * time.Hour)
	newest := newProject("p2", "WSB-2")
	newest.Phase = project.PhaseLive
	mustCreate(t, s, oldest)
	mustCreate(t, s, newest)

	all, err := s.ListProjects(ctx, project.Filter{})
	if err != nil {
		t.Fatalf("ListProjects = %v", err)
	}
	if len(all) != 2 || all[0].ID != "p2" {
		t.Errorf("ListProjects order = %v, want newest first", ids(all))
	}

	live, err := s.ListProjects(ctx, project.Filter{Phase: project.PhaseLive})
	if err != nil {
		t.Fatalf("ListProjects(filter) = %v", err)
	}
	if len(live) != 1 || live[0].ID != "p2" {
		t.Errorf("filtered = %v, want [p2]", ids(live))
	}
}

func ids(projects []project.Project) []string {
	out := make([]string, len(projects))
	for i := range projects {
		out[i] = projects[i].ID
	}
	return out
}

func TestStore_DeleteProject_Cascades(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	cr := &changerequest.ChangeRequest{
		ID:          "cr1",
		ProjectID:   "p1",
		Description: "tweak",
		Category:    changerequest.CategoryText,
		Priority:    changerequest.PriorityNormal,
		Status:      changerequest.StatusPending,
	}
	if err := s.CreateChangeRequest(ctx, cr, p, 1); err != nil {
		t.Fatalf("CreateChangeRequest = %v", err)
	}

	if err := s.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject = %v", err)
	}
	if _, err := s.GetProject(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProject after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.GetProjectByCode(ctx, "WSB-1001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("code lookup after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.GetChangeRequest(ctx, "cr1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("change request after delete = %v, want ErrNotFound", err)
	}

	if err := s.DeleteProject(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteProject = %v, want ErrNotFound", err)
	}
}

func TestStore_ReferralCodeTaken(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	p.ReferralCode = "WS-ABC234"
	mustCreate(t, s, p)

	taken, err := s.ReferralCodeTaken(ctx, "WS-ABC234")
	if err != nil || !taken {
		t.Errorf("ReferralCodeTaken(existing) = (%v, %v), want (true, nil)", taken, err)
	}
	taken, err = s.ReferralCodeTaken(ctx, "WS-ZZZ999")
	if err != nil || taken {
		t.Errorf("ReferralCodeTaken(free) = (%v, %v), want (false, nil)", taken, err)
	}
}

func TestStore_CreateChangeRequest_Atomic(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	p.ChangesThisMonth = 1
	cr := &changerequest.ChangeRequest{ID: "cr1", ProjectID: "p1", Status: changerequest.StatusPending}

	// Stale project version must fail the whole write: no request stored.
	if err := s.CreateChangeRequest(ctx, cr, p, 99); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("CreateChangeRequest(stale) = %v, want ErrConflict", err)
	}
	if _, err := s.GetChangeRequest(ctx, "cr1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("request stored despite conflict: %v", err)
	}
	rec, _ := s.GetProject(ctx, "p1")
	if rec.Project.ChangesThisMonth != 0 {
		t.Errorf("ChangesThisMonth = %d, want 0 after failed write", rec.Project.ChangesThisMonth)
	}

	if err := s.CreateChangeRequest(ctx, cr, p, 1); err != nil {
		t.Fatalf("CreateChangeRequest = %v", err)
	}
	rec, _ = s.GetProject(ctx, "p1")
	if rec.Project.ChangesThisMonth != 1 || rec.Version != 2 {
		t.Errorf("project = %d changes v%d, want 1 change v2", rec.Project.ChangesThisMonth, rec.Version)
	}

	if err := s.CreateChangeRequest(ctx, cr, p, 2); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate request id = %v, want ErrConflict", err)
	}
}

func TestStore_ChangeRequestLifecycle(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	p := newProject("p1", "WSB-1001")
	mustCreate(t, s, p)

	base := time.Now()
	for i, id := range []string{"cr1", "cr2", "cr3"} {
		cr := &changerequest.ChangeRequest{
			ID:        id,
			ProjectID: "p1",
			Status:    changerequest.StatusPending,
			Priority:  changerequest.PriorityNormal,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		rec, _ := s.GetProject(ctx, "p1")
		if err := s.CreateChangeRequest(ctx, cr, &rec.Project, rec.Version); err != nil {
			t.Fatalf("CreateChangeRequest(%s) = %v", id, err)
		}
	}

	rec, err := s.GetChangeRequest(ctx, "cr2")
	if err != nil {
		t.Fatalf("GetChangeRequest = %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("Version = %d, want 1", rec.Version)
	}
	rec.ChangeRequest.Status = changerequest.StatusCompleted
	if err := s.PutChangeRequest(ctx, &rec.ChangeRequest, rec.Version); err != nil {
		t.Fatalf("PutChangeRequest = %v", err)
	}

	// Stale version loses, and the stored record keeps the winner's state.
	rec.ChangeRequest.Status = changerequest.StatusPending
	if err := s.PutChangeRequest(ctx, &rec.ChangeRequest, 1); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("PutChangeRequest(stale) = %v, want ErrConflict", err)
	}
	fresh, err := s.GetChangeRequest(ctx, "cr2")
	if err != nil {
		t.Fatalf("GetChangeRequest = %v", err)
	}
	if fresh.Version != 2 || fresh.ChangeRequest.Status != changerequest.StatusCompleted {
		t.Errorf("record = v%d %s, stale write landed", fresh.Version, fresh.ChangeRequest.Status)
	}

	list, err := s.ListChangeRequests(ctx, changerequest.Filter{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("ListChangeRequests = %v", err)
	}
	if len(list) != 3 || list[0].ID != "cr3" {
		t.Errorf("list = %v, want 3 items newest first", list)
	}

	completed, _ := s.ListChangeRequests(ctx, changerequest.Filter{Status: changerequest.StatusCompleted})
	if len(completed) != 1 || completed[0].ID != "cr2" {
		t.Errorf("completed filter = %v, want [cr2]", completed)
	}

	ghost := &changerequest.ChangeRequest{ID: "nope"}
	if err := s.PutChangeRequest(ctx, ghost, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("PutChangeRequest(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_PutProject_ReferralCodeUnique(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	first := newProject("p1", "WSB-1001")
	second := newProject("p2", "WSB-2002")
	mustCreate(t, s, first)
	mustCreate(t, s, second)

	first.ReferralCode = "WS-DUP234"
	if err := s.PutProject(ctx, first, 1); err != nil {
		t.Fatalf("PutProject(p1) = %v", err)
	}

	second.ReferralCode = "WS-DUP234"
	if err := s.PutProject(ctx, second, 1); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("PutProject(duplicate code) = %v, want ErrConflict", err)
	}
	rec, err := s.GetProject(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProject = %v", err)
	}
	if rec.Version != 1 || rec.Project.ReferralCode != "" {
		t.Errorf("loser record = v%d %q, want untouched", rec.Version, rec.Project.ReferralCode)
	}

	// Re-writing the holder with its own code is not a collision.
	first.ClientName = "Renamed"
	if err := s.PutProject(ctx, first, 2); err != nil {
		t.Errorf("PutProject(own code) = %v", err)
	}
}
