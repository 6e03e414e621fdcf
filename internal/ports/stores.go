package ports

import (
	"context"

	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// ProjectRecord is a stored project together with its record version.
// Versions implement optimistic concurrency: every successful write bumps
// the version, and writes carrying a stale expected version fail with
// domain.ErrConflict.
type ProjectRecord struct {
	Project project.Project
	Version int64
}

// ChangeRequestRecord is a stored change request together with its record
// version, following the same optimistic-concurrency contract as
// ProjectRecord.
type ChangeRequestRecord struct {
	ChangeRequest changerequest.ChangeRequest
	Version       int64
}

// Store is the persistence port for project aggregates and their change
// requests. Implementations must guarantee that versioned writes are atomic
// per project and that reads observe consistent snapshots (never a record
// mid-write).
type Store interface {
	// CreateProject stores a new project at version 1.
	// Returns domain.ErrConflict if the id is already taken.
	CreateProject(ctx context.Context, p *project.Project) error

	// GetProject returns the project with the given internal id.
	// Returns domain.ErrNotFound if it does not exist.
	GetProject(ctx context.Context, id string) (*ProjectRecord, error)

	// GetProjectByCode returns the project with the given client-facing
	// short code. Returns domain.ErrNotFound if it does not exist.
	GetProjectByCode(ctx context.Context, code string) (*ProjectRecord, error)

	// PutProject overwrites the project if its stored version still equals
	// expectedVersion, bumping the version by one.
	// Returns domain.ErrConflict on version mismatch, when the write would
	// claim a referral code another project already holds, and
	// domain.ErrNotFound if the project was deleted.
	PutProject(ctx context.Context, p *project.Project, expectedVersion int64) error

	// ListProjects returns projects matching the filter, most recent first.
	ListProjects(ctx context.Context, f project.Filter) ([]project.Project, error)

	// DeleteProject hard-deletes the project and all of its change
	// requests. Returns domain.ErrNotFound if the project does not exist.
	DeleteProject(ctx context.Context, id string) error

	// ReferralCodeTaken reports whether any project already holds the code.
	ReferralCodeTaken(ctx context.Context, code string) (bool, error)

	// CreateChangeRequest stores a new change request at version 1 and the
	// updated owning project in one atomic write, guarded by the project's
	// version. This is the single logical transaction that pairs quota
	// consumption with change-request creation.
	// Returns domain.ErrConflict on version mismatch.
	CreateChangeRequest(ctx context.Context, cr *changerequest.ChangeRequest, p *project.Project, expectedVersion int64) error

	// GetChangeRequest returns the change request with the given id.
	// Returns domain.ErrNotFound if it does not exist.
	GetChangeRequest(ctx context.Context, id string) (*ChangeRequestRecord, error)

	// PutChangeRequest overwrites the change request if its stored version
	// still equals expectedVersion, bumping the version by one.
	// Returns domain.ErrConflict on version mismatch and domain.ErrNotFound
	// if the request does not exist.
	PutChangeRequest(ctx context.Context, cr *changerequest.ChangeRequest, expectedVersion int64) error

	// ListChangeRequests returns change requests matching the filter,
	// most recent first by creation time.
	ListChangeRequests(ctx context.Context, f changerequest.Filter) ([]changerequest.ChangeRequest, error)
}
