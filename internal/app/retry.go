package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// casAttempts bounds the optimistic-concurrency retry loop. When a versioned
// write keeps losing races after this many attempts, the conflict is
// surfaced as an infrastructure failure.
const casAttempts = 3

// updateProject runs a read-modify-write cycle on the project under
// optimistic concurrency: load the record, apply mutate, write back guarded
// by the loaded version, and retry from a fresh read on conflict. Business
// failures from mutate abort the loop unretried. Exhausted retries map to
// domain.ErrUnavailable per the error contract.
func updateProject(ctx context.Context, store ports.Store, id string, mutate func(*project.Project) error) (*project.Project, error) {
	var lastErr error

	for attempt := 0; attempt < casAttempts; attempt++ {
		rec, err := getProjectRecord(ctx, store, id)
		if err != nil {
			return nil, err
		}

		p := rec.Project
		if err := mutate(&p); err != nil {
			return nil, err
		}

		err = store.PutProject(ctx, &p, rec.Version)
		if err == nil {
			return &p, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: project %s write kept conflicting: %v", domain.ErrUnavailable, id, lastErr)
}

// getProjectRecord resolves a project by internal id first, falling back to
// the client-facing short code.
func getProjectRecord(ctx context.Context, store ports.Store, id string) (*ports.ProjectRecord, error) {
	rec, err := store.GetProject(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return store.GetProjectByCode(ctx, id)
}
