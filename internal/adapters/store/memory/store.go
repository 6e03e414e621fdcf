// Package memory provides an in-process implementation of the store port,
// used for local development and tests. Records are deep-copied on the way
// in and out so callers can never alias stored state, and a single mutex
// makes versioned writes atomic per store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// Compile-time check that Store implements ports.Store.
var _ ports.Store = (*Store)(nil)

type projectEntry struct {
	project project.Project
	version int64
}

type requestEntry struct {
	request changerequest.ChangeRequest
	version int64
}

// Store is a thread-safe in-memory store.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*projectEntry
	byCode   map[string]string // client-facing code -> internal id
	requests map[string]*requestEntry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		projects: make(map[string]*projectEntry),
		byCode:   make(map[string]string),
		requests: make(map[string]*requestEntry),
	}
}

// CreateProject stores a new project at version 1.
func (s *Store) CreateProject(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; ok {
		return fmt.Errorf("%w: project %s already exists", domain.ErrConflict, p.ID)
	}

	s.projects[p.ID] = &projectEntry{project: cloneProject(p), version: 1}
	if p.ProjectID != "" {
		s.byCode[p.ProjectID] = p.ID
	}
	return nil
}

// GetProject returns the project with the given internal id.
func (s *Store) GetProject(_ context.Context, id string) (*ports.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordLocked(id)
}

// GetProjectByCode returns the project with the given client-facing code.
func (s *Store) GetProjectByCode(_ context.Context, code string) (*ports.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: project code %s", domain.ErrNotFound, code)
	}
	return s.recordLocked(id)
}

// PutProject overwrites the project when the stored version matches.
func (s *Store) PutProject(_ context.Context, p *project.Project, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putProjectLocked(p, expectedVersion)
}

// ListProjects returns projects matching the filter, most recent first.
func (s *Store) ListProjects(_ context.Context, f project.Filter) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]project.Project, 0, len(s.projects))
	for _, entry := range s.projects {
		if f.Matches(&entry.project) {
			out = append(out, cloneProject(&entry.project))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteProject hard-deletes the project and its change requests.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}

	delete(s.projects, id)
	delete(s.byCode, entry.project.ProjectID)
	for crID, re := range s.requests {
		if re.request.ProjectID == id {
			delete(s.requests, crID)
		}
	}
	return nil
}

// ReferralCodeTaken reports whether any project already holds the code.
func (s *Store) ReferralCodeTaken(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.projects {
		if entry.project.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

// CreateChangeRequest stores the request at version 1 and the updated
// project in one atomic write guarded by the project's version.
func (s *Store) CreateChangeRequest(_ context.Context, cr *changerequest.ChangeRequest, p *project.Project, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[cr.ID]; ok {
		return fmt.Errorf("%w: change request %s already exists", domain.ErrConflict, cr.ID)
	}
	if err := s.putProjectLocked(p, expectedVersion); err != nil {
		return err
	}
	s.requests[cr.ID] = &requestEntry{request: *cr, version: 1}
	return nil
}

// GetChangeRequest returns the change request with the given id.
func (s *Store) GetChangeRequest(_ context.Context, id string) (*ports.ChangeRequestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: change request %s", domain.ErrNotFound, id)
	}
	return &ports.ChangeRequestRecord{ChangeRequest: entry.request, Version: entry.version}, nil
}

// PutChangeRequest overwrites the change request when the stored version
// matches.
func (s *Store) PutChangeRequest(_ context.Context, cr *changerequest.ChangeRequest, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.requests[cr.ID]
	if !ok {
		return fmt.Errorf("%w: change request %s", domain.ErrNotFound, cr.ID)
	}
	if entry.version != expectedVersion {
		return fmt.Errorf("%w: change request %s version %d, expected %d",
			domain.ErrConflict, cr.ID, entry.version, expectedVersion)
	}
	entry.request = *cr
	entry.version++
	return nil
}

// ListChangeRequests returns change requests matching the filter, most
// recent first by creation time.
func (s *Store) ListChangeRequests(_ context.Context, f changerequest.Filter) ([]changerequest.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]changerequest.ChangeRequest, 0)
	for _, entry := range s.requests {
		if f.Matches(&entry.request) {
			out = append(out, entry.request)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Name identifies the store in readiness results.
func (s *Store) Name() string {
	return "memory-store"
}

// HealthCheck always reports healthy; the store lives in-process.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) recordLocked(id string) (*ports.ProjectRecord, error) {
	entry, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	return &ports.ProjectRecord{Project: cloneProject(&entry.project), Version: entry.version}, nil
}

func (s *Store) putProjectLocked(p *project.Project, expectedVersion int64) error {
	entry, ok := s.projects[p.ID]
	if !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, p.ID)
	}
	if entry.version != expectedVersion {
		return fmt.Errorf("%w: project %s version %d, expected %d",
			domain.ErrConflict, p.ID, entry.version, expectedVersion)
	}
	if p.ReferralCode != "" && p.ReferralCode != entry.project.ReferralCode {
		for otherID, other := range s.projects {
			if otherID != p.ID && other.project.ReferralCode == p.ReferralCode {
				return fmt.Errorf("%w: referral code %s already taken", domain.ErrConflict, p.ReferralCode)
			}
		}
	}

	delete(s.byCode, entry.project.ProjectID)
	entry.project = cloneProject(p)
	entry.version++
	if p.ProjectID != "" {
		s.byCode[p.ProjectID] = p.ID
	}
	return nil
}

// cloneProject deep-copies a project via JSON round-trip. The aggregate
// holds slices and pointers; a field copy would alias them.
func cloneProject(p *project.Project) project.Project {
	data, err := json.Marshal(p)
	if err != nil {
		// Project contains only JSON-serializable fields.
		panic(fmt.Sprintf("memory store: marshal project: %v", err))
	}
	var out project.Project
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memory store: unmarshal project: %v", err))
	}
	return out
}
