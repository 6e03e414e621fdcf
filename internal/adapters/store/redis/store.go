// Package redis implements the store port on Redis. Projects and change
// requests are stored as JSON envelopes carrying a version counter;
// versioned writes run inside WATCH/MULTI transactions so a concurrent
// writer invalidates the transaction and the caller sees
// domain.ErrConflict, which the application layer retries from a fresh
// read.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/changerequest"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// Key layout.
const (
	projectKeyPrefix  = "wsb:project:"       // wsb:project:{id} -> JSON envelope
	codeKeyPrefix     = "wsb:project:code:"  // wsb:project:code:{code} -> id
	referralKeyPrefix = "wsb:referral:"      // wsb:referral:{code} -> id
	projectSetKey     = "wsb:projects"       // set of project ids
	requestKeyPrefix  = "wsb:cr:"            // wsb:cr:{id} -> JSON envelope
	requestSetKey     = "wsb:crs"            // set of change request ids
	projectCRPrefix   = "wsb:project:crs:"   // wsb:project:crs:{id} -> set of cr ids
)

// Compile-time check that Store implements ports.Store.
var _ ports.Store = (*Store)(nil)

// envelope wraps a project with its record version for storage.
type envelope struct {
	Version int64           `json:"version"`
	Project project.Project `json:"project"`
}

// requestEnvelope wraps a change request with its record version.
type requestEnvelope struct {
	Version int64                       `json:"version"`
	Request changerequest.ChangeRequest `json:"request"`
}

// Store is a Redis-backed implementation of the store port.
type Store struct {
	client *redis.Client
}

// New creates a Store over the given client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// CreateProject stores a new project at version 1.
func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	data, err := marshalEnvelope(1, p)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, projectKey(p.ID), data, 0).Result()
	if err != nil {
		return infra("create project", err)
	}
	if !ok {
		return fmt.Errorf("%w: project %s already exists", domain.ErrConflict, p.ID)
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, projectSetKey, p.ID)
	if p.ProjectID != "" {
		pipe.Set(ctx, codeKey(p.ProjectID), p.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return infra("index project", err)
	}
	return nil
}

// GetProject returns the project with the given internal id.
func (s *Store) GetProject(ctx context.Context, id string) (*ports.ProjectRecord, error) {
	data, err := s.client.Get(ctx, projectKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, infra("get project", err)
	}
	return unmarshalRecord([]byte(data))
}

// GetProjectByCode returns the project with the given client-facing code.
func (s *Store) GetProjectByCode(ctx context.Context, code string) (*ports.ProjectRecord, error) {
	id, err := s.client.Get(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: project code %s", domain.ErrNotFound, code)
	}
	if err != nil {
		return nil, infra("resolve project code", err)
	}
	return s.GetProject(ctx, id)
}

// PutProject overwrites the project when the stored version matches,
// inside a WATCH transaction on the project key.
func (s *Store) PutProject(ctx context.Context, p *project.Project, expectedVersion int64) error {
	return s.casWrite(ctx, p, expectedVersion, nil)
}

// ListProjects returns projects matching the filter, most recent first.
func (s *Store) ListProjects(ctx context.Context, f project.Filter) ([]project.Project, error) {
	ids, err := s.client.SMembers(ctx, projectSetKey).Result()
	if err != nil {
		return nil, infra("list projects", err)
	}

	out := make([]project.Project, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetProject(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue // deleted between SMEMBERS and GET
		}
		if err != nil {
			return nil, err
		}
		if f.Matches(&rec.Project) {
			out = append(out, rec.Project)
		}
	}
	sortProjectsByCreated(out)
	return out, nil
}

// DeleteProject hard-deletes the project, its indexes and change requests.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	rec, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	crIDs, err := s.client.SMembers(ctx, projectCRKey(id)).Result()
	if err != nil {
		return infra("list project change requests", err)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, projectKey(id))
	pipe.SRem(ctx, projectSetKey, id)
	if rec.Project.ProjectID != "" {
		pipe.Del(ctx, codeKey(rec.Project.ProjectID))
	}
	if rec.Project.ReferralCode != "" {
		pipe.Del(ctx, referralKey(rec.Project.ReferralCode))
	}
	for _, crID := range crIDs {
		pipe.Del(ctx, requestKey(crID))
		pipe.SRem(ctx, requestSetKey, crID)
	}
	pipe.Del(ctx, projectCRKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return infra("delete project", err)
	}
	return nil
}

// ReferralCodeTaken reports whether any project already holds the code.
func (s *Store) ReferralCodeTaken(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, referralKey(code)).Result()
	if err != nil {
		return false, infra("check referral code", err)
	}
	return n > 0, nil
}

// CreateChangeRequest stores the request at version 1 and the updated
// project in one transaction guarded by the project's version.
func (s *Store) CreateChangeRequest(ctx context.Context, cr *changerequest.ChangeRequest, p *project.Project, expectedVersion int64) error {
	crData, err := marshalRequestEnvelope(1, cr)
	if err != nil {
		return err
	}

	extra := func(pipe redis.Pipeliner) {
		pipe.Set(ctx, requestKey(cr.ID), crData, 0)
		pipe.SAdd(ctx, requestSetKey, cr.ID)
		pipe.SAdd(ctx, projectCRKey(p.ID), cr.ID)
	}
	return s.casWrite(ctx, p, expectedVersion, extra)
}

// GetChangeRequest returns the change request with the given id.
func (s *Store) GetChangeRequest(ctx context.Context, id string) (*ports.ChangeRequestRecord, error) {
	data, err := s.client.Get(ctx, requestKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: change request %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, infra("get change request", err)
	}
	return unmarshalRequestRecord([]byte(data))
}

// PutChangeRequest overwrites the change request when the stored version
// matches, inside a WATCH transaction on the request key.
func (s *Store) PutChangeRequest(ctx context.Context, cr *changerequest.ChangeRequest, expectedVersion int64) error {
	key := requestKey(cr.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: change request %s", domain.ErrNotFound, cr.ID)
		}
		if err != nil {
			return infra("get change request", err)
		}

		current, err := unmarshalRequestRecord([]byte(data))
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return fmt.Errorf("%w: change request %s version %d, expected %d",
				domain.ErrConflict, cr.ID, current.Version, expectedVersion)
		}

		next, err := marshalRequestEnvelope(expectedVersion+1, cr)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: change request %s modified concurrently", domain.ErrConflict, cr.ID)
	}
	return err
}

// ListChangeRequests returns change requests matching the filter, most
// recent first by creation time.
func (s *Store) ListChangeRequests(ctx context.Context, f changerequest.Filter) ([]changerequest.ChangeRequest, error) {
	var ids []string
	var err error
	if f.ProjectID != "" {
		ids, err = s.client.SMembers(ctx, projectCRKey(f.ProjectID)).Result()
	} else {
		ids, err = s.client.SMembers(ctx, requestSetKey).Result()
	}
	if err != nil {
		return nil, infra("list change requests", err)
	}

	out := make([]changerequest.ChangeRequest, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetChangeRequest(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if f.Matches(&rec.ChangeRequest) {
			out = append(out, rec.ChangeRequest)
		}
	}
	sortRequestsByCreated(out)
	return out, nil
}

// Name identifies the store in readiness results.
func (s *Store) Name() string {
	return "redis-store"
}

// HealthCheck pings the Redis server.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis-store: %w", err)
	}
	return nil
}

// casWrite updates the project envelope under WATCH. The stored version
// must equal expectedVersion; the new envelope carries expectedVersion+1.
// extra, when non-nil, adds writes to the same MULTI block. A concurrent
// modification of the project key aborts the transaction and surfaces as
// domain.ErrConflict.
//
// A new referral code is claimed with SETNX before the transaction queues,
// so two projects minting the same code cannot both store it; the
// reservation is released when the surrounding write fails.
func (s *Store) casWrite(ctx context.Context, p *project.Project, expectedVersion int64, extra func(redis.Pipeliner)) error {
	key := projectKey(p.ID)
	claimedReferral := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: project %s", domain.ErrNotFound, p.ID)
		}
		if err != nil {
			return infra("get project", err)
		}

		current, err := unmarshalRecord([]byte(data))
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return fmt.Errorf("%w: project %s version %d, expected %d",
				domain.ErrConflict, p.ID, current.Version, expectedVersion)
		}

		if p.ReferralCode != "" && current.Project.ReferralCode != p.ReferralCode {
			ok, err := tx.SetNX(ctx, referralKey(p.ReferralCode), p.ID, 0).Result()
			if err != nil {
				return infra("claim referral code", err)
			}
			if !ok {
				owner, err := tx.Get(ctx, referralKey(p.ReferralCode)).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return infra("claim referral code", err)
				}
				if owner != p.ID {
					return fmt.Errorf("%w: referral code %s already taken", domain.ErrConflict, p.ReferralCode)
				}
			}
			claimedReferral = claimedReferral || ok
		}

		next, err := marshalEnvelope(expectedVersion+1, p)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			if current.Project.ProjectID != p.ProjectID {
				if current.Project.ProjectID != "" {
					pipe.Del(ctx, codeKey(current.Project.ProjectID))
				}
				if p.ProjectID != "" {
					pipe.Set(ctx, codeKey(p.ProjectID), p.ID, 0)
				}
			}
			if extra != nil {
				extra(pipe)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: project %s modified concurrently", domain.ErrConflict, p.ID)
	}
	if err != nil && claimedReferral {
		// The project write never landed; free the code for other minters.
		s.client.Del(ctx, referralKey(p.ReferralCode))
	}
	return err
}

func marshalEnvelope(version int64, p *project.Project) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: version, Project: *p})
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return data, nil
}

func unmarshalRecord(data []byte) (*ports.ProjectRecord, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, infra("decode project", err)
	}
	return &ports.ProjectRecord{Project: env.Project, Version: env.Version}, nil
}

func marshalRequestEnvelope(version int64, cr *changerequest.ChangeRequest) ([]byte, error) {
	data, err := json.Marshal(requestEnvelope{Version: version, Request: *cr})
	if err != nil {
		return nil, fmt.Errorf("marshal change request: %w", err)
	}
	return data, nil
}

func unmarshalRequestRecord(data []byte) (*ports.ChangeRequestRecord, error) {
	var env requestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, infra("decode change request", err)
	}
	return &ports.ChangeRequestRecord{ChangeRequest: env.Request, Version: env.Version}, nil
}

func sortProjectsByCreated(projects []project.Project) {
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}

func sortRequestsByCreated(requests []changerequest.ChangeRequest) {
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
}

func infra(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
}

func projectKey(id string) string      { return projectKeyPrefix + id }
func codeKey(code string) string       { return codeKeyPrefix + code }
func referralKey(code string) string   { return referralKeyPrefix + code }
func requestKey(id string) string      { return requestKeyPrefix + id }
func projectCRKey(id string) string    { return projectCRPrefix + id }
