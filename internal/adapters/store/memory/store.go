// Package memory provides an in-memory ports.Store used in tests and for
// single-process deployments without durable storage. Conditional writes
// run under one mutex, so the token compare-and-set is atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// key identifies one record.
type key struct {
	entityType string
	tenantID   string
	id         string
}

// Store is a mutex-guarded map of records.
type Store struct {
	mu   sync.RWMutex
	recs map[key]ports.Record
}

var _ ports.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{recs: make(map[key]ports.Record)}
}

// FindByID implements ports.Store.
func (s *Store) FindByID(_ context.Context, entityType, tenantID, id string) (*ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[key{entityType, tenantID, id}]
	if !ok || rec.Deleted {
		return nil, fmt.Errorf("%s %q: %w", entityType, id, domain.ErrNotFound)
	}

	out := cloneRecord(rec)
	return &out, nil
}

// List implements ports.Store. Records are returned ordered by ID so
// results are deterministic without relying on map iteration order.
func (s *Store) List(_ context.Context, entityType, tenantID string, includeDeleted bool) ([]ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.Record, 0)
	for k, rec := range s.recs {
		if k.entityType != entityType || k.tenantID != tenantID {
			continue
		}
		if rec.Deleted && !includeDeleted {
			continue
		}
		out = append(out, cloneRecord(rec))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Insert implements ports.Store.
func (s *Store) Insert(_ context.Context, rec ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{rec.EntityType, rec.TenantID, rec.ID}
	if _, exists := s.recs[k]; exists {
		return fmt.Errorf("%s %q: %w", rec.EntityType, rec.ID, domain.ErrConflict)
	}

	s.recs[k] = cloneRecord(rec)
	return nil
}

// UpdateWithTokenCheck implements ports.Store.
func (s *Store) UpdateWithTokenCheck(_ context.Context, rec ports.Record, expectedToken string) error {
	return s.conditionalWrite(rec, expectedToken)
}

// SetDeletedFlag implements ports.Store.
func (s *Store) SetDeletedFlag(_ context.Context, rec ports.Record, expectedToken string) error {
	rec.Deleted = true
	return s.conditionalWrite(rec, expectedToken)
}

// conditionalWrite replaces the stored record only when the current token
// matches. Token comparison and replacement happen under one lock.
func (s *Store) conditionalWrite(rec ports.Record, expectedToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{rec.EntityType, rec.TenantID, rec.ID}
	current, exists := s.recs[k]
	if !exists || current.Deleted {
		return fmt.Errorf("%s %q: %w", rec.EntityType, rec.ID, domain.ErrNotFound)
	}
	if current.Token != expectedToken {
		return &domain.ConflictError{EntityType: rec.EntityType, ID: rec.ID}
	}

	s.recs[k] = cloneRecord(rec)
	return nil
}

// HardDelete implements ports.Store.
func (s *Store) HardDelete(_ context.Context, entityType, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{entityType, tenantID, id}
	if _, exists := s.recs[k]; !exists {
		return fmt.Errorf("%s %q: %w", entityType, id, domain.ErrNotFound)
	}

	delete(s.recs, k)
	return nil
}

// cloneRecord copies the record including its payload so callers never
// share the stored byte slice.
func cloneRecord(rec ports.Record) ports.Record {
	out := rec
	out.Payload = make([]byte, len(rec.Payload))
	copy(out.Payload, rec.Payload)
	return out
}
