package ports

import (
	"context"
	"time"
)

// Record is the storage representation of one managed entity. The payload
// holds the JSON-encoded entity; the remaining columns duplicate the
// metadata the store needs for scoping, soft-delete filtering, and the
// concurrency-token compare-and-set.
type Record struct {
	EntityType string
	ID         string
	TenantID   string
	Payload    []byte
	Token      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreatedBy  string
	UpdatedBy  string
	Deleted    bool
}

// Store is the narrow persistence contract the coordinator consumes.
// Implementations must make UpdateWithTokenCheck and SetDeletedFlag atomic
// per record: the token comparison and the write happen as one conditional
// operation, so two concurrent updates with the same stale token cannot
// both succeed.
type Store interface {
	// FindByID returns the record scoped to the given tenant. Soft-deleted
	// records are treated as absent. Returns domain.ErrNotFound when no
	// matching record exists.
	FindByID(ctx context.Context, entityType, tenantID, id string) (*Record, error)

	// List returns all records of the given type within the tenant,
	// excluding soft-deleted records unless includeDeleted is set. Order is
	// unspecified; callers sort via the compiled comparator.
	List(ctx context.Context, entityType, tenantID string, includeDeleted bool) ([]Record, error)

	// Insert persists a new record. Returns domain.ErrConflict when a
	// record with the same identity already exists.
	Insert(ctx context.Context, rec Record) error

	// UpdateWithTokenCheck replaces the stored record only if its current
	// token equals expectedToken. Returns domain.ErrNotFound when the
	// record is absent and a *domain.ConflictError when the token is stale;
	// in both cases nothing is written.
	UpdateWithTokenCheck(ctx context.Context, rec Record, expectedToken string) error

	// SetDeletedFlag soft-deletes the record under the same conditional
	// semantics as UpdateWithTokenCheck. The passed record carries the
	// refreshed audit metadata and new token.
	SetDeletedFlag(ctx context.Context, rec Record, expectedToken string) error

	// HardDelete physically removes the record. Returns domain.ErrNotFound
	// when it does not exist.
	HardDelete(ctx context.Context, entityType, tenantID, id string) error
}
