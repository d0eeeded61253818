package domain

import "time"

// Identity is the shared identifier field group. Managed entities embed it
// by pointer-receiver composition rather than inheriting a base class;
// capability checks happen through the Entity interface.
type Identity struct {
	ID string `json:"id"`
}

// EntityID returns the entity identifier, empty until assigned.
func (i *Identity) EntityID() string { return i.ID }

// SetEntityID assigns the identifier. Called once at create when the store
// generates identity.
func (i *Identity) SetEntityID(id string) { i.ID = id }

// Audit is the created/updated timestamp and actor field group.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// StampCreated sets both created and updated metadata. Called exactly once,
// on the create path.
func (a *Audit) StampCreated(now time.Time, actor string) {
	a.CreatedAt = now
	a.UpdatedAt = now
	a.CreatedBy = actor
	a.UpdatedBy = actor
}

// StampUpdated refreshes the updated metadata on every successful write.
func (a *Audit) StampUpdated(now time.Time, actor string) {
	a.UpdatedAt = now
	a.UpdatedBy = actor
}

// CreatedStamp returns the creation time and actor.
func (a *Audit) CreatedStamp() (time.Time, string) { return a.CreatedAt, a.CreatedBy }

// UpdatedStamp returns the last-update time and actor.
func (a *Audit) UpdatedStamp() (time.Time, string) { return a.UpdatedAt, a.UpdatedBy }

// TenantScope is the isolation-boundary field group. The tenant id is
// assigned at create and immutable afterwards; the coordinator never calls
// SetTenant on an entity that already carries one.
type TenantScope struct {
	TenantID string `json:"tenant_id"`
}

// Tenant returns the owning tenant id, empty until assigned.
func (t *TenantScope) Tenant() string { return t.TenantID }

// SetTenant assigns the owning tenant. Must only be called on entities that
// do not yet belong to a tenant.
func (t *TenantScope) SetTenant(id string) { t.TenantID = id }

// Concurrency is the optimistic-concurrency field group. The token is opaque
// to callers and replaced on every successful write.
type Concurrency struct {
	ConcurrencyToken string `json:"concurrency_token"`
}

// Token returns the current concurrency token.
func (c *Concurrency) Token() string { return c.ConcurrencyToken }

// SetToken replaces the concurrency token.
func (c *Concurrency) SetToken(token string) { c.ConcurrencyToken = token }

// SoftDelete is the logical-deletion field group. Soft-deleted entities are
// excluded from default reads but remain in the store.
type SoftDelete struct {
	Deleted bool `json:"deleted,omitempty"`
}

// IsDeleted reports whether the entity has been soft-deleted.
func (d *SoftDelete) IsDeleted() bool { return d.Deleted }

// MarkDeleted sets the soft-delete flag.
func (d *SoftDelete) MarkDeleted() { d.Deleted = true }

// Entity is the capability contract every managed entity satisfies by
// embedding the field groups above. The coordinator drives create/update/
// delete/query uniformly through this interface instead of per-entity code.
type Entity interface {
	EntityID() string
	SetEntityID(string)
	Tenant() string
	SetTenant(string)
	Token() string
	SetToken(string)
	StampCreated(time.Time, string)
	StampUpdated(time.Time, string)
	CreatedStamp() (time.Time, string)
	UpdatedStamp() (time.Time, string)
	IsDeleted() bool
	MarkDeleted()
}
