// Package coordinator provides uniform create/update/delete/get/query
// handling for managed entities. An entity is described once by a
// Definition and registered with RegisterEntity; the five request types and
// their handlers are then shared across all entities, keyed by the
// definition's name.
package coordinator

import (
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
)

// Managed constrains coordinator type parameters to pointer entity types so
// a decoded-but-absent payload can be detected as the zero value.
type Managed interface {
	domain.Entity
	comparable
}

// CreateRequest asks for a new entity to be persisted. Identity, tenant,
// audit metadata, and the concurrency token are assigned by the handler;
// values for them on Item are ignored.
type CreateRequest[E Managed] struct {
	Entity string `json:"entity"`
	Item   E      `json:"item"`
}

func (r CreateRequest[E]) RequestName() string { return r.Entity + ".create" }

// UpdateRequest replaces the caller-editable fields of an existing entity.
// Token must carry the concurrency token from the last read; a stale token
// fails with a conflict and writes nothing.
type UpdateRequest[E Managed] struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Token  string `json:"token"`
	Item   E      `json:"item"`
}

func (r UpdateRequest[E]) RequestName() string { return r.Entity + ".update" }

// DeleteRequest removes an entity. The default is a soft delete guarded by
// the concurrency token; Hard physically removes the record and ignores the
// token.
type DeleteRequest struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Token  string `json:"token,omitempty"`
	Hard   bool   `json:"hard,omitempty"`
}

func (r DeleteRequest) RequestName() string { return r.Entity + ".delete" }

// DeleteResponse acknowledges a completed delete.
type DeleteResponse struct {
	ID   string `json:"id"`
	Hard bool   `json:"hard,omitempty"`
}

// GetRequest loads a single entity by identifier within the caller's
// tenant. Soft-deleted entities are absent.
type GetRequest struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

func (r GetRequest) RequestName() string { return r.Entity + ".get" }

// QueryRequest lists entities matching an optional filter expression,
// ordered by the optional sort keys, with skip/take paging applied after
// filtering. Query responses are cacheable.
type QueryRequest struct {
	Entity string           `json:"entity"`
	Filter *filter.Node     `json:"filter,omitempty"`
	Sort   []filter.SortKey `json:"sort,omitempty"`
	Skip   int              `json:"skip,omitempty"`
	Take   int              `json:"take,omitempty"`
}

func (r QueryRequest) RequestName() string { return r.Entity + ".query" }

// QueryResponse carries one page of query results. TotalCount is the number
// of entities matching the filter before paging.
type QueryResponse[E Managed] struct {
	Items      []E `json:"items"`
	TotalCount int `json:"total_count"`
	Skip       int `json:"skip"`
	Take       int `json:"take"`
}
