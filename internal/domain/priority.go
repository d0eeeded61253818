package domain

import (
	"strings"

	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
)

// msgRequired is the validation message for mandatory fields.
const msgRequired = "is required"

// maxPriorityNameLen bounds the display name length.
const maxPriorityNameLen = 100

// Priority is a sample managed entity: a named urgency level with a display
// order. It demonstrates the field-group composition every managed entity
// follows: embed the shared groups, add entity fields, then provide a
// Validate method and an explicit filter schema.
type Priority struct {
	Identity
	Audit
	TenantScope
	Concurrency
	SoftDelete

	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// Validate checks business rules for the Priority entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Priority) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = msgRequired
	} else if len(p.Name) > maxPriorityNameLen {
		fields["name"] = "must be at most 100 characters"
	}
	if p.DisplayOrder < 0 {
		fields["display_order"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ApplyPriorityUpdate copies the caller-editable fields from src onto dst.
// Identity, audit, tenant, and concurrency fields are owned by the
// coordinator and never copied here.
func ApplyPriorityUpdate(dst, src *Priority) {
	dst.Name = src.Name
	dst.DisplayOrder = src.DisplayOrder
	dst.IsActive = src.IsActive
}

// PrioritySchema is the explicit field schema consumed by the filter and
// sort compilers. Getters are registered per field; no reflection is
// involved when a query filter runs.
func PrioritySchema() filter.Schema[*Priority] {
	return filter.Schema[*Priority]{
		"Id": {Kind: filter.Identifier, Get: func(p *Priority) (any, bool) {
			return p.ID, p.ID != ""
		}},
		"Name": {Kind: filter.String, Get: func(p *Priority) (any, bool) {
			return p.Name, true
		}},
		"DisplayOrder": {Kind: filter.Number, Get: func(p *Priority) (any, bool) {
			return float64(p.DisplayOrder), true
		}},
		"IsActive": {Kind: filter.Bool, Get: func(p *Priority) (any, bool) {
			return p.IsActive, true
		}},
		"CreatedAt": {Kind: filter.DateTime, Get: func(p *Priority) (any, bool) {
			return p.CreatedAt, !p.CreatedAt.IsZero()
		}},
		"UpdatedAt": {Kind: filter.DateTime, Get: func(p *Priority) (any, bool) {
			return p.UpdatedAt, !p.UpdatedAt.IsZero()
		}},
	}
}
