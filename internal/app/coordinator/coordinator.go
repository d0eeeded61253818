package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
	"github.com/jsamuelsen11/go-mediate/internal/platform/logging"
	"github.com/jsamuelsen11/go-mediate/internal/platform/principal"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Definition describes one managed entity type. Name doubles as the storage
// entity type and the request-name prefix ("priority" yields
// "priority.create" through "priority.query").
type Definition[E Managed] struct {
	Name     string
	New      func() E
	Schema   filter.Schema[E]
	Validate func(E) error
	Apply    func(dst, src E)
}

// Publisher is the notification side of the dispatcher the coordinator
// emits change notifications through.
type Publisher interface {
	Publish(ctx context.Context, n ports.Notification) error
}

// Coordinator executes the five entity operations for one definition. All
// reads and writes are scoped to the caller's tenant; the tenant comes from
// the ambient principal, never from the request.
type Coordinator[E Managed] struct {
	def   Definition[E]
	store ports.Store
	pub   Publisher
	clock ports.Clock
}

// RegisterEntity wires the coordinator's five handlers for the definition
// into the registry, with validation attached to the mutating operations
// and caching enabled for queries.
func RegisterEntity[E Managed](reg *mediator.Registry, def Definition[E], store ports.Store, pub Publisher, clock ports.Clock) error {
	c := &Coordinator[E]{def: def, store: store, pub: pub, clock: clock}

	if err := mediator.Register(reg, def.Name+".create", c.create,
		mediator.WithValidator(createValidator(def))); err != nil {
		return err
	}
	if err := mediator.Register(reg, def.Name+".update", c.update,
		mediator.WithValidator(updateValidator(def))); err != nil {
		return err
	}
	if err := mediator.Register(reg, def.Name+".delete", c.delete,
		mediator.WithValidator(ports.ValidatorFunc(deleteValidator))); err != nil {
		return err
	}
	if err := mediator.Register(reg, def.Name+".get", c.get,
		mediator.WithValidator(ports.ValidatorFunc(getValidator))); err != nil {
		return err
	}
	if err := mediator.Register(reg, def.Name+".query", c.query,
		mediator.WithCacheable()); err != nil {
		return err
	}
	return nil
}

func (c *Coordinator[E]) create(ctx context.Context, req CreateRequest[E]) (E, error) {
	var zero E

	p, ok := principal.FromContext(ctx)
	if !ok {
		return zero, fmt.Errorf("%w: no principal", domain.ErrForbidden)
	}

	item := req.Item
	now := c.clock.Now()
	item.SetEntityID(uuid.NewString())
	item.SetTenant(p.TenantID)
	item.SetToken(uuid.NewString())
	item.StampCreated(now, p.ActorID)

	rec, err := recordFromEntity(c.def.Name, item)
	if err != nil {
		return zero, err
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		return zero, fmt.Errorf("inserting %s: %w", c.def.Name, err)
	}

	c.notify(ctx, domain.ChangeCreated, item, p.TenantID)
	return item, nil
}

func (c *Coordinator[E]) update(ctx context.Context, req UpdateRequest[E]) (E, error) {
	var zero E

	p, ok := principal.FromContext(ctx)
	if !ok {
		return zero, fmt.Errorf("%w: no principal", domain.ErrForbidden)
	}

	rec, err := c.store.FindByID(ctx, c.def.Name, p.TenantID, req.ID)
	if err != nil {
		return zero, fmt.Errorf("loading %s %q: %w", c.def.Name, req.ID, err)
	}
	if rec.Token != req.Token {
		return zero, &domain.ConflictError{EntityType: c.def.Name, ID: req.ID}
	}

	current, err := entityFromRecord(c.def, *rec)
	if err != nil {
		return zero, err
	}

	c.def.Apply(current, req.Item)
	current.StampUpdated(c.clock.Now(), p.ActorID)
	current.SetToken(uuid.NewString())

	updated, err := recordFromEntity(c.def.Name, current)
	if err != nil {
		return zero, err
	}
	if err := c.store.UpdateWithTokenCheck(ctx, updated, req.Token); err != nil {
		return zero, fmt.Errorf("updating %s %q: %w", c.def.Name, req.ID, err)
	}

	c.notify(ctx, domain.ChangeUpdated, current, p.TenantID)
	return current, nil
}

func (c *Coordinator[E]) delete(ctx context.Context, req DeleteRequest) (DeleteResponse, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return DeleteResponse{}, fmt.Errorf("%w: no principal", domain.ErrForbidden)
	}

	if req.Hard {
		if err := c.store.HardDelete(ctx, c.def.Name, p.TenantID, req.ID); err != nil {
			return DeleteResponse{}, fmt.Errorf("deleting %s %q: %w", c.def.Name, req.ID, err)
		}
		c.notify(ctx, domain.ChangeDeleted, req.ID, p.TenantID)
		return DeleteResponse{ID: req.ID, Hard: true}, nil
	}

	rec, err := c.store.FindByID(ctx, c.def.Name, p.TenantID, req.ID)
	if err != nil {
		return DeleteResponse{}, fmt.Errorf("loading %s %q: %w", c.def.Name, req.ID, err)
	}
	if rec.Token != req.Token {
		return DeleteResponse{}, &domain.ConflictError{EntityType: c.def.Name, ID: req.ID}
	}

	current, err := entityFromRecord(c.def, *rec)
	if err != nil {
		return DeleteResponse{}, err
	}

	current.MarkDeleted()
	current.StampUpdated(c.clock.Now(), p.ActorID)
	current.SetToken(uuid.NewString())

	updated, err := recordFromEntity(c.def.Name, current)
	if err != nil {
		return DeleteResponse{}, err
	}
	if err := c.store.SetDeletedFlag(ctx, updated, req.Token); err != nil {
		return DeleteResponse{}, fmt.Errorf("deleting %s %q: %w", c.def.Name, req.ID, err)
	}

	c.notify(ctx, domain.ChangeDeleted, req.ID, p.TenantID)
	return DeleteResponse{ID: req.ID}, nil
}

func (c *Coordinator[E]) get(ctx context.Context, req GetRequest) (E, error) {
	var zero E

	p, ok := principal.FromContext(ctx)
	if !ok {
		return zero, fmt.Errorf("%w: no principal", domain.ErrForbidden)
	}

	rec, err := c.store.FindByID(ctx, c.def.Name, p.TenantID, req.ID)
	if err != nil {
		return zero, fmt.Errorf("loading %s %q: %w", c.def.Name, req.ID, err)
	}
	return entityFromRecord(c.def, *rec)
}

func (c *Coordinator[E]) query(ctx context.Context, req QueryRequest) (QueryResponse[E], error) {
	var zero QueryResponse[E]

	p, ok := principal.FromContext(ctx)
	if !ok {
		return zero, fmt.Errorf("%w: no principal", domain.ErrForbidden)
	}

	recs, err := c.store.List(ctx, c.def.Name, p.TenantID, false)
	if err != nil {
		return zero, fmt.Errorf("listing %s: %w", c.def.Name, err)
	}

	items := make([]E, 0, len(recs))
	for _, rec := range recs {
		item, err := entityFromRecord(c.def, rec)
		if err != nil {
			return zero, err
		}
		items = append(items, item)
	}

	if req.Filter != nil {
		pred, err := filter.Compile(*req.Filter, c.def.Schema)
		if err != nil {
			return zero, err
		}
		matched := items[:0]
		for _, item := range items {
			if pred(item) {
				matched = append(matched, item)
			}
		}
		items = matched
	}

	total := len(items)

	if len(req.Sort) > 0 {
		cmpFn, err := filter.CompileSort(req.Sort, c.def.Schema)
		if err != nil {
			return zero, err
		}
		slices.SortStableFunc(items, cmpFn)
	}

	items = page(items, req.Skip, req.Take)

	return QueryResponse[E]{
		Items:      items,
		TotalCount: total,
		Skip:       req.Skip,
		Take:       req.Take,
	}, nil
}

// notify publishes a change notification. The write is already durable, so
// subscriber failures are logged and do not fail the operation.
func (c *Coordinator[E]) notify(ctx context.Context, op domain.ChangeOperation, payload any, tenantID string) {
	n := domain.ChangeNotification{
		EntityType: c.def.Name,
		Operation:  op,
		Payload:    payload,
		TenantID:   tenantID,
	}
	if err := c.pub.Publish(ctx, n); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "change notification delivery failed",
			slog.String("entity", c.def.Name),
			slog.String("operation", string(op)),
			slog.Any("error", err),
		)
	}
}

// page applies skip/take after filtering and sorting. Take of zero or less
// means no limit.
func page[E any](items []E, skip, take int) []E {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []E{}
	}
	items = items[skip:]
	if take > 0 && take < len(items) {
		items = items[:take]
	}
	return items
}

// recordFromEntity encodes the entity payload and mirrors the metadata the
// store needs into the record columns.
func recordFromEntity[E Managed](entityType string, e E) (ports.Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return ports.Record{}, fmt.Errorf("encoding %s %q: %w", entityType, e.EntityID(), err)
	}

	createdAt, createdBy := e.CreatedStamp()
	updatedAt, updatedBy := e.UpdatedStamp()

	return ports.Record{
		EntityType: entityType,
		ID:         e.EntityID(),
		TenantID:   e.Tenant(),
		Payload:    payload,
		Token:      e.Token(),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		CreatedBy:  createdBy,
		UpdatedBy:  updatedBy,
		Deleted:    e.IsDeleted(),
	}, nil
}

// entityFromRecord decodes a stored payload into a fresh entity instance.
func entityFromRecord[E Managed](def Definition[E], rec ports.Record) (E, error) {
	e := def.New()
	if err := json.Unmarshal(rec.Payload, e); err != nil {
		var zero E
		return zero, fmt.Errorf("decoding %s %q: %w", rec.EntityType, rec.ID, err)
	}
	return e, nil
}
