// Package mediator implements the request-mediation core: an explicit
// handler registry keyed by request-type identity, an ordered behavior
// pipeline wrapping every handler call, and Send/Publish dispatch with
// independent notification fan-out.
//
// The registry is built once at process start and frozen; dispatch never
// touches reflection or a DI container. Registration is generic so handlers
// stay fully typed while the registry stores uniform closures:
//
//	err := mediator.Register(reg, "priority.create", handlePriorityCreate)
package mediator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Handler executes one request. Typed handlers are wrapped into this shape
// at registration time.
type Handler func(ctx context.Context, req ports.Request) (any, error)

// NotificationHandler consumes one notification.
type NotificationHandler func(ctx context.Context, n ports.Notification) error

// entry bundles everything registered for one request-type identity: the
// handler, the wire decoders used by remote dispatch, and the per-type
// pipeline metadata consumed by behaviors.
type entry struct {
	handler    Handler
	decodeReq  func(payload []byte) (ports.Request, error)
	decodeResp func(payload []byte) (any, error)
	validator  ports.Validator
	cacheable  bool
}

// subscriber is one registered notification consumer. The label attributes
// failures in aggregated publish errors.
type subscriber struct {
	label  string
	handle NotificationHandler
}

// Registry is the process-wide mapping from request-type identity to exactly
// one handler, plus the subscriber lists for notifications. It is built at
// startup, frozen, and read-only thereafter.
type Registry struct {
	mu            sync.RWMutex
	frozen        bool
	entries       map[string]entry
	subs          map[string][]subscriber
	notifDecoders map[string]func(payload []byte) (ports.Notification, error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:       make(map[string]entry),
		subs:          make(map[string][]subscriber),
		notifDecoders: make(map[string]func(payload []byte) (ports.Notification, error)),
	}
}

// Option configures a registration.
type Option func(*entry)

// WithValidator attaches the validator the validation behavior runs before
// the handler executes.
func WithValidator(v ports.Validator) Option {
	return func(e *entry) { e.validator = v }
}

// WithCacheable marks the request type as a query whose responses the
// caching behavior may store and serve.
func WithCacheable() Option {
	return func(e *entry) { e.cacheable = true }
}

// Register binds a typed handler to the given request-type identity. The
// JSON request/response decoders for remote dispatch are derived from the
// type parameters, so the discriminator→decoder table is maintained in one
// place.
//
// Registering a second handler for an already-registered identity fails
// with domain.ErrAmbiguousHandler; registering after Freeze fails. Both are
// startup-time configuration defects, not per-call conditions.
func Register[TReq ports.Request, TRes any](r *Registry, name string, fn func(context.Context, TReq) (TRes, error), opts ...Option) error {
	e := entry{
		handler: func(ctx context.Context, req ports.Request) (any, error) {
			typed, ok := req.(TReq)
			if !ok {
				return nil, fmt.Errorf("handler %q: unexpected request type %T", name, req)
			}
			return fn(ctx, typed)
		},
		decodeReq: func(payload []byte) (ports.Request, error) {
			var req TReq
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, fmt.Errorf("decoding %q request: %w", name, err)
			}
			return req, nil
		},
		decodeResp: func(payload []byte) (any, error) {
			res := new(TRes)
			if err := json.Unmarshal(payload, res); err != nil {
				return nil, fmt.Errorf("decoding %q response: %w", name, err)
			}
			return *res, nil
		},
	}

	for _, opt := range opts {
		opt(&e)
	}

	return r.register(name, e)
}

func (r *Registry) register(name string, e entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registering %q: registry is frozen", name)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrAmbiguousHandler, name)
	}

	r.entries[name] = e
	return nil
}

// Subscribe adds a typed notification handler under the given notification
// identity. Multiple subscribers per identity are allowed; each runs
// independently during Publish. The label identifies the subscriber in
// aggregated publish errors.
func Subscribe[TN ports.Notification](r *Registry, name, label string, fn func(context.Context, TN) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("subscribing %q to %q: registry is frozen", label, name)
	}

	r.subs[name] = append(r.subs[name], subscriber{
		label: label,
		handle: func(ctx context.Context, n ports.Notification) error {
			typed, ok := n.(TN)
			if !ok {
				return fmt.Errorf("subscriber %q: unexpected notification type %T", label, n)
			}
			return fn(ctx, typed)
		},
	})

	// First subscriber for an identity contributes the wire decoder used by
	// the remote notify endpoint.
	if _, exists := r.notifDecoders[name]; !exists {
		r.notifDecoders[name] = func(payload []byte) (ports.Notification, error) {
			var n TN
			if err := json.Unmarshal(payload, &n); err != nil {
				return nil, fmt.Errorf("decoding %q notification: %w", name, err)
			}
			return n, nil
		}
	}
	return nil
}

// DecodeNotification decodes a wire payload into the typed notification the
// subscribers for the identity expect. The second return value is false
// when no subscriber is registered, which callers treat as a successful
// no-op rather than an error.
func (r *Registry) DecodeNotification(name string, payload []byte) (ports.Notification, bool, error) {
	r.mu.RLock()
	decode, ok := r.notifDecoders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	n, err := decode(payload)
	if err != nil {
		return nil, true, err
	}
	return n, true, nil
}

// Freeze marks the registry read-only. Called once after startup wiring;
// any later registration attempt is a configuration defect.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Handler returns the single handler for the given identity.
func (r *Registry) Handler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.handler, ok
}

// Validator returns the validator registered for the identity, or nil.
func (r *Registry) Validator(name string) ports.Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name].validator
}

// Cacheable reports whether responses for the identity may be cached.
func (r *Registry) Cacheable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name].cacheable
}

// DecodeRequest decodes a wire payload into the typed request registered
// for the identity. The decoded request must agree with the envelope
// discriminator; a mismatch means the payload was built for a different
// type and is rejected.
func (r *Registry) DecodeRequest(name string, payload []byte) (ports.Request, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, name)
	}

	req, err := e.decodeReq(payload)
	if err != nil {
		return nil, err
	}
	if req.RequestName() != name {
		return nil, fmt.Errorf("decoding %q request: payload identifies as %q", name, req.RequestName())
	}
	return req, nil
}

// DecodeResponse decodes a wire payload into the typed response registered
// for the identity.
func (r *Registry) DecodeResponse(name string, payload []byte) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, name)
	}
	return e.decodeResp(payload)
}

// RequestNames returns the registered identities in sorted order. Used for
// startup logging and diagnostics.
func (r *Registry) RequestNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// subscribers returns a copy of the subscriber list for the identity.
func (r *Registry) subscribers(name string) []subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]subscriber, len(r.subs[name]))
	copy(subs, r.subs[name])
	return subs
}
