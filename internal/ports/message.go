package ports

import "context"

// Request is a command or query value dispatched through the mediator.
// RequestName returns the stable type identity used as the registry key and
// the wire discriminator. Requests are immutable once dispatched.
type Request interface {
	RequestName() string
}

// Notification is an event fanned out to zero or more independent
// subscribers. NotificationName returns the stable identity subscribers
// register under.
type Notification interface {
	NotificationName() string
}

// Correlated is implemented by requests that carry a caller-supplied
// correlation token, surfaced in logs and traces.
type Correlated interface {
	CorrelationID() string
}

// TenantBound is implemented by requests that explicitly name a tenant.
// The authorization behavior rejects requests whose declared tenant differs
// from the ambient principal's before any handler runs.
type TenantBound interface {
	BoundTenant() string
}

// Dispatcher is the single call contract for commands, queries, and
// notifications. RequestMediator implements it in-process; DispatchGateway
// implements it transparently over a wire transport, so calling code never
// knows which it holds.
type Dispatcher interface {
	// Send resolves the single handler for the request's type identity and
	// executes it through the behavior pipeline. Returns
	// domain.ErrHandlerNotFound when no handler is registered. Handler and
	// behavior failures propagate unmodified.
	Send(ctx context.Context, req Request) (any, error)

	// Publish invokes every subscriber for the notification's type
	// independently; one failing subscriber does not prevent the others
	// from running. After all complete, failures are aggregated into a
	// single error. A committed state change is never rolled back because a
	// subscriber failed.
	Publish(ctx context.Context, n Notification) error
}
