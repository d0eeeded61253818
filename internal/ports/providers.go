package ports

import "time"

// Clock is the ambient time provider used for audit stamping. Production
// wiring passes ClockFunc(time.Now); tests pass a fixed instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Validator is the registered validation contract for one request type.
// Validate returns nil when the instance passes, or a
// *domain.ValidationError carrying per-field messages.
type Validator interface {
	Validate(instance any) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(instance any) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(instance any) error { return f(instance) }

// Cache is the process-wide read-through response cache consumed by the
// caching behavior. Entries expire after a bounded TTL configured at
// construction; writes do not invalidate entries, so staleness up to the
// TTL is an accepted trade-off. Implementations must be safe for
// concurrent use with no cross-entry locking.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
