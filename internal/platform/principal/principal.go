// Package principal provides the ambient caller identity: who is acting and
// which tenant they belong to. Inbound middleware resolves the principal
// once per request and stores it in the context; the authorization behavior
// and the entity coordinator read it from there.
//
//	ctx = principal.WithPrincipal(ctx, principal.Principal{ActorID: "u1", TenantID: "t1"})
//	p, ok := principal.FromContext(ctx)
package principal

import "context"

// Principal identifies the caller of a dispatch. TenantID is the isolation
// boundary every scoped operation runs under; ActorID stamps audit metadata.
type Principal struct {
	ActorID  string
	TenantID string
}

// contextKey is the unexported key type for storing principals in context.
type contextKey struct{}

// WithPrincipal returns a new context with the given principal stored in it.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal from the context. The second return
// value is false when no principal has been resolved.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
