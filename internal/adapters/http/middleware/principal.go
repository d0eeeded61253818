package middleware

import (
	"net/http"

	"github.com/jsamuelsen11/go-mediate/internal/platform/principal"
)

// Caller identity headers. Authentication happens upstream; these carry the
// already-verified identity into the service.
const (
	headerTenantID = "X-Tenant-ID"
	headerActorID  = "X-Actor-ID"
)

// Principal returns middleware that resolves the caller's principal from
// request headers and stores it in the context. Requests without a tenant
// header pass through without a principal; the tenant-scoping pipeline
// stage rejects any dispatch that reaches it unauthenticated.
//
// Register before the dispatch routes so handlers and pipeline stages see
// the principal.
func Principal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(headerTenantID)
			if tenantID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := principal.WithPrincipal(r.Context(), principal.Principal{
				TenantID: tenantID,
				ActorID:  r.Header.Get(headerActorID),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
