package behavior

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/platform/principal"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// TenantScoping rejects any dispatch that arrives without a resolved
// principal, and rejects requests that declare a tenant binding different
// from the caller's tenant. Handlers below this stage can rely on the
// principal being present and tenant-consistent.
//
// Requests never carry a mutable tenant field; the tenant travels in the
// ambient principal and handlers read it from the context.
func TenantScoping() mediator.Behavior {
	return func(next mediator.Handler) mediator.Handler {
		return func(ctx context.Context, req ports.Request) (any, error) {
			p, ok := principal.FromContext(ctx)
			if !ok {
				return nil, fmt.Errorf("%w: no principal for %q", domain.ErrForbidden, req.RequestName())
			}

			if bound, ok := req.(ports.TenantBound); ok {
				if t := bound.BoundTenant(); t != "" && t != p.TenantID {
					return nil, fmt.Errorf("%w: request bound to tenant %q, caller is %q",
						domain.ErrForbidden, t, p.TenantID)
				}
			}

			return next(ctx, req)
		}
	}
}
