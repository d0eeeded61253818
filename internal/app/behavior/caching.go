package behavior

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/platform/principal"
	"github.com/jsamuelsen11/go-mediate/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Caching serves responses for request types registered as cacheable from
// the given cache, keyed by request identity, tenant, and a digest of the
// canonical request encoding. Tenants never share cache entries. Failed
// dispatches are never cached.
//
// Entries expire by the cache's TTL policy only; writes do not invalidate.
// A request that cannot be canonically encoded bypasses the cache rather
// than failing the dispatch.
func Caching(registry *mediator.Registry, cache ports.Cache, metrics *telemetry.Metrics) mediator.Behavior {
	return func(next mediator.Handler) mediator.Handler {
		return func(ctx context.Context, req ports.Request) (any, error) {
			name := req.RequestName()
			if !registry.Cacheable(name) {
				return next(ctx, req)
			}

			key, ok := cacheKey(ctx, name, req)
			if !ok {
				return next(ctx, req)
			}

			if res, hit := cache.Get(key); hit {
				if metrics != nil {
					metrics.CacheHitTotal.Add(ctx, 1, metric.WithAttributes(
						telemetry.AttrRequestName.String(name),
					))
				}
				return res, nil
			}

			res, err := next(ctx, req)
			if err != nil {
				return nil, err
			}

			cache.Set(key, res)
			return res, nil
		}
	}
}

// cacheKey builds the tenant-scoped cache key for a request. The principal
// is guaranteed present by the tenant-scoping stage; a missing one means the
// pipeline was composed without it, so the cache is bypassed.
func cacheKey(ctx context.Context, name string, req ports.Request) (string, bool) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return "", false
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%s|%s|%s", name, p.TenantID, hashPayload(payload)), true
}
