package behavior

import (
	"context"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Validation runs the validator registered for the request's identity, if
// any, and short-circuits the pipeline when it fails. The handler never
// sees an invalid request. Request types without a registered validator
// pass through untouched.
func Validation(registry *mediator.Registry) mediator.Behavior {
	return func(next mediator.Handler) mediator.Handler {
		return func(ctx context.Context, req ports.Request) (any, error) {
			if v := registry.Validator(req.RequestName()); v != nil {
				if err := v.Validate(req); err != nil {
					return nil, err
				}
			}
			return next(ctx, req)
		}
	}
}
