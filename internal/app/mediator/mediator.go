package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/go-mediate/internal/app/fanout"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// defaultPublishWorkers bounds concurrent subscriber execution per Publish.
const defaultPublishWorkers = 4

// Mediator routes requests to their registered handler through the behavior
// pipeline and fans notifications out to all subscribers.
type Mediator struct {
	registry       *Registry
	pipeline       Behavior
	publishWorkers int
	logger         *slog.Logger
}

// Compile-time interface check.
var _ ports.Dispatcher = (*Mediator)(nil)

// New creates a mediator over the given registry. Behaviors are applied in
// the order given, first outermost; the composed pipeline is identical for
// every dispatched request.
func New(registry *Registry, logger *slog.Logger, behaviors ...Behavior) *Mediator {
	return &Mediator{
		registry:       registry,
		pipeline:       Chain(behaviors...),
		publishWorkers: defaultPublishWorkers,
		logger:         logger,
	}
}

// Send resolves the single handler for the request's identity and executes
// it through the behavior pipeline.
//
// An already-canceled context returns ctx.Err() before any pipeline stage
// runs. An unregistered identity returns domain.ErrHandlerNotFound.
func (m *Mediator) Send(ctx context.Context, req ports.Request) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := req.RequestName()
	handler, ok := m.registry.Handler(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, name)
	}

	return m.pipeline(handler)(ctx, req)
}

// Publish delivers the notification to every subscriber registered for its
// identity. All subscribers run regardless of individual failures; the
// returned error aggregates every failure, attributed by subscriber label.
// Zero subscribers is a successful no-op.
func (m *Mediator) Publish(ctx context.Context, n ports.Notification) error {
	name := n.NotificationName()
	subs := m.registry.subscribers(name)
	if len(subs) == 0 {
		return nil
	}

	errs := fanout.Run(ctx, m.publishWorkers, subs, func(ctx context.Context, s subscriber) error {
		if err := s.handle(ctx, n); err != nil {
			m.logger.ErrorContext(ctx, "notification subscriber failed",
				slog.String("notification", name),
				slog.String("subscriber", s.label),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("subscriber %q: %w", s.label, err)
		}
		return nil
	})

	if joined := errors.Join(errs...); joined != nil {
		return fmt.Errorf("publishing %q: %w", name, joined)
	}
	return nil
}

// Send dispatches the request and asserts the response to TRes. It is the
// typed entry point callers use against any ports.Dispatcher, local or
// remote.
func Send[TRes any](ctx context.Context, d ports.Dispatcher, req ports.Request) (TRes, error) {
	var zero TRes

	res, err := d.Send(ctx, req)
	if err != nil {
		return zero, err
	}

	typed, ok := res.(TRes)
	if !ok {
		return zero, fmt.Errorf("request %q: unexpected response type %T", req.RequestName(), res)
	}
	return typed, nil
}
