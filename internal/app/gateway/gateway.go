// Package gateway provides the dispatch gateway: a ports.Dispatcher whose
// execution locality is a deployment decision. Local mode delegates
// directly to the in-process mediator; remote mode ships envelopes over a
// transport to a dispatch endpoint. Callers hold a ports.Dispatcher and
// cannot tell the difference.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Local executes dispatches in-process.
type Local struct {
	dispatcher ports.Dispatcher
}

var _ ports.Dispatcher = (*Local)(nil)

// NewLocal creates a gateway that delegates to the given in-process
// dispatcher, typically the mediator.
func NewLocal(d ports.Dispatcher) *Local {
	return &Local{dispatcher: d}
}

// Send implements ports.Dispatcher.
func (g *Local) Send(ctx context.Context, req ports.Request) (any, error) {
	return g.dispatcher.Send(ctx, req)
}

// Publish implements ports.Dispatcher.
func (g *Local) Publish(ctx context.Context, n ports.Notification) error {
	return g.dispatcher.Publish(ctx, n)
}

// Remote executes dispatches on a remote endpoint. Requests are wrapped in
// envelopes tagged with the request-type identity; responses are decoded
// back to the registered typed response, and error envelopes are
// reconstructed into the same typed errors a local dispatch would return.
//
// Remote never retries. Transport failures wrap domain.ErrTransport and the
// caller cannot assume the request did not execute.
type Remote struct {
	transport ports.Transport
	registry  *mediator.Registry
}

var _ ports.Dispatcher = (*Remote)(nil)

// NewRemote creates a gateway that ships dispatches over the transport. The
// registry supplies the response decoders, so both ends share nothing
// beyond the identity-to-type table.
func NewRemote(transport ports.Transport, registry *mediator.Registry) *Remote {
	return &Remote{transport: transport, registry: registry}
}

// Send implements ports.Dispatcher.
func (g *Remote) Send(ctx context.Context, req ports.Request) (any, error) {
	name := req.RequestName()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %q request: %w", name, err)
	}

	resp, err := g.transport.Dispatch(ctx, ports.RequestEnvelope{Type: name, Payload: payload})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, ErrorFromWire(resp.Error)
	}

	return g.registry.DecodeResponse(name, resp.Payload)
}

// Publish implements ports.Dispatcher.
func (g *Remote) Publish(ctx context.Context, n ports.Notification) error {
	name := n.NotificationName()

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding %q notification: %w", name, err)
	}

	resp, err := g.transport.Notify(ctx, ports.RequestEnvelope{Type: name, Payload: payload})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return ErrorFromWire(resp.Error)
	}
	return nil
}
