// Package ports defines interfaces between layers in the hexagonal architecture.
// The Dispatcher port is implemented by the application layer (mediator,
// gateway) and called by inbound adapters; the Store, Cache, and Transport
// ports are implemented by outbound adapters and called by the application
// layer. Ambient providers (clock, principal) round out the seams the
// mediation core depends on.
package ports
