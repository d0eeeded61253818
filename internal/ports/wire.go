package ports

import (
	"context"
	"encoding/json"
)

// RequestEnvelope is the wire form of a dispatched request: a tagged union
// of the type-identity discriminator and the JSON-encoded request. Sender
// and receiver share nothing beyond the discriminator→decoder table.
type RequestEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ResponseEnvelope is the wire form of a dispatch outcome: exactly one of
// Payload (success) or Error is set.
type ResponseEnvelope struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

// WireError is the serialized application error carried in a response
// envelope. Kind discriminates the error taxonomy so the receiving side can
// reconstruct a typed error; Fields carries per-field validation messages.
type WireError struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Wire error kinds, one per recoverable error class plus internal.
const (
	WireKindValidation      = "validation"
	WireKindNotFound        = "not_found"
	WireKindConflict        = "conflict"
	WireKindForbidden       = "forbidden"
	WireKindHandlerNotFound = "handler_not_found"
	WireKindFilter          = "filter"
	WireKindSort            = "sort"
	WireKindCancelled       = "cancelled"
	WireKindInternal        = "internal"
)

// Transport ships request envelopes to a remote dispatch endpoint and
// returns the response envelope. Implementations surface transport-level
// failures (unreachable, timeout, malformed response) as errors wrapping
// domain.ErrTransport, distinct from the application errors carried inside
// a response envelope. Transports never retry: delivery is at-most-once
// per call because many requests are not idempotent; retry policy belongs
// to the caller.
type Transport interface {
	// Dispatch sends a request envelope for Send semantics.
	Dispatch(ctx context.Context, env RequestEnvelope) (*ResponseEnvelope, error)

	// Notify sends a notification envelope for Publish semantics.
	Notify(ctx context.Context, env RequestEnvelope) (*ResponseEnvelope, error)
}
