package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// DispatchHandler is the remote execution endpoint. It decodes request
// envelopes through the registry's discriminator table, dispatches them
// through the local mediator pipeline, and writes response envelopes.
type DispatchHandler struct {
	registry   *mediator.Registry
	dispatcher ports.Dispatcher
	logger     *slog.Logger
}

// NewDispatchHandler creates a DispatchHandler.
func NewDispatchHandler(registry *mediator.Registry, dispatcher ports.Dispatcher, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{registry: registry, dispatcher: dispatcher, logger: logger}
}

// Dispatch handles POST /v1/dispatch: one request envelope in, one response
// envelope out. Application errors ride in the envelope with a mirrored
// HTTP status.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	req, err := h.registry.DecodeRequest(env.Type, env.Payload)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	res, err := h.dispatcher.Send(r.Context(), req)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode dispatch result",
			slog.String("type", env.Type),
			slog.Any("error", err),
		)
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteEnvelope(w, r, http.StatusOK, ports.ResponseEnvelope{Payload: payload})
}

// Notify handles POST /v1/notify: decodes the notification and fans it out
// to local subscribers. An identity with no subscribers is a successful
// no-op, mirroring local publish semantics.
func (h *DispatchHandler) Notify(w http.ResponseWriter, r *http.Request) {
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	n, found, err := h.registry.DecodeNotification(env.Type, env.Payload)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if found {
		if err := h.dispatcher.Publish(r.Context(), n); err != nil {
			dto.WriteErrorResponse(w, r, err)
			return
		}
	}

	dto.WriteEnvelope(w, r, http.StatusOK, ports.ResponseEnvelope{Payload: json.RawMessage(`{}`)})
}

// decodeEnvelope reads a request envelope from the body. On failure it
// writes a validation error envelope and returns false.
func decodeEnvelope(w http.ResponseWriter, r *http.Request) (ports.RequestEnvelope, bool) {
	var env ports.RequestEnvelope

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "invalid JSON envelope"},
		})
		return ports.RequestEnvelope{}, false
	}
	if env.Type == "" {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"type": "is required"},
		})
		return ports.RequestEnvelope{}, false
	}

	return env, true
}
