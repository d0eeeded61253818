// Package dto provides the HTTP wire forms for the dispatch endpoint:
// response envelope writing and the error-kind to status mapping. The
// envelope body is authoritative for callers; the HTTP status mirrors the
// error kind for plain HTTP observers such as gateways and log pipelines.
package dto

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-mediate/internal/app/gateway"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// WriteEnvelope writes a response envelope with the given status.
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env ports.ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response envelope",
			slog.Any("error", err),
		)
	}
}

// WriteErrorResponse classifies err into its wire form and writes an error
// envelope with the matching status.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	we := gateway.WireErrorFrom(err)
	WriteEnvelope(w, r, StatusForKind(we.Kind), ports.ResponseEnvelope{Error: we})
}

// StatusForKind maps wire error kinds to HTTP status codes.
func StatusForKind(kind string) int {
	switch kind {
	case ports.WireKindValidation, ports.WireKindFilter, ports.WireKindSort, ports.WireKindHandlerNotFound:
		return http.StatusBadRequest
	case ports.WireKindNotFound:
		return http.StatusNotFound
	case ports.WireKindForbidden:
		return http.StatusForbidden
	case ports.WireKindConflict:
		return http.StatusConflict
	case ports.WireKindCancelled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
