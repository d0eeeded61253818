package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-mediate/internal/app/gateway"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

func TestWireErrorFrom_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{
			name:     "validation error",
			err:      &domain.ValidationError{Fields: map[string]string{"name": "is required"}},
			wantKind: ports.WireKindValidation,
		},
		{
			name:     "wrapped validation sentinel",
			err:      fmt.Errorf("checking: %w", domain.ErrValidation),
			wantKind: ports.WireKindValidation,
		},
		{
			name:     "filter error",
			err:      &filter.Error{Path: "$", Reason: "unknown field"},
			wantKind: ports.WireKindFilter,
		},
		{
			name:     "sort error",
			err:      &filter.SortError{Index: 0, Reason: "unknown field"},
			wantKind: ports.WireKindSort,
		},
		{
			name:     "not found",
			err:      fmt.Errorf("priority %q: %w", "x", domain.ErrNotFound),
			wantKind: ports.WireKindNotFound,
		},
		{
			name:     "conflict",
			err:      &domain.ConflictError{EntityType: "priority", ID: "x"},
			wantKind: ports.WireKindConflict,
		},
		{
			name:     "forbidden",
			err:      fmt.Errorf("%w: no principal", domain.ErrForbidden),
			wantKind: ports.WireKindForbidden,
		},
		{
			name:     "handler not found",
			err:      fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, "x"),
			wantKind: ports.WireKindHandlerNotFound,
		},
		{
			name:     "context canceled",
			err:      context.Canceled,
			wantKind: ports.WireKindCancelled,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantKind: ports.WireKindCancelled,
		},
		{
			name:     "unclassified",
			err:      errors.New("database exploded"),
			wantKind: ports.WireKindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			we := gateway.WireErrorFrom(tt.err)
			assert.Equal(t, tt.wantKind, we.Kind)
			assert.NotEmpty(t, we.Message, "want the error text preserved")
		})
	}
}

func TestWireErrorFrom_ValidationFields(t *testing.T) {
	t.Parallel()

	we := gateway.WireErrorFrom(&domain.ValidationError{Fields: map[string]string{
		"name":  "is required",
		"order": "must not be negative",
	}})

	require.Len(t, we.Fields, 2)
	assert.Equal(t, "is required", we.Fields["name"])
}

func TestErrorFromWire_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", fmt.Errorf("x: %w", domain.ErrNotFound), domain.ErrNotFound},
		{"conflict", &domain.ConflictError{EntityType: "priority", ID: "1"}, domain.ErrConflict},
		{"forbidden", fmt.Errorf("x: %w", domain.ErrForbidden), domain.ErrForbidden},
		{"handler not found", fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, "x"), domain.ErrHandlerNotFound},
		{"filter", &filter.Error{Path: "$", Reason: "bad"}, domain.ErrValidation},
		{"sort", &filter.SortError{Index: 1, Reason: "bad"}, domain.ErrValidation},
		{"cancelled", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reconstructed := gateway.ErrorFromWire(gateway.WireErrorFrom(tt.err))
			assert.ErrorIs(t, reconstructed, tt.sentinel, "sentinel must survive the round trip")
		})
	}
}

func TestErrorFromWire_ValidationFieldsSurvive(t *testing.T) {
	t.Parallel()

	original := &domain.ValidationError{Fields: map[string]string{"name": "is required"}}
	reconstructed := gateway.ErrorFromWire(gateway.WireErrorFrom(original))

	var vErr *domain.ValidationError
	require.ErrorAs(t, reconstructed, &vErr)
	assert.Equal(t, "is required", vErr.Fields["name"], "per-field messages must be preserved")
}

func TestErrorFromWire_InternalKeepsMessage(t *testing.T) {
	t.Parallel()

	err := gateway.ErrorFromWire(&ports.WireError{Kind: ports.WireKindInternal, Message: "database exploded"})
	assert.Equal(t, "database exploded", err.Error())
}
