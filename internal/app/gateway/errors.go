package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/domain/filter"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// WireErrorFrom classifies an application error into its wire form. The
// dispatch endpoint uses it to build error envelopes; ErrorFromWire is the
// inverse on the calling side. Unclassified errors become internal with the
// full message preserved.
func WireErrorFrom(err error) *ports.WireError {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return &ports.WireError{Kind: ports.WireKindValidation, Message: vErr.Error(), Fields: vErr.Fields}
	}

	var fErr *filter.Error
	if errors.As(err, &fErr) {
		return &ports.WireError{Kind: ports.WireKindFilter, Message: err.Error()}
	}

	var sErr *filter.SortError
	if errors.As(err, &sErr) {
		return &ports.WireError{Kind: ports.WireKindSort, Message: err.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrHandlerNotFound):
		return &ports.WireError{Kind: ports.WireKindHandlerNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return &ports.WireError{Kind: ports.WireKindValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return &ports.WireError{Kind: ports.WireKindNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return &ports.WireError{Kind: ports.WireKindConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return &ports.WireError{Kind: ports.WireKindForbidden, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &ports.WireError{Kind: ports.WireKindCancelled, Message: err.Error()}
	default:
		return &ports.WireError{Kind: ports.WireKindInternal, Message: err.Error()}
	}
}

// ErrorFromWire reconstructs a typed error from its wire form so remote
// callers can use errors.Is and errors.As exactly as local callers do.
func ErrorFromWire(we *ports.WireError) error {
	switch we.Kind {
	case ports.WireKindValidation:
		if len(we.Fields) > 0 {
			return &domain.ValidationError{Fields: we.Fields}
		}
		return fmt.Errorf("%s: %w", we.Message, domain.ErrValidation)
	case ports.WireKindNotFound:
		return fmt.Errorf("%s: %w", we.Message, domain.ErrNotFound)
	case ports.WireKindConflict:
		return fmt.Errorf("%s: %w", we.Message, domain.ErrConflict)
	case ports.WireKindForbidden:
		return fmt.Errorf("%s: %w", we.Message, domain.ErrForbidden)
	case ports.WireKindHandlerNotFound:
		return fmt.Errorf("%s: %w", we.Message, domain.ErrHandlerNotFound)
	case ports.WireKindFilter, ports.WireKindSort:
		return fmt.Errorf("%s: %w", we.Message, domain.ErrValidation)
	case ports.WireKindCancelled:
		return fmt.Errorf("%s: %w", we.Message, context.Canceled)
	default:
		return errors.New(we.Message)
	}
}
