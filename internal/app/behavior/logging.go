// Package behavior provides the pipeline stages applied to every mediated
// request: structured logging with tracing and metrics, tenant-scope
// authorization, request validation, and query-response caching.
//
// The stages are composed once at startup via mediator.Chain; each one is a
// mediator.Behavior closing over its collaborators.
package behavior

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/platform/logging"
	"github.com/jsamuelsen11/go-mediate/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

const tracerName = "github.com/jsamuelsen11/go-mediate/internal/app/behavior"

// Logging wraps each dispatch in an OpenTelemetry span and records duration
// and outcome metrics. It logs at debug on success and at error on failure,
// using the context-scoped logger so request and correlation IDs attached by
// HTTP middleware carry through.
//
// Logging is the outermost stage so it observes the full pipeline, including
// short-circuits from inner stages. metrics may be nil when telemetry is
// disabled.
func Logging(metrics *telemetry.Metrics) mediator.Behavior {
	tracer := otel.Tracer(tracerName)

	return func(next mediator.Handler) mediator.Handler {
		return func(ctx context.Context, req ports.Request) (any, error) {
			name := req.RequestName()

			ctx, span := tracer.Start(ctx, "mediator.dispatch "+name,
				trace.WithAttributes(telemetry.AttrRequestName.String(name)),
			)
			defer span.End()

			logger := logging.FromContext(ctx)
			start := time.Now()

			res, err := next(ctx, req)

			elapsed := time.Since(start)
			result := "success"
			if err != nil {
				result = "error"
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			if metrics != nil {
				attrs := metric.WithAttributes(
					telemetry.AttrRequestName.String(name),
					telemetry.AttrResult.String(result),
				)
				metrics.DispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
				metrics.DispatchTotal.Add(ctx, 1, attrs)
			}

			if err != nil {
				logger.ErrorContext(ctx, "dispatch failed",
					slog.String("request", name),
					slog.Duration("duration", elapsed),
					slog.Any("error", err),
				)
				return nil, err
			}

			logger.DebugContext(ctx, "dispatch completed",
				slog.String("request", name),
				slog.Duration("duration", elapsed),
			)
			return res, nil
		}
	}
}

// hashPayload produces a stable hex digest of a canonical request encoding,
// used by the caching stage to key responses.
func hashPayload(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
