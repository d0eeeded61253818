// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-mediate/internal/adapters/http"
	"github.com/jsamuelsen11/go-mediate/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-mediate/internal/adapters/http/middleware"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/cache"
	"github.com/jsamuelsen11/go-mediate/internal/adapters/remote"
	"github.com/jsamuelsen11/go-mediate/internal/adapters/store/memory"
	"github.com/jsamuelsen11/go-mediate/internal/adapters/store/sqlite"
	"github.com/jsamuelsen11/go-mediate/internal/app/behavior"
	"github.com/jsamuelsen11/go-mediate/internal/app/coordinator"
	"github.com/jsamuelsen11/go-mediate/internal/app/gateway"
	"github.com/jsamuelsen11/go-mediate/internal/app/mediator"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/platform/config"
	"github.com/jsamuelsen11/go-mediate/internal/platform/health"
	"github.com/jsamuelsen11/go-mediate/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-mediate/internal/platform/logging"
	"github.com/jsamuelsen11/go-mediate/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-mediate/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registerHealthCheckers(injector, cfg)

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Release the store (closes the SQLite handle when in use).
	if store, err := do.Invoke[ports.Store](injector); err == nil {
		if closer, ok := store.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("store close error", slog.Any("error", err))
			}
		}
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (ports.Store, error) {
		switch cfg.Storage.Driver {
		case "sqlite":
			return sqlite.Open(cfg.Storage.Path)
		default:
			return memory.New(), nil
		}
	})

	do.Provide(injector, func(_ do.Injector) (ports.Cache, error) {
		return cache.New(cfg.Cache.Size, cfg.Cache.TTL), nil
	})

	do.Provide(injector, func(_ do.Injector) (*mediator.Registry, error) {
		return mediator.NewRegistry(), nil
	})

	do.Provide(injector, func(i do.Injector) (*mediator.Mediator, error) {
		registry := do.MustInvoke[*mediator.Registry](i)
		responseCache := do.MustInvoke[ports.Cache](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		med := mediator.New(registry, logger,
			behavior.Logging(metrics),
			behavior.TenantScoping(),
			behavior.Validation(registry),
			behavior.Caching(registry, responseCache, metrics),
		)

		store := do.MustInvoke[ports.Store](i)
		if err := registerHandlers(registry, med, store, logger); err != nil {
			return nil, fmt.Errorf("registering handlers: %w", err)
		}
		registry.Freeze()

		logger.Info("handler registry frozen",
			slog.Any("requests", registry.RequestNames()),
		)
		return med, nil
	})

	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Transport, "dispatch-endpoint", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.Dispatcher, error) {
		med := do.MustInvoke[*mediator.Mediator](i)

		switch cfg.Dispatch.Mode {
		case "remote":
			client := do.MustInvoke[*httpclient.Client](i)
			registry := do.MustInvoke[*mediator.Registry](i)
			transport := remote.New(client, logger)
			return gateway.NewRemote(transport, registry), nil
		default:
			return gateway.NewLocal(med), nil
		}
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// The endpoint dispatches through the gateway, not the mediator
	// directly: in local mode requests execute in process, in remote mode
	// the endpoint forwards envelopes to the configured downstream.
	do.Provide(injector, func(i do.Injector) (*handlers.DispatchHandler, error) {
		registry := do.MustInvoke[*mediator.Registry](i)
		dispatcher := do.MustInvoke[ports.Dispatcher](i)
		return handlers.NewDispatchHandler(registry, dispatcher, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		dispatchH := do.MustInvoke[*handlers.DispatchHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(dispatchH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.Principal(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}

// registerHandlers binds every managed entity and notification subscriber
// into the registry. Called once before the registry is frozen.
func registerHandlers(registry *mediator.Registry, pub coordinator.Publisher, store ports.Store, logger *slog.Logger) error {
	clock := ports.ClockFunc(time.Now)

	priorities := coordinator.Definition[*domain.Priority]{
		Name:     "priority",
		New:      func() *domain.Priority { return &domain.Priority{} },
		Schema:   domain.PrioritySchema(),
		Validate: func(p *domain.Priority) error { return p.Validate() },
		Apply:    domain.ApplyPriorityUpdate,
	}
	if err := coordinator.RegisterEntity(registry, priorities, store, pub, clock); err != nil {
		return err
	}

	// Audit-log subscriber for entity change notifications.
	return mediator.Subscribe(registry, domain.ChangeNotificationName, "change-log",
		func(ctx context.Context, n domain.ChangeNotification) error {
			logger.InfoContext(ctx, "entity changed",
				slog.String("entity", n.EntityType),
				slog.String("operation", string(n.Operation)),
				slog.String("tenant_id", n.TenantID),
			)
			return nil
		})
}

// registerHealthCheckers wires readiness checks for the backends the active
// configuration actually uses.
func registerHealthCheckers(injector *do.RootScope, cfg *config.Config) {
	registry := do.MustInvoke[ports.HealthRegistry](injector)

	if cfg.Storage.Driver == "sqlite" {
		if store, err := do.Invoke[ports.Store](injector); err == nil {
			if checker, ok := store.(ports.HealthChecker); ok {
				registry.Register(checker)
			}
		}
	}

	if cfg.Dispatch.Mode == "remote" {
		client := do.MustInvoke[*httpclient.Client](injector)
		registry.Register(client)
	}
}
