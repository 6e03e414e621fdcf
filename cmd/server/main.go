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

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	adapthttp "github.com/laurensbos/webstability-backend/internal/adapters/http"
	"github.com/laurensbos/webstability-backend/internal/adapters/http/handlers"
	"github.com/laurensbos/webstability-backend/internal/adapters/http/middleware"

	"github.com/laurensbos/webstability-backend/internal/adapters/clients/acl"
	memstore "github.com/laurensbos/webstability-backend/internal/adapters/store/memory"
	redistore "github.com/laurensbos/webstability-backend/internal/adapters/store/redis"
	"github.com/laurensbos/webstability-backend/internal/app"
	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/phase"
	"github.com/laurensbos/webstability-backend/internal/platform/config"
	"github.com/laurensbos/webstability-backend/internal/platform/health"
	"github.com/laurensbos/webstability-backend/internal/platform/httpclient"
	"github.com/laurensbos/webstability-backend/internal/platform/logging"
	"github.com/laurensbos/webstability-backend/internal/platform/telemetry"
	"github.com/laurensbos/webstability-backend/internal/ports"
	"github.com/laurensbos/webstability-backend/internal/quota"

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
	registerHealthCheckers(injector)

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

// paymentClient and notifyClient name the two outbound httpclient instances
// in the DI container.
type (
	paymentClient struct{ *httpclient.Client }
	notifyClient  struct{ *httpclient.Client }
)

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (paymentClient, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return paymentClient{httpclient.New(&cfg.Payment, "payment-provider", metrics, logger)}, nil
	})

	do.Provide(injector, func(i do.Injector) (notifyClient, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return notifyClient{httpclient.New(&cfg.Notifier, "notify-service", metrics, logger)}, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.PaymentGateway, error) {
		client := do.MustInvoke[paymentClient](i)
		return acl.NewPaymentClient(client.Client, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.Notifier, error) {
		client := do.MustInvoke[notifyClient](i)
		return acl.NewNotifyClient(client.Client, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.Store, error) {
		return newStore(cfg)
	})

	do.Provide(injector, func(_ do.Injector) (*quota.Tracker, error) {
		return quota.NewTracker(quotaTable(cfg)), nil
	})

	do.Provide(injector, func(_ do.Injector) (*phase.Machine, error) {
		return phase.NewMachine(phase.GraphByName(cfg.Lifecycle.Graph), checklist.New()), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.LifecycleService, error) {
		store := do.MustInvoke[ports.Store](i)
		machine := do.MustInvoke[*phase.Machine](i)
		gateway := do.MustInvoke[ports.PaymentGateway](i)
		notifier := do.MustInvoke[ports.Notifier](i)
		return app.NewLifecycleService(store, machine, checklist.New(), gateway, notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ChangeRequestService, error) {
		store := do.MustInvoke[ports.Store](i)
		tracker := do.MustInvoke[*quota.Tracker](i)
		notifier := do.MustInvoke[ports.Notifier](i)
		return app.NewChangeService(store, tracker, notifier, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ProjectHandler, error) {
		svc := do.MustInvoke[ports.LifecycleService](i)
		return handlers.NewProjectHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ChangeRequestHandler, error) {
		svc := do.MustInvoke[ports.ChangeRequestService](i)
		return handlers.NewChangeRequestHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		projH := do.MustInvoke[*handlers.ProjectHandler](i)
		changeH := do.MustInvoke[*handlers.ChangeRequestHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(projH, changeH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
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

// newStore builds the configured persistence backend.
func newStore(cfg *config.Config) (ports.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return redistore.New(client), nil
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// quotaTable converts configured per-package limits to the quota table,
// falling back to the standard allowances when none are configured.
func quotaTable(cfg *config.Config) quota.Table {
	if len(cfg.Quota.Limits) == 0 {
		return quota.DefaultTable()
	}
	table := make(quota.Table, len(cfg.Quota.Limits))
	for pkg, limit := range cfg.Quota.Limits {
		table[project.Package(pkg)] = limit
	}
	return table
}

// registerHealthCheckers wires the store and outbound clients into the
// readiness registry.
func registerHealthCheckers(injector *do.RootScope) {
	registry := do.MustInvoke[ports.HealthRegistry](injector)

	if checker, ok := do.MustInvoke[ports.Store](injector).(ports.HealthChecker); ok {
		registry.Register(checker)
	}
	registry.Register(do.MustInvoke[paymentClient](injector).Client)
	registry.Register(do.MustInvoke[notifyClient](injector).Client)
}
