package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aisd/internal/controllers"
	"aisd/internal/ingest"
	"aisd/internal/maintenance/interfaces"
	"aisd/internal/providers"
	"aisd/internal/storage"
	"aisd/internal/structures"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	ingester  ingest.IngesterInterface
	scheduler interfaces.SchedulerInterface
	store     storage.Store
	publisher providers.PublisherInterface
}

func NewApp(
	healthController *controllers.HealthController,
	router providers.RouterProviderInterface,
	ingester ingest.IngesterInterface,
	scheduler interfaces.SchedulerInterface,
	store storage.Store,
	publisher providers.PublisherInterface,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", providers.MetricsMiddleware(metrics, apiMux))

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      providers.RequestIDMiddleware(mux),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		ingester:  ingester,
		scheduler: scheduler,
		store:     store,
		publisher: publisher,
	}
}

// Run serves HTTP and ingests the stream until SIGINT/SIGTERM, then shuts
// both down and closes the store.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)

	a.scheduler.Init()
	_ = a.scheduler.RefreshStats()

	ingestErr := make(chan error, 1)
	go func() {
		ingestErr <- a.ingester.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case err := <-ingestErr:
		ingestErr <- err
		if err != nil {
			runErr = fmt.Errorf("ingestion error: %w", err)
		}
	}
	stop()

	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.WebServer.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	<-ingestErr
	a.publisher.Close()
	if err := a.store.Close(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("close store: %w", err))
	}

	if runErr == nil {
		a.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	return runErr
}
