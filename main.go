package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	appinventory "github.com/marketplace/metronome/internal/application/inventory"
	"github.com/marketplace/metronome/internal/infrastructure/aria"
	"github.com/marketplace/metronome/internal/infrastructure/audit"
	"github.com/marketplace/metronome/internal/infrastructure/bus"
	httptransport "github.com/marketplace/metronome/internal/infrastructure/http"
	"github.com/marketplace/metronome/internal/infrastructure/id"
	"github.com/marketplace/metronome/internal/infrastructure/memory"
	"github.com/marketplace/metronome/internal/infrastructure/mockaria"
	"github.com/marketplace/metronome/internal/pkg/logging"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "metronome")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("ADDR", ":8080")
	ariaBase := getenvDefault("ARIA_BASE_URL", "http://localhost:8080/mock-aria")
	ariaTimeout := getenvDuration("ARIA_TIMEOUT", 5*time.Second)

	baseLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	otel.SetTextMapPropagator(propagation.TraceContext{})

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	inventoryEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_events_total",
			Help: "Count of inventory events dispatched on the in-process bus.",
		},
		[]string{"event"},
	)
	prometheus.MustRegister(httpRequests, httpDurations, inventoryEvents)

	eventBus := bus.New(baseLogger)
	eventBus.Start(context.Background())
	defer eventBus.Stop(context.Background())

	auditWorker := audit.New(eventBus, baseLogger, inventoryEvents)
	auditWorker.Start()

	productRepo := memory.NewProductRepository()
	identityGate := aria.NewClient(ariaBase, ariaTimeout)
	idGenerator := id.NewUUIDGenerator()

	inventoryService := appinventory.NewService(productRepo, identityGate, idGenerator, eventBus)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	httptransport.NewHandler(inventoryService).Register(mux)
	mockaria.NewHandler().Register(mux)

	server := &http.Server{
		Addr:    addr,
		Handler: httptransport.Observability(baseLogger, httpRequests, httpDurations)(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
