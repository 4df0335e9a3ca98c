package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies serverfence instruments in the exported metrics.
const meterName = "serverfence"

// shutdownTimeout bounds diagnostics server shutdown.
const shutdownTimeout = 5 * time.Second

// Telemetry bundles a meter with the Prometheus handler that scrapes it.
// Each Telemetry owns an independent registry so repeated construction (one
// per long-lived server) cannot collide on collector registration.
type Telemetry struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// NewTelemetry wires an OTel meter provider to a fresh Prometheus registry.
func NewTelemetry() (*Telemetry, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Telemetry{
		meter:    provider.Meter(meterName),
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Meter returns the meter instruments should be created from.
func (t *Telemetry) Meter() metric.Meter {
	return t.meter
}

// Handler returns the /metrics scrape handler.
func (t *Telemetry) Handler() http.Handler {
	return t.handler
}

// Shutdown flushes and stops the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// DiagnosticsServer exposes /metrics and /healthz over HTTP for operational
// monitoring of long-lived serverfence processes (LSP, MCP).
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsServer starts an HTTP server at addr serving the telemetry
// scrape endpoint.
func NewDiagnosticsServer(addr string, telemetry *Telemetry) (*DiagnosticsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// Addr returns the bound listen address, useful when addr requested port 0.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (d *DiagnosticsServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return d.server.Shutdown(ctx)
}
