// Package metrics exposes Prometheus collectors and a small HTTP server for them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled lifecycle events by request type and outcome.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "custom_resource_requests_total",
		Help: "Custom resource events handled, by request type and status",
	}, []string{"request_type", "status"})

	// GeneratedBytesTotal counts random bytes handed out.
	GeneratedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generated_bytes_total",
		Help: "Random bytes generated across all requests",
	})

	// HandleDuration tracks the time spent in a single lifecycle event.
	HandleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custom_resource_handle_seconds",
		Help:    "Time spent handling a custom resource event",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"request_type"})
)

// MetricsServer serves the registry on /metrics.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates a registry with the package collectors plus Go and process
// collectors. namespace is applied as a constant "app" label.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	reg := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"app": namespace}, reg)

	for _, c := range []prometheus.Collector{RequestsTotal, GeneratedBytesTotal, HandleDuration} {
		if err := wrapped.Register(c); err != nil {
			return nil, err
		}
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		registry: reg,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler returns the /metrics handler, mainly for tests.
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
