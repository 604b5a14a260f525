package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig configures the provider's HTTP server (cmd/random-string serve).
type HTTPServerConfig struct {
	// ListenAddr serves /api/resource, /api/generate and the health endpoints.
	ListenAddr string

	// MetricsAddr serves the Prometheus /metrics endpoint with the custom
	// resource request counters. Empty disables the metrics listener.
	MetricsAddr string

	// EnablePprof mounts /debug on the API listener.
	EnablePprof bool

	Log *slog.Logger

	// DrainDuration is how long Shutdown reports not-ready before closing
	// listeners. In-flight CloudFormation events are short, so this mostly
	// covers load balancer health check intervals. Zero skips the wait.
	DrainDuration time.Duration

	// GracefulShutdownDuration bounds the wait for in-flight requests on each listener.
	GracefulShutdownDuration time.Duration

	// ReadTimeout and WriteTimeout apply to the API listener only. Events are
	// capped at 1MB, and generation is CPU-bound, so defaults stay small.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}
