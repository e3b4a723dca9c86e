package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "krpsim"
	subsystem = "optimizer"
)

// Registry is the global Prometheus registry for all metrics. It stays nil
// until InitRegistry is called, letting callers run with metrics disabled.
var Registry *prometheus.Registry

// InitRegistry initializes the Prometheus registry. Call once at startup if
// metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry, or nil if disabled.
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	return Registry != nil
}
