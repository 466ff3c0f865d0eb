// Package metrics exports ebisu engine and log-gamma cache counters to Prometheus.
package metrics

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(c *Collector) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithConstLabels adds constant labels to all metrics.
func WithConstLabels(labels map[string]string) Option {
	return func(c *Collector) {
		if labels != nil {
			c.constLabels = labels
		}
	}
}
