package runtime

import (
	"log/slog"
)

// Option is a functional option for configuring a Monitor.
type Option func(*Monitor) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) error {
		m.logger = logger
		return nil
	}
}

// WithoutMonitorAPI disables the local HTTP API. Used by in-process UIs that
// read the pipeline directly.
func WithoutMonitorAPI() Option {
	return func(m *Monitor) error {
		m.serveAPI = false
		return nil
	}
}
