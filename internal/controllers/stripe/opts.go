package stripe

import (
	"log/slog"

	"github.com/stripe/stripe-go/v81"
)

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithBackends overrides the provider backends, e.g. to point at a local API double.
func WithBackends(backends *stripe.Backends) Option {
	return func(c *Controller) {
		c.backends = backends
	}
}
