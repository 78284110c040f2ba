package handler

import (
	"log/slog"
	"time"

	"github.com/markket/storefront-api/internal/handler/processor"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithForwarder sets the CMS client used by the proxy.
func WithForwarder(f Forwarder) Option {
	return func(h *Handler) {
		h.forwarder = f
	}
}

// WithStoreUpdater sets the CMS client used to persist onboarding results.
func WithStoreUpdater(s StoreUpdater) Option {
	return func(h *Handler) {
		h.stores = s
	}
}

// WithProviders sets the source of payments provider clients.
func WithProviders(p ProviderSource) Option {
	return func(h *Handler) {
		h.providers = p
	}
}

// WithWebhookSecret sets the source of the webhook shared secret and the accepted signature age.
func WithWebhookSecret(s WebhookSecretSource, tolerance time.Duration) Option {
	return func(h *Handler) {
		h.secrets = s
		h.tolerance = tolerance
	}
}

// WithProcessors restricts webhook dispatch to the given registry.
func WithProcessors(r processor.Registry) Option {
	return func(h *Handler) {
		h.processors = r
	}
}

// WithConnectDefaults overrides the onboarding defaults. Empty fields keep their built-in value.
func WithConnectDefaults(d ConnectDefaults) Option {
	return func(h *Handler) {
		h.connect = d
	}
}
