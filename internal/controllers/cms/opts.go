package cms

import (
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithAPIPrefix sets the path prefix of the CMS REST API.
func WithAPIPrefix(prefix string) Option {
	return func(c *Controller) {
		c.apiPrefix = prefix
	}
}

// WithHTTPClient sets the HTTP client used for every upstream call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.httpClient = client
	}
}

// WithTokenSource sets the source of the admin bearer token used for privileged writes.
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(c *Controller) {
		c.tokenSource = src
	}
}
