// Package runtime routes HTTP requests to the handlers and adapts AWS Lambda payloads to the same router.
package runtime

import (
	"log/slog"
	"net/http"

	"github.com/markket/storefront-api/internal/handler"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/metrics"
	"github.com/markket/storefront-api/internal/middleware"
)

// Option is a functional option used to configure a Runtime instance.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithIdentity sets the resolver used to authenticate onboarding requests.
func WithIdentity(resolver middleware.UserResolver) Option {
	return func(r *Runtime) {
		r.identity = resolver
	}
}

// WithLambdaPayloadType sets the payload type accepted by Lambda.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// WithMetrics exposes the prometheus collectors on path.
func WithMetrics(path string) Option {
	return func(r *Runtime) {
		r.metricsPath = path
	}
}

// Runtime is the single entrypoint shared by the service and Lambda modes.
type Runtime struct {
	handler     *handler.Handler
	logger      *slog.Logger
	identity    middleware.UserResolver
	payloadType string
	metricsPath string

	root http.Handler
}

// NewRuntime creates a new runtime instance
func NewRuntime(h *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{handler: h, payloadType: PayloadTypeAPIGatewayV2}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.root = middleware.Chain(_inst.routes(),
		middleware.Recovery(_inst.logger),
		middleware.RequestID,
		middleware.Metrics,
		middleware.Logging(_inst.logger.With("component", "access-log")),
	)
	return _inst
}

func (r *Runtime) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(handler.ProxyPrefix, r.handler.Proxy)
	mux.HandleFunc("/api/stripe", r.handler.Webhook)

	// Only POST requires a caller identity; other methods reach the handler and are rejected there.
	mux.HandleFunc("/api/stripe/connect", r.handler.Connect)
	if r.identity != nil {
		mux.Handle("POST /api/stripe/connect",
			middleware.Identity(r.identity, r.logger.With("component", "identity"))(http.HandlerFunc(r.handler.Connect)))
	} else {
		r.logger.Warn("no identity resolver configured, account creation requests will be rejected")
	}

	mux.HandleFunc("GET /api/health", r.handler.Health)
	if r.metricsPath != "" {
		mux.Handle("GET "+r.metricsPath, metrics.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		helpers.RespondError(w, http.StatusNotFound, "Not found")
	})
	return mux
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.root.ServeHTTP(w, req)
}
