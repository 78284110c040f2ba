// Package metrics holds the prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the webhook and connect collectors.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeUnhandled = "unhandled"
)

// ActionInvalid labels connect requests whose action selector is missing or unknown.
const ActionInvalid = "invalid"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	proxyUpstreamResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_proxy_upstream_responses_total",
			Help: "Upstream CMS responses relayed by the proxy, by status code",
		},
		[]string{"method", "status"},
	)

	proxyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_proxy_failures_total",
			Help: "Proxy requests that failed before a response could be relayed",
		},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_webhook_events_total",
			Help: "Webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	connectActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_connect_actions_total",
			Help: "Account onboarding actions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	connectPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_connect_persist_failures_total",
			Help: "Created accounts whose identifier could not be written back to the CMS store",
		},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records one served request. route should be the matched pattern, never the raw path.
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func RecordProxyUpstream(method string, status int) {
	proxyUpstreamResponses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func RecordProxyFailure() {
	proxyFailures.Inc()
}

func RecordWebhookEvent(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func RecordConnectAction(action, outcome string) {
	if action == "" {
		action = "unknown"
	}
	connectActions.WithLabelValues(action, outcome).Inc()
}

func RecordConnectPersistFailure() {
	connectPersistFailures.Inc()
}
