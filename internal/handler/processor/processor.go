// Package processor provides the per-event-type handlers invoked for verified webhook deliveries.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/stripe/stripe-go/v81"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor handles one verified webhook event.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, event *stripe.Event) error
}

// Registry is the closed mapping from event type to its processor.
type Registry map[stripe.EventType]Processor

// Known returns every processor this package implements, keyed by the event type it handles.
func Known(opts ...Option) Registry {
	return Registry{
		stripe.EventTypePaymentIntentSucceeded:     NewPaymentSucceededProcessor(opts...),
		stripe.EventTypePaymentIntentPaymentFailed: NewPaymentFailedProcessor(opts...),
	}
}

// NewRegistry returns the known processors restricted to the enabled event types.
func NewRegistry(enabled []string, opts ...Option) Registry {
	registry := Registry{}
	for eventType, p := range Known(opts...) {
		if slices.Contains(enabled, string(eventType)) {
			registry[eventType] = p
		}
	}
	return registry
}

// Lookup returns the processor registered for eventType.
func (r Registry) Lookup(eventType stripe.EventType) (Processor, bool) {
	p, ok := r[eventType]
	return p, ok
}

// Dispatch runs the processor registered for the event type. handled is false when no processor is registered.
func (r Registry) Dispatch(ctx context.Context, event *stripe.Event) (handled bool, err error) {
	p, ok := r.Lookup(event.Type)
	if !ok {
		return false, nil
	}
	return true, p.Process(ctx, event)
}

// Types returns the registered event types in lexical order.
func (r Registry) Types() []string {
	types := make([]string, 0, len(r))
	for eventType := range r {
		types = append(types, string(eventType))
	}
	slices.Sort(types)
	return types
}

func decodeObject(event *stripe.Event, into any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return NewInternalError("event %s carries no data object", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, into); err != nil {
		return NewInternalError("failed to decode %s data object: %v", event.Type, err)
	}
	return nil
}

// WithLogger sets the logger of every processor it is applied to.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}

func defaultLogger() *slog.Logger {
	return helpers.NewNoopLogger()
}
