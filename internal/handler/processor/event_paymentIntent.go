package processor

import (
	"context"
	"log/slog"

	"github.com/stripe/stripe-go/v81"
)

type paymentSucceededProcessor struct {
	logger *slog.Logger
}

// NewPaymentSucceededProcessor returns the processor for payment_intent.succeeded events.
func NewPaymentSucceededProcessor(opts ...Option) Processor {
	_inst := &paymentSucceededProcessor{logger: defaultLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *paymentSucceededProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:paymentSucceeded")
}

func (p *paymentSucceededProcessor) Process(_ context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := decodeObject(event, &intent); err != nil {
		return err
	}
	p.logger.Info("payment succeeded",
		slog.String("event", event.ID),
		slog.String("paymentIntent", intent.ID),
		slog.Int64("amount", intent.Amount),
		slog.String("currency", string(intent.Currency)),
		slog.String("status", string(intent.Status)))
	return nil
}

type paymentFailedProcessor struct {
	logger *slog.Logger
}

// NewPaymentFailedProcessor returns the processor for payment_intent.payment_failed events.
func NewPaymentFailedProcessor(opts ...Option) Processor {
	_inst := &paymentFailedProcessor{logger: defaultLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *paymentFailedProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:paymentFailed")
}

func (p *paymentFailedProcessor) Process(_ context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := decodeObject(event, &intent); err != nil {
		return err
	}
	attrs := []any{slog.String("event", event.ID), slog.String("paymentIntent", intent.ID)}
	if intent.LastPaymentError != nil {
		attrs = append(attrs,
			slog.String("code", string(intent.LastPaymentError.Code)),
			slog.String("reason", intent.LastPaymentError.Msg))
	}
	p.logger.Warn("payment failed", attrs...)
	return nil
}
