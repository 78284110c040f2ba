// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

// SignatureHeader is the header carrying the payments provider webhook signature.
const SignatureHeader = "Stripe-Signature"

var (
	// ErrMissingSecret is returned when no webhook secret is configured.
	ErrMissingSecret = errors.New("missing webhook secret")
	// ErrMissingSignature is returned when the request carries no signature header.
	ErrMissingSignature = errors.New("missing stripe-signature header")
)

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret struct {
	secret    string
	tolerance time.Duration
}

// NewWebhookSecret creates a new WebhookSecret. A zero tolerance falls back to the provider default.
func NewWebhookSecret(secret string, tolerance time.Duration) *WebhookSecret {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &WebhookSecret{secret: secret, tolerance: tolerance}
}

// Configured reports whether a non-empty secret is present.
func (s *WebhookSecret) Configured() bool {
	return s != nil && s.secret != ""
}

// Signature returns the signature header value from lower-cased headers.
func Signature(headers map[string]string) string {
	return headers[strings.ToLower(SignatureHeader)]
}

// ValidateSignature verifies the signature over the exact raw body and returns the decoded event.
func (s *WebhookSecret) ValidateSignature(body []byte, headers map[string]string) (stripe.Event, error) {
	if !s.Configured() {
		return stripe.Event{}, ErrMissingSecret
	}
	signature := Signature(headers)
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(body, signature, s.secret, webhook.ConstructEventOptions{
		Tolerance:                s.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, errors.Wrap(err, "invalid webhook signature")
	}
	return event, nil
}
