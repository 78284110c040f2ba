package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/markket/storefront-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const (
	testSecret  = "whsec_test"
	testPayload = `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`
)

func signedHeader(payload, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

func TestWebhookSecret_ValidateSignature(t *testing.T) {
	sigKey := strings.ToLower(validation.SignatureHeader)
	testCases := []struct {
		Name        string
		Secret      string
		Headers     map[string]string
		Body        string
		ExpectError error
		ExpectAny   bool
	}{
		{
			Name:        "missing_secret",
			Headers:     map[string]string{sigKey: signedHeader(testPayload, testSecret, time.Now())},
			Body:        testPayload,
			ExpectError: validation.ErrMissingSecret,
		},
		{
			Name:        "missing_signature",
			Secret:      testSecret,
			Headers:     map[string]string{},
			Body:        testPayload,
			ExpectError: validation.ErrMissingSignature,
		},
		{
			Name:      "invalid_signature_value",
			Secret:    testSecret,
			Headers:   map[string]string{sigKey: "invalid"},
			Body:      testPayload,
			ExpectAny: true,
		},
		{
			Name:      "wrong_secret",
			Secret:    testSecret,
			Headers:   map[string]string{sigKey: signedHeader(testPayload, "whsec_other", time.Now())},
			Body:      testPayload,
			ExpectAny: true,
		},
		{
			Name:      "tampered_body",
			Secret:    testSecret,
			Headers:   map[string]string{sigKey: signedHeader(testPayload, testSecret, time.Now())},
			Body:      strings.Replace(testPayload, "pi_1", "pi_2", 1),
			ExpectAny: true,
		},
		{
			Name:      "expired_timestamp",
			Secret:    testSecret,
			Headers:   map[string]string{sigKey: signedHeader(testPayload, testSecret, time.Now().Add(-time.Hour))},
			Body:      testPayload,
			ExpectAny: true,
		},
		{
			Name:    "valid_signature",
			Secret:  testSecret,
			Headers: map[string]string{sigKey: signedHeader(testPayload, testSecret, time.Now())},
			Body:    testPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_inst := validation.NewWebhookSecret(tc.Secret, 5*time.Minute)
			event, err := _inst.ValidateSignature([]byte(tc.Body), tc.Headers)
			switch {
			case tc.ExpectError != nil:
				assert.ErrorIs(t, err, tc.ExpectError)
			case tc.ExpectAny:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "evt_1", event.ID)
				assert.Equal(t, stripe.EventTypePaymentIntentSucceeded, event.Type)
			}
		})
	}
}

func TestWebhookSecret_Configured(t *testing.T) {
	var nilSecret *validation.WebhookSecret
	assert.False(t, nilSecret.Configured())
	assert.False(t, validation.NewWebhookSecret("", 0).Configured())
	assert.True(t, validation.NewWebhookSecret(testSecret, 0).Configured())
}
