package handler

import (
	"fmt"
	"strings"
)

// Messages returned in the {"error": ...} envelope.
const (
	MsgMethodNotAllowed      = "Method not allowed"
	MsgFetchFailed           = "Failed to fetch data"
	MsgMissingSignature      = "Missing stripe-signature or webhook secret"
	MsgSignatureFailed       = "Webhook signature verification failed"
	MsgWebhookFailed         = "Webhook handler failed"
	MsgInvalidBody           = "Invalid request body"
	MsgInvalidAction         = "Invalid action"
	MsgProviderUninitialized = "Stripe client not initialized"
)

// MissingDependencyError is returned by NewHandler when a required collaborator was not provided.
type MissingDependencyError struct {
	Names []string
}

func (m *MissingDependencyError) Error() string {
	return fmt.Sprintf("handler is missing required dependencies: %s", strings.Join(m.Names, ", "))
}
