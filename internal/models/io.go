// Package models provides the core data structures exchanged with callers and upstream collaborators.
package models

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       any
	Headers    map[string]string
	StatusCode int
}

// ErrorBody is the JSON envelope returned for every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// WebhookAck is returned once a webhook delivery passed signature verification.
type WebhookAck struct {
	Received bool `json:"received"`
}
