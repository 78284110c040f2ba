package models

import "fmt"

// ConnectAction selects one step of the payment account onboarding sequence.
type ConnectAction string

const (
	// ConnectActionAccount creates a provider account for a store.
	ConnectActionAccount ConnectAction = "account"
	// ConnectActionAccountLink creates an onboarding link for an existing account.
	ConnectActionAccountLink ConnectAction = "account_link"
)

// ParseConnectAction maps the raw action selector onto a known ConnectAction.
func ParseConnectAction(raw string) (ConnectAction, error) {
	switch a := ConnectAction(raw); a {
	case ConnectActionAccount, ConnectActionAccountLink:
		return a, nil
	case "":
		return "", fmt.Errorf("missing action")
	default:
		return "", fmt.Errorf("invalid action: %s", raw)
	}
}

// ConnectRequest is the JSON body accepted by the onboarding endpoint.
type ConnectRequest struct {
	Store    string `json:"store"`
	Account  string `json:"account,omitempty"`
	TestMode bool   `json:"test_mode,omitempty"`
	Type     string `json:"type,omitempty"`
	Country  string `json:"country,omitempty"`
}

// AccountRequest holds the validated inputs of ConnectActionAccount.
type AccountRequest struct {
	Store   string `validate:"required"`
	Email   string `validate:"required,email"`
	Type    string `validate:"required,oneof=standard express custom"`
	Country string `validate:"required,iso3166_1_alpha2"`
}

// AccountLinkRequest holds the validated inputs of ConnectActionAccountLink.
type AccountLinkRequest struct {
	Store   string `validate:"required"`
	Account string `validate:"required"`
}

// AccountResponse is returned by ConnectActionAccount.
type AccountResponse struct {
	Account string `json:"account"`
}

// AccountLinkResponse is returned by ConnectActionAccountLink.
type AccountLinkResponse struct {
	URL string `json:"url"`
}
