package models

// User is the subset of the CMS user record needed to identify a caller.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
}

// StoreUpdate is the CMS envelope for a partial store update.
type StoreUpdate struct {
	Data map[string]any `json:"data"`
}

// StripeCustomerIDField is the store attribute holding the payment account reference.
const StripeCustomerIDField = "STRIPE_CUSTOMER_ID"
