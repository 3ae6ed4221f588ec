package models

// CheckoutRequest is the body produced by the dispatcher for the active
// checkout path. Direct mode sends the full shape including card and billing;
// gateway mode omits both (the gateway collects them itself).
type CheckoutRequest struct {
	ActivityID   string       `json:"activityId"`
	Date         string       `json:"date"`
	Time         string       `json:"time"` // normalized 24h HH:mm
	Participants int          `json:"participants"`
	Currency     string       `json:"currency"`
	Customer     CustomerInfo `json:"customer"`
	Notes        string       `json:"notes,omitempty"`

	// Direct mode only.
	Billing BillingAddress `json:"billingAddress,omitzero"`
	Card    CardInput      `json:"card,omitzero"`

	// ChildAges lets the direct endpoint recompute the tiered total; when
	// absent every participant is priced as an adult.
	ChildAges []int `json:"childAges,omitempty"`
	Adults    int   `json:"adults,omitempty"`
}

// CheckoutResult is the interpreted response of a checkout path.
type CheckoutResult struct {
	BookingID    string `json:"bookingId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Message      string `json:"message,omitempty"`
}
