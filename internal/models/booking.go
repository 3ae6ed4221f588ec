package models

import "time"

// Payment is one payment record attached to a persisted booking.
type Payment struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"bookingId"`
	Provider  string    `json:"provider"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Booking is the persisted record produced by a successful direct checkout.
// Card data is never part of it; the direct path keeps only a masked echo
// for the educational debug panel.
type Booking struct {
	ID           int64          `json:"id"`
	TourID       string         `json:"tourId"`
	TourName     string         `json:"tourName"`
	Date         string         `json:"date"`
	Time         string         `json:"time"` // 24h HH:mm
	Participants int            `json:"participants"`
	TotalPrice   float64        `json:"totalPrice"`
	Currency     string         `json:"currency"`
	Customer     CustomerInfo   `json:"customer"`
	Billing      BillingAddress `json:"billingAddress"`
	Notes        string         `json:"notes,omitempty"`
	Status       string         `json:"status"`

	CardLast4      string `json:"-"`
	CardholderName string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Payments []Payment `json:"payments"`
}

// SensitiveDetails is the debug sub-object of a receipt. It is attached only
// in direct mode and must never appear in gateway mode.
type SensitiveDetails struct {
	CardNumberMasked string         `json:"cardNumberMasked"`
	CardholderName   string         `json:"cardholderName"`
	BillingAddress   BillingAddress `json:"billingAddress"`
}

// Receipt is the read-model served for a booking id.
type Receipt struct {
	Booking   Booking           `json:"booking"`
	Paid      bool              `json:"paid"`
	Deposit   float64           `json:"deposit"`
	Sensitive *SensitiveDetails `json:"sensitive,omitempty"`
}
