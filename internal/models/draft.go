package models

import "time"

// CustomerInfo is the contact block collected on step 3. Field names on the
// wire follow the direct-booking request shape.
type CustomerInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Country    string `json:"country"`
	Hotel      string `json:"hotel"`
	RoomNumber string `json:"roomNumber"`
}

// BillingAddress is collected on step 4. UseContactInfo derives street, city,
// state, country and phone from CustomerInfo plus a locale default.
type BillingAddress struct {
	Street         string `json:"street"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postalCode"`
	Country        string `json:"country"`
	Phone          string `json:"phone"`
	Birthday       string `json:"birthday"` // year-month-day
	UseContactInfo bool   `json:"useContactInfo"`
}

// CardInput lives only in the draft session store and is forwarded to the
// active checkout path. It is never written to the booking store.
type CardInput struct {
	CardNumber     string `json:"cardNumber"` // digits only
	ExpiryDate     string `json:"expiryDate"` // MM/YY
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

// BookingDraft is the mutable wizard state for one visitor session. It is
// created empty when the wizard opens for a tour, mutated field-by-field
// across steps 1-4 and discarded after a successful submission (or expires
// with its TTL when abandoned).
type BookingDraft struct {
	ID   string `json:"id"`
	Tour Tour   `json:"tour"`

	Date string `json:"date"` // YYYY-MM-DD, empty until selected
	Time string `json:"time"` // one of Tour.StartTimes, empty until selected

	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"childAges"`

	Customer CustomerInfo   `json:"customer"`
	Billing  BillingAddress `json:"billing"`
	Card     CardInput      `json:"card"`

	SpecialRequests string `json:"specialRequests"`
	AgreeToTerms    bool   `json:"agreeToTerms"`

	CurrentStep int `json:"currentStep"` // 1..4

	// Error state for the step the user is currently on. Advancing past a
	// step clears it; only one step's errors are ever visible.
	StepError   string            `json:"stepError,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`

	Submission    string `json:"submission"` // idle|submitting|succeeded|failed
	BookingID     string `json:"bookingId,omitempty"`
	ClientSecret  string `json:"clientSecret,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Participants returns the headcount submitted at checkout.
func (d *BookingDraft) Participants() int {
	return d.Adults + d.Children
}

// ClearStepErrors drops the error state attached to the current step.
func (d *BookingDraft) ClearStepErrors() {
	d.StepError = ""
	d.FieldErrors = nil
}
