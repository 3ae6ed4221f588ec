package wizard

import (
	"regexp"
	"strings"

	"tourbook/internal/models"
)

// Step-blocking messages shown when the user tries to advance.
const (
	MsgSelectDate        = "Please select a date"
	MsgSelectTime        = "Please select a start time"
	MsgAdultsRequired    = "At least one adult is required"
	MsgChildrenMismatch  = "Please set an age for every child"
	MsgContactIncomplete = "Please correct the highlighted fields"
)

// Per-field messages for the contact step.
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Please enter a valid email address"
	MsgPhoneRequired     = "Phone is required"
	MsgPhoneTooShort     = "Please enter a valid phone number"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// StepResult is the outcome of a step gate check.
type StepResult struct {
	OK          bool
	Message     string
	FieldErrors map[string]string
}

func ok() StepResult { return StepResult{OK: true} }

func blocked(msg string) StepResult { return StepResult{Message: msg} }

// ValidateStep gates the transition out of the draft's current step. It is
// invoked only when the user attempts to advance, never on every edit.
// Step 4 has no forward step; its submit gate is CanSubmit.
func ValidateStep(d *models.BookingDraft) StepResult {
	switch d.CurrentStep {
	case models.StepDetails:
		return ValidateDetails(d)
	case models.StepParticipants:
		return ValidateParticipants(d)
	case models.StepContact:
		return ValidateContact(d)
	default:
		return ok()
	}
}

// ValidateDetails checks the schedule selections of step 1.
func ValidateDetails(d *models.BookingDraft) StepResult {
	if d.Date == "" {
		return blocked(MsgSelectDate)
	}
	if d.Time == "" {
		return blocked(MsgSelectTime)
	}
	return ok()
}

// ValidateParticipants checks the party composition of step 2. The
// children/age-list mismatch should be unreachable through the provided
// operations but is guarded defensively; it blocks with a message rather
// than crashing the flow.
func ValidateParticipants(d *models.BookingDraft) StepResult {
	if d.Adults < 1 {
		return blocked(MsgAdultsRequired)
	}
	if d.Children != len(d.ChildAges) {
		return blocked(MsgChildrenMismatch)
	}
	return ok()
}

// ValidateContact checks the contact form of step 3 and returns per-field
// messages alongside the generic step-blocking message.
func ValidateContact(d *models.BookingDraft) StepResult {
	fields := make(map[string]string)

	if strings.TrimSpace(d.Customer.FirstName) == "" {
		fields["firstName"] = MsgFirstNameRequired
	}
	if strings.TrimSpace(d.Customer.LastName) == "" {
		fields["lastName"] = MsgLastNameRequired
	}

	email := strings.TrimSpace(d.Customer.Email)
	if email == "" {
		fields["email"] = MsgEmailRequired
	} else if !emailRe.MatchString(email) {
		fields["email"] = MsgEmailInvalid
	}

	phone := strings.TrimSpace(d.Customer.Phone)
	if phone == "" {
		fields["phone"] = MsgPhoneRequired
	} else if len(nonDigitRe.ReplaceAllString(phone, "")) < 7 {
		fields["phone"] = MsgPhoneTooShort
	}

	if len(fields) > 0 {
		return StepResult{Message: MsgContactIncomplete, FieldErrors: fields}
	}
	return ok()
}

// CanSubmit is the continuously evaluated submit gate of step 4. It is a
// stateless predicate over the draft, never a second piece of mutable state.
// AgreeToTerms is checked independently as a hard gate on submission.
func CanSubmit(d *models.BookingDraft) bool {
	if d.Card.CardNumber == "" || d.Card.ExpiryDate == "" || d.Card.CVV == "" || d.Card.CardholderName == "" {
		return false
	}
	return billingComplete(d)
}

func billingComplete(d *models.BookingDraft) bool {
	b := d.Billing
	if b.City == "" || b.State == "" || b.PostalCode == "" || b.Country == "" || b.Phone == "" || b.Birthday == "" {
		return false
	}
	// Street may come from the contact-info derivation instead.
	return b.Street != "" || b.UseContactInfo
}
