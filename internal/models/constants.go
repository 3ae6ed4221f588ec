package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
)

// Wizard steps. The step index is the single driver of which field
// group is editable.
const (
	StepDetails      = 1
	StepParticipants = 2
	StepContact      = 3
	StepPayment      = 4
)

// Submission states of a draft's checkout attempt.
const (
	SubmissionIdle       = "idle"
	SubmissionSubmitting = "submitting"
	SubmissionSucceeded  = "succeeded"
	SubmissionFailed     = "failed"
)

// Checkout modes. Selected once at process start, never per request.
const (
	ModeDirect  = "direct"
	ModeGateway = "gateway"
)

const (
	// ProviderEducational marks payments written by the direct checkout path.
	ProviderEducational = "educational"

	// DefaultChildAge is pushed onto the age list when a child is added.
	DefaultChildAge = 5

	// DefaultDraftTTL время жизни черновика в Redis (seconds).
	DefaultDraftTTL = 24 * 60 * 60

	// DefaultExportRangeMonthsBefore / After bound the default export window.
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2
)
