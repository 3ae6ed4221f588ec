package wizard

import "errors"

var (
	ErrDraftNotFound      = errors.New("draft not found")
	ErrTourNotFound       = errors.New("tour not found")
	ErrStepBlocked        = errors.New("step validation failed")
	ErrUnknownStartTime   = errors.New("start time is not offered for this tour")
	ErrPastDate           = errors.New("date is in the past")
	ErrInvalidDate        = errors.New("invalid date format")
	ErrChildIndex         = errors.New("child index out of range")
	ErrCannotSubmit       = errors.New("payment details are incomplete")
	ErrTermsNotAccepted   = errors.New("terms must be accepted before submission")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)
