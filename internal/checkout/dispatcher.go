package checkout

import (
	"context"
	"errors"

	"tourbook/internal/domain"
	"tourbook/internal/metrics"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

// Fallback banner messages when the server supplies nothing more specific.
const (
	FallbackDirectMessage  = "could not validate the information provided"
	FallbackGatewayMessage = "could not start payment"
)

var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Dispatcher drives the submission state machine
// (idle -> submitting -> success | failed) for one configured checkout path.
// At most one submission is in flight per draft; a second attempt while
// submitting is ignored rather than queued, and there is no auto-retry of a
// failed submission.
type Dispatcher struct {
	provider domain.CheckoutProvider
	drafts   domain.DraftRepository
	currency string
	logger   *zerolog.Logger
}

func NewDispatcher(provider domain.CheckoutProvider, drafts domain.DraftRepository, currency string, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		drafts:   drafts,
		currency: currency,
		logger:   logger,
	}
}

// Mode reports the active checkout mode.
func (d *Dispatcher) Mode() string {
	return d.provider.Mode()
}

// Submit runs one checkout attempt for the draft. The submitting flag is
// cleared on every path out of here, so a failure always re-enables the
// submit control.
func (d *Dispatcher) Submit(ctx context.Context, draft *models.BookingDraft) (*models.CheckoutResult, error) {
	if draft.Submission == models.SubmissionSubmitting {
		return nil, ErrSubmissionInFlight
	}

	draft.Submission = models.SubmissionSubmitting
	draft.FailureReason = ""
	if err := d.drafts.SaveDraft(ctx, draft); err != nil {
		draft.Submission = models.SubmissionIdle
		return nil, err
	}

	defer func() {
		// Whatever happened above, submitting must not survive the dispatch.
		if draft.Submission == models.SubmissionSubmitting {
			draft.Submission = models.SubmissionFailed
			if draft.FailureReason == "" {
				draft.FailureReason = d.fallbackMessage()
			}
		}
		if err := d.drafts.SaveDraft(ctx, draft); err != nil {
			d.logger.Error().Err(err).Str("draft_id", draft.ID).Msg("persist submission state")
		}
		metrics.IncCheckout(d.provider.Mode(), draft.Submission)
	}()

	req := d.buildRequest(draft)
	res, err := d.provider.Checkout(ctx, req)
	if err != nil {
		draft.Submission = models.SubmissionFailed
		draft.FailureReason = errorMessage(res, err, d.fallbackMessage())
		d.logger.Error().Err(err).Str("draft_id", draft.ID).Str("mode", d.provider.Mode()).Msg("checkout dispatch failed")
		return &models.CheckoutResult{Message: draft.FailureReason}, nil
	}

	switch d.provider.Mode() {
	case models.ModeGateway:
		if res.ClientSecret == "" {
			draft.Submission = models.SubmissionFailed
			draft.FailureReason = FallbackGatewayMessage
			return &models.CheckoutResult{Message: draft.FailureReason}, nil
		}
		draft.Submission = models.SubmissionSucceeded
		draft.ClientSecret = res.ClientSecret
	default:
		if res.BookingID == "" {
			draft.Submission = models.SubmissionFailed
			draft.FailureReason = res.Message
			if draft.FailureReason == "" {
				draft.FailureReason = FallbackDirectMessage
			}
			return &models.CheckoutResult{Message: draft.FailureReason}, nil
		}
		draft.Submission = models.SubmissionSucceeded
		draft.BookingID = res.BookingID
	}

	return res, nil
}

func (d *Dispatcher) buildRequest(draft *models.BookingDraft) *models.CheckoutRequest {
	req := &models.CheckoutRequest{
		ActivityID:   draft.Tour.ID,
		Date:         draft.Date,
		Time:         NormalizeTime(draft.Time),
		Participants: draft.Participants(),
		Currency:     d.currency,
		Customer:     draft.Customer,
		Notes:        draft.SpecialRequests,
		Adults:       draft.Adults,
		ChildAges:    draft.ChildAges,
	}
	if d.provider.Mode() != models.ModeGateway {
		// The gateway collects card and billing itself.
		req.Billing = draft.Billing
		req.Card = draft.Card
	}
	return req
}

func (d *Dispatcher) fallbackMessage() string {
	if d.provider.Mode() == models.ModeGateway {
		return FallbackGatewayMessage
	}
	return FallbackDirectMessage
}

// errorMessage picks the most specific available message: a server-supplied
// one, then the transport error, then the mode's generic fallback.
func errorMessage(res *models.CheckoutResult, err error, fallback string) string {
	if res != nil && res.Message != "" {
		return res.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
