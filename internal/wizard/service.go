package wizard

import (
	"context"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/events"
	"tourbook/internal/metrics"
	"tourbook/internal/models"
	"tourbook/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Locale defaults applied by the use-contact-info billing derivation.
const (
	defaultLocaleCity    = "Phuket"
	defaultLocaleState   = "Phuket"
	defaultLocaleCountry = "Thailand"
)

const dateLayout = "2006-01-02"

// Dispatcher submits a draft through the active checkout path. It owns the
// submission state transitions and persists them on the draft.
type Dispatcher interface {
	Mode() string
	Submit(ctx context.Context, draft *models.BookingDraft) (*models.CheckoutResult, error)
}

// Service owns the booking drafts: it creates them from catalog snapshots,
// applies field mutations, gates step transitions and hands completed drafts
// to the checkout dispatcher.
type Service struct {
	drafts     domain.DraftRepository
	catalog    domain.TourCatalog
	dispatcher Dispatcher
	eventBus   domain.EventPublisher
	logger     *zerolog.Logger
}

func NewService(drafts domain.DraftRepository, catalog domain.TourCatalog, dispatcher Dispatcher, eventBus domain.EventPublisher, logger *zerolog.Logger) *Service {
	return &Service{
		drafts:     drafts,
		catalog:    catalog,
		dispatcher: dispatcher,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// StartDraft opens an empty draft for a tour. The catalog snapshot is taken
// once here and never refreshed for the life of the draft.
func (s *Service) StartDraft(ctx context.Context, tourID string) (*models.BookingDraft, error) {
	tour, err := s.catalog.GetTour(ctx, tourID)
	if err != nil {
		s.logger.Error().Err(err).Str("tour_id", tourID).Msg("tour lookup failed")
		return nil, ErrTourNotFound
	}

	now := time.Now()
	draft := &models.BookingDraft{
		ID:          uuid.NewString(),
		Tour:        *tour,
		Adults:      1,
		ChildAges:   []int{},
		CurrentStep: models.StepDetails,
		Submission:  models.SubmissionIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.publish(events.EventDraftStarted, events.DraftEventPayload{
		DraftID: draft.ID,
		TourID:  tour.ID,
		Step:    draft.CurrentStep,
	})

	return draft, nil
}

// GetDraft loads a draft by id.
func (s *Service) GetDraft(ctx context.Context, id string) (*models.BookingDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// SetSchedule writes the date and start-time selections of step 1.
func (s *Service) SetSchedule(ctx context.Context, id, date, startTime string) (*models.BookingDraft, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	if date != "" {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if parsed.Before(today) {
			return nil, ErrPastDate
		}
	}
	if startTime != "" && !draft.Tour.HasStartTime(startTime) {
		return nil, ErrUnknownStartTime
	}

	draft.Date = date
	draft.Time = startTime
	return draft, s.save(ctx, draft)
}

// AddAdult increments the adult count.
func (s *Service) AddAdult(ctx context.Context, id string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.Adults++
	})
}

// RemoveAdult decrements the adult count with a floor of one.
func (s *Service) RemoveAdult(ctx context.Context, id string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		if d.Adults > 1 {
			d.Adults--
		}
	})
}

// AddChild appends a child at the default age, keeping the counter in
// lockstep with the age list. This lockstep is what preserves the step-2
// invariant.
func (s *Service) AddChild(ctx context.Context, id string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.ChildAges = append(d.ChildAges, models.DefaultChildAge)
		d.Children = len(d.ChildAges)
	})
}

// RemoveChild pops the last child.
func (s *Service) RemoveChild(ctx context.Context, id string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		if len(d.ChildAges) > 0 {
			d.ChildAges = d.ChildAges[:len(d.ChildAges)-1]
		}
		d.Children = len(d.ChildAges)
	})
}

// UpdateChildAge sets the age of one child by position.
func (s *Service) UpdateChildAge(ctx context.Context, id string, index, age int) (*models.BookingDraft, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(draft.ChildAges) {
		return nil, ErrChildIndex
	}
	draft.ChildAges[index] = age
	return draft, s.save(ctx, draft)
}

// SetContact writes the customer info of step 3.
func (s *Service) SetContact(ctx context.Context, id string, customer models.CustomerInfo) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.Customer = customer
	})
}

// SetBilling writes the billing address of step 4. When UseContactInfo is
// set, street, city, state, country and phone are derived from the contact
// block and the locale defaults; postal code and birthday stay manual.
func (s *Service) SetBilling(ctx context.Context, id string, billing models.BillingAddress) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		if billing.UseContactInfo {
			street := d.Customer.Hotel
			if d.Customer.RoomNumber != "" {
				street += " Room " + d.Customer.RoomNumber
			}
			billing.Street = street
			billing.City = defaultLocaleCity
			billing.State = defaultLocaleState
			billing.Country = d.Customer.Country
			if billing.Country == "" {
				billing.Country = defaultLocaleCountry
			}
			billing.Phone = d.Customer.Phone
		}
		d.Billing = billing
	})
}

// SetCard writes the transient card input of step 4.
func (s *Service) SetCard(ctx context.Context, id string, card models.CardInput) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.Card = card
	})
}

// SetSpecialRequests writes the free-text notes.
func (s *Service) SetSpecialRequests(ctx context.Context, id, notes string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.SpecialRequests = notes
	})
}

// SetAgreement flips the terms-of-service flag.
func (s *Service) SetAgreement(ctx context.Context, id string, agree bool) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		d.AgreeToTerms = agree
	})
}

// Advance runs the current step's gate. A failed gate attaches the error
// state to the draft and returns ErrStepBlocked; a passed gate clears it and
// moves the wizard forward.
func (s *Service) Advance(ctx context.Context, id string) (*models.BookingDraft, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.CurrentStep >= models.StepPayment {
		return draft, nil // step 4 is terminal; its gate is CanSubmit
	}

	res := ValidateStep(draft)
	if !res.OK {
		draft.StepError = res.Message
		draft.FieldErrors = res.FieldErrors
		metrics.IncStepAdvance(draft.CurrentStep, "blocked")
		if err := s.save(ctx, draft); err != nil {
			return nil, err
		}
		return draft, ErrStepBlocked
	}

	draft.ClearStepErrors()
	draft.CurrentStep++
	metrics.IncStepAdvance(draft.CurrentStep-1, "passed")
	return draft, s.save(ctx, draft)
}

// Back moves one step backward, clearing the current step's error state.
func (s *Service) Back(ctx context.Context, id string) (*models.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *models.BookingDraft) {
		if d.CurrentStep > models.StepDetails {
			d.CurrentStep--
		}
		d.ClearStepErrors()
	})
}

// Quote prices the draft's current party against its tour snapshot.
func (s *Service) Quote(ctx context.Context, id string) (*pricing.Quote, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	q := pricing.Calculate(draft.Adults, draft.ChildAges, draft.Tour.Price)
	return &q, nil
}

// Submit hands the draft to the checkout dispatcher. It is accepted only
// from step 4 with a complete payment form, accepted terms and no submission
// already in flight; a concurrent submit is ignored, not queued.
func (s *Service) Submit(ctx context.Context, id string) (*models.BookingDraft, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	if draft.Submission == models.SubmissionSubmitting {
		return draft, ErrSubmissionInFlight
	}
	if draft.CurrentStep != models.StepPayment {
		return draft, ErrStepBlocked
	}
	if !CanSubmit(draft) {
		return draft, ErrCannotSubmit
	}
	if !draft.AgreeToTerms {
		return draft, ErrTermsNotAccepted
	}

	result, err := s.dispatcher.Submit(ctx, draft)
	if err != nil {
		return draft, err
	}

	if draft.Submission == models.SubmissionSucceeded {
		s.publish(events.EventCheckoutSucceeded, events.CheckoutEventPayload{
			DraftID:   draft.ID,
			TourID:    draft.Tour.ID,
			Mode:      s.dispatcher.Mode(),
			BookingID: result.BookingID,
		})
		// The draft's job is done; the persisted booking id drives the
		// receipt view from here on.
		if err := s.drafts.DeleteDraft(ctx, draft.ID); err != nil {
			s.logger.Warn().Err(err).Str("draft_id", draft.ID).Msg("delete draft after checkout")
		}
	} else {
		s.publish(events.EventCheckoutFailed, events.CheckoutEventPayload{
			DraftID: draft.ID,
			TourID:  draft.Tour.ID,
			Mode:    s.dispatcher.Mode(),
			Reason:  draft.FailureReason,
		})
	}

	return draft, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*models.BookingDraft)) (*models.BookingDraft, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(draft)
	return draft, s.save(ctx, draft)
}

func (s *Service) save(ctx context.Context, draft *models.BookingDraft) error {
	draft.UpdatedAt = time.Now()
	return s.drafts.SaveDraft(ctx, draft)
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
