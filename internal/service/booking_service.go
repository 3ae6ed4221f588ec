package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tourbook/internal/checkout"
	"tourbook/internal/domain"
	"tourbook/internal/events"
	"tourbook/internal/models"
	"tourbook/internal/pricing"
)

var (
	ErrTourNotFound   = errors.New("tour not found")
	ErrInvalidBooking = errors.New("booking request is invalid")
)

// BookingService is the direct-booking write path and the receipt read path.
// The gateway path never goes through it; gateway bookings live on the
// payment provider's side.
type BookingService struct {
	store    domain.BookingStore
	catalog  domain.TourCatalog
	eventBus domain.EventPublisher
	mode     string
	logger   *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, catalog domain.TourCatalog, eventBus domain.EventPublisher, mode string, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		catalog:  catalog,
		eventBus: eventBus,
		mode:     mode,
		logger:   logger,
	}
}

// CreateDirectBooking validates a checkout request, reprices it against the
// catalog and persists the booking together with its deposit payment. The
// client-submitted total is never trusted.
func (s *BookingService) CreateDirectBooking(ctx context.Context, req *models.CheckoutRequest) (*models.Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tour, err := s.catalog.GetTour(ctx, req.ActivityID)
	if err != nil {
		s.logger.Error().Err(err).Str("activity_id", req.ActivityID).Msg("tour lookup failed")
		return nil, ErrTourNotFound
	}
	if req.Time != "" && !offersStartTime(tour, req.Time) {
		return nil, fmt.Errorf("%w: start time %q is not offered", ErrInvalidBooking, req.Time)
	}

	quote := repriceRequest(req, tour.Price)

	now := time.Now()
	booking := &models.Booking{
		TourID:         tour.ID,
		TourName:       tour.Name,
		Date:           req.Date,
		Time:           req.Time,
		Participants:   req.Participants,
		TotalPrice:     quote.Total,
		Currency:       req.Currency,
		Customer:       req.Customer,
		Billing:        req.Billing,
		Notes:          req.Notes,
		Status:         models.StatusConfirmed,
		CardLast4:      cardLast4(req.Card.CardNumber),
		CardholderName: req.Card.CardholderName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		BookingID: booking.ID,
		Provider:  models.ProviderEducational,
		Amount:    quote.Deposit,
		Currency:  req.Currency,
		Status:    models.PaymentStatusSucceeded,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	booking.Payments = []models.Payment{*payment}

	s.publishBookingCreated(booking)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("tour_id", booking.TourID).
		Float64("total", booking.TotalPrice).
		Msg("direct booking created")

	return booking, nil
}

// GetReceipt builds the read-model for a booking. The sensitive debug block
// is attached only when the service runs in direct mode.
func (s *BookingService) GetReceipt(ctx context.Context, id int64) (*models.Receipt, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt := &models.Receipt{
		Booking: *booking,
		Paid:    anySettled(booking.Payments),
		Deposit: depositOf(booking),
	}

	if s.mode == models.ModeDirect && booking.CardLast4 != "" {
		receipt.Sensitive = &models.SensitiveDetails{
			CardNumberMasked: "**** **** **** " + booking.CardLast4,
			CardholderName:   booking.CardholderName,
			BillingAddress:   booking.Billing,
		}
	}

	return receipt, nil
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	return s.store.GetBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) publishBookingCreated(booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:    booking.ID,
		TourID:       booking.TourID,
		TourName:     booking.TourName,
		Date:         booking.Date,
		Time:         booking.Time,
		Participants: booking.Participants,
		TotalPrice:   booking.TotalPrice,
		Currency:     booking.Currency,
		Status:       booking.Status,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish booking event")
	}
}

// offersStartTime matches the requested time against the tour's start times
// in normalized 24h form. Checkout submits normalized times while catalogs
// may list 12-hour strings, so a raw string match is not enough.
func offersStartTime(tour *models.Tour, t string) bool {
	if tour.HasStartTime(t) {
		return true
	}
	norm := checkout.NormalizeTime(t)
	if norm == "" {
		return false
	}
	for _, st := range tour.StartTimes {
		if checkout.NormalizeTime(st) == norm {
			return true
		}
	}
	return false
}

func validateRequest(req *models.CheckoutRequest) error {
	switch {
	case req.ActivityID == "":
		return fmt.Errorf("%w: activityId is required", ErrInvalidBooking)
	case req.Date == "":
		return fmt.Errorf("%w: date is required", ErrInvalidBooking)
	case req.Participants < 1:
		return fmt.Errorf("%w: at least one participant is required", ErrInvalidBooking)
	case req.Customer.FirstName == "" || req.Customer.LastName == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidBooking)
	case req.Customer.Email == "":
		return fmt.Errorf("%w: customer email is required", ErrInvalidBooking)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidBooking)
	}
	return nil
}

// repriceRequest recomputes the tiered total server-side. When the request
// carries no adult/child breakdown, every participant is priced as an adult.
func repriceRequest(req *models.CheckoutRequest, basePrice float64) pricing.Quote {
	adults := req.Adults
	childAges := req.ChildAges
	if adults+len(childAges) != req.Participants {
		adults = req.Participants
		childAges = nil
	}
	return pricing.Calculate(adults, childAges, basePrice)
}

func anySettled(payments []models.Payment) bool {
	for _, p := range payments {
		if p.Status == models.PaymentStatusSucceeded || p.Status == models.PaymentStatusPaid {
			return true
		}
	}
	return false
}

func depositOf(booking *models.Booking) float64 {
	if len(booking.Payments) > 0 {
		return booking.Payments[0].Amount
	}
	return pricing.Deposit(booking.TotalPrice)
}

func cardLast4(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
