package domain

import (
	"context"
	"time"

	"tourbook/internal/models"
)

// DraftRepository holds in-progress wizard drafts keyed by draft id.
// Implementations are expected to bound drafts with a TTL so abandoned
// sessions expire on their own.
type DraftRepository interface {
	GetDraft(ctx context.Context, id string) (*models.BookingDraft, error)
	SaveDraft(ctx context.Context, draft *models.BookingDraft) error
	DeleteDraft(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BookingStore persists completed bookings and their payments.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetPayments(ctx context.Context, bookingID int64) ([]models.Payment, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// TourCatalog looks up activities offered for booking. GetTour retries a
// miss once before giving up (catalog data may lag a freshly published tour).
type TourCatalog interface {
	GetTour(ctx context.Context, id string) (*models.Tour, error)
	ListTours(ctx context.Context) ([]models.Tour, error)
}

// CheckoutProvider is one checkout completion path. Exactly one provider is
// active per process, selected by configuration at startup.
type CheckoutProvider interface {
	Mode() string
	Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the direct-booking write path plus the receipt read path.
type BookingService interface {
	CreateDirectBooking(ctx context.Context, req *models.CheckoutRequest) (*models.Booking, error)
	GetReceipt(ctx context.Context, id int64) (*models.Receipt, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}
