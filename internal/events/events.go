package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventDraftStarted      = "draft_started"
	EventBookingCreated    = "booking_created"
	EventCheckoutSucceeded = "checkout_succeeded"
	EventCheckoutFailed    = "checkout_failed"
)

// DraftEventPayload describes a wizard session lifecycle event.
type DraftEventPayload struct {
	DraftID string `json:"draft_id"`
	TourID  string `json:"tour_id"`
	Step    int    `json:"step,omitempty"`
}

// CheckoutEventPayload describes the outcome of a checkout dispatch.
type CheckoutEventPayload struct {
	DraftID   string `json:"draft_id"`
	TourID    string `json:"tour_id"`
	Mode      string `json:"mode"`
	BookingID string `json:"booking_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// BookingEventPayload describes the minimal booking snapshot for consumers.
type BookingEventPayload struct {
	BookingID    int64   `json:"booking_id"`
	TourID       string  `json:"tour_id"`
	TourName     string  `json:"tour_name"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Participants int     `json:"participants"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
