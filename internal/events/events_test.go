package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got *Event
	bus.Subscribe(EventCheckoutSucceeded, func(e *Event) error {
		got = e
		return nil
	})

	payload := CheckoutEventPayload{DraftID: "d1", TourID: "t1", Mode: "direct", BookingID: "42"}
	err := bus.PublishJSON(EventCheckoutSucceeded, payload)
	require.NoError(t, err)
	require.NotNil(t, got)

	var decoded CheckoutEventPayload
	require.NoError(t, json.Unmarshal(got.Payload, &decoded))
	assert.Equal(t, payload, decoded)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestEventBusIgnoresUnsubscribedTypes(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(EventCheckoutFailed, func(e *Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventDraftStarted, DraftEventPayload{DraftID: "d1"}))
	assert.False(t, called)
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventDraftStarted, nil))
}
