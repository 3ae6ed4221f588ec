package directbooking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tourbook/internal/models"
)

// Client submits a completed booking to the direct-booking endpoint and
// interprets its response. It is the checkout provider for direct mode.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Mode() string {
	return models.ModeDirect
}

// Checkout posts the full booking body. A created booking is reported back
// as data.bookingId; anything else is treated as a checkout failure with the
// server's message when one is present.
func (c *Client) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wire struct {
		Data struct {
			BookingID json.RawMessage `json:"bookingId"`
		} `json:"data"`
		BookingID json.RawMessage `json:"bookingId"`
		Message   string          `json:"message"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	// Failure bodies may be empty or non-JSON; the message just stays blank.
	_ = json.NewDecoder(resp.Body).Decode(&wire)

	message := wire.Message
	if message == "" {
		message = wire.Error.Message
	}

	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", message).Msg("direct booking rejected")
		return &models.CheckoutResult{Message: message}, fmt.Errorf("direct booking endpoint returned http %d", resp.StatusCode)
	}

	bookingID := rawID(wire.Data.BookingID)
	if bookingID == "" {
		bookingID = rawID(wire.BookingID)
	}

	return &models.CheckoutResult{BookingID: bookingID, Message: message}, nil
}

// rawID accepts bookingId as either a JSON string or a number.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
