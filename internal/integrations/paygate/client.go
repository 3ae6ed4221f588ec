package paygate

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

// Client starts a payment intent at the external gateway. It is the checkout
// provider for gateway mode. Card and billing data stay out of the request;
// the gateway collects those itself once the client secret is handed over.
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
	return models.ModeGateway
}

// Checkout posts the booking intent and extracts the client secret. Both
// data.clientSecret and a top-level clientSecret are accepted.
func (c *Client) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	intent := struct {
		ActivityID   string              `json:"activityId"`
		Date         string              `json:"date"`
		Time         string              `json:"time"`
		Participants int                 `json:"participants"`
		Currency     string              `json:"currency"`
		Customer     models.CustomerInfo `json:"customer"`
		Notes        string              `json:"notes,omitempty"`
	}{
		ActivityID:   req.ActivityID,
		Date:         req.Date,
		Time:         req.Time,
		Participants: req.Participants,
		Currency:     req.Currency,
		Customer:     req.Customer,
		Notes:        req.Notes,
	}

	body, err := json.Marshal(intent)
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
			ClientSecret string `json:"clientSecret"`
		} `json:"data"`
		ClientSecret string `json:"clientSecret"`
		Message      string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&wire)

	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", wire.Message).Msg("payment intent rejected")
		return &models.CheckoutResult{Message: wire.Message}, fmt.Errorf("payment gateway returned http %d", resp.StatusCode)
	}

	secret := wire.Data.ClientSecret
	if secret == "" {
		secret = wire.ClientSecret
	}

	return &models.CheckoutResult{ClientSecret: secret, Message: wire.Message}, nil
}
