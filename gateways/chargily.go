package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"elite-coaching/plans"
)

// RegionalGateway creates DZD checkouts on the regional direct-debit
// gateway (Chargily).
type RegionalGateway interface {
	CreateCheckout(ctx context.Context, plan plans.Plan, origin string) (*CheckoutSession, error)
}

type ChargilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewChargilyClient(apiKey string) *ChargilyClient {
	return &ChargilyClient{
		apiKey:     apiKey,
		baseURL:    "https://pay.chargily.net/api/v2",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type chargilyCheckoutRequest struct {
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	SuccessURL      string            `json:"success_url"`
	FailureURL      string            `json:"failure_url"`
	WebhookEndpoint string            `json:"webhook_endpoint"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata"`
	Locale          string            `json:"locale"`
	PaymentMethod   string            `json:"payment_method"`
}

type chargilyCheckoutResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckout creates an edahabia checkout billed in whole dinars and
// returns the hosted page URL.
func (c *ChargilyClient) CreateCheckout(ctx context.Context, plan plans.Plan, origin string) (*CheckoutSession, error) {
	payload := chargilyCheckoutRequest{
		Amount:          plan.AmountDZD,
		Currency:        "dzd",
		SuccessURL:      origin + "/success",
		FailureURL:      origin + "/cancel",
		WebhookEndpoint: origin + "/api/v1/webhooks/chargily",
		Description:     plan.Name,
		Metadata:        map[string]string{"planId": plan.ID},
		Locale:          "fr",
		PaymentMethod:   "edahabia",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chargily request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chargily response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chargily API error: %s", string(respBody))
	}

	var checkout chargilyCheckoutResponse
	if err := json.Unmarshal(respBody, &checkout); err != nil {
		return nil, fmt.Errorf("failed to parse chargily response: %w", err)
	}
	if checkout.CheckoutURL == "" {
		return nil, fmt.Errorf("chargily response has no checkout_url: %s", string(respBody))
	}

	return &CheckoutSession{ID: checkout.ID, URL: checkout.CheckoutURL}, nil
}
