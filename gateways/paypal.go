package gateways

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/plutov/paypal/v4"

	"elite-coaching/plans"
)

// Order is a created wallet-gateway order plus its buyer-approval URL.
type Order struct {
	ID         string
	ApproveURL string
}

// WalletGateway creates one-time capture orders on the international
// wallet gateway (PayPal) and verifies its webhook signatures.
type WalletGateway interface {
	CreateOrder(ctx context.Context, plan plans.Plan, customID, origin string) (*Order, error)
	WebhookVerificationEnabled() bool
	VerifyWebhookSignature(ctx context.Context, headers http.Header, rawBody []byte) (bool, error)
}

type PayPalClient struct {
	client    *paypal.Client
	webhookID string
}

func NewPayPalClient(clientID, clientSecret, mode, webhookID string) (*PayPalClient, error) {
	return newPayPalClientWithBase(clientID, clientSecret, apiBaseForMode(mode), webhookID)
}

func apiBaseForMode(mode string) string {
	if mode == "live" {
		return paypal.APIBaseLive
	}
	return paypal.APIBaseSandBox
}

func newPayPalClientWithBase(clientID, clientSecret, apiBase, webhookID string) (*PayPalClient, error) {
	client, err := paypal.NewClient(clientID, clientSecret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}
	return &PayPalClient{client: client, webhookID: webhookID}, nil
}

// WebhookVerificationEnabled reports whether a webhook id was configured.
// Without one the receiver has nothing to verify against.
func (c *PayPalClient) WebhookVerificationEnabled() bool {
	return c.webhookID != ""
}

// ensureToken fetches the client-credentials token on first use; the
// SDK refreshes it before expiry on later calls.
func (c *PayPalClient) ensureToken(ctx context.Context) error {
	if c.client.Token != nil {
		return nil
	}
	if _, err := c.client.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("paypal token request failed: %w", err)
	}
	return nil
}

// CreateOrder creates a CAPTURE-intent order. customID travels through
// the gateway untouched and comes back on the webhook; the caller passes
// the lead id when it has one, the plan id otherwise.
func (c *PayPalClient) CreateOrder(ctx context.Context, plan plans.Plan, customID, origin string) (*Order, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: "USD",
				Value:    fmt.Sprintf("%.2f", float64(plan.AmountUSD)/100),
			},
			Description: plan.Name,
			CustomID:    customID,
		},
	}
	appContext := &paypal.ApplicationContext{
		ReturnURL: origin + "/success",
		CancelURL: origin + "/cancel",
	}

	order, err := c.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appContext)
	if err != nil {
		return nil, fmt.Errorf("paypal order error: %w", err)
	}

	for _, link := range order.Links {
		if link.Rel == "approve" {
			return &Order{ID: order.ID, ApproveURL: link.Href}, nil
		}
	}
	return nil, fmt.Errorf("no approval URL in paypal order %s", order.ID)
}

// VerifyWebhookSignature asks the gateway whether an inbound webhook
// delivery is authentic, using the transmission headers it sets. Returns
// false when verification is enabled and the gateway does not answer
// SUCCESS.
func (c *PayPalClient) VerifyWebhookSignature(ctx context.Context, headers http.Header, rawBody []byte) (bool, error) {
	if c.webhookID == "" {
		return false, fmt.Errorf("paypal webhook id is not configured")
	}
	if err := c.ensureToken(ctx); err != nil {
		return false, err
	}

	// The SDK reads the transmission headers and body off a request.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(rawBody))
	if err != nil {
		return false, fmt.Errorf("failed to build verify request: %w", err)
	}
	for name, values := range headers {
		req.Header[name] = values
	}

	resp, err := c.client.VerifyWebhookSignature(ctx, req, c.webhookID)
	if err != nil {
		return false, fmt.Errorf("paypal verify request failed: %w", err)
	}
	return resp.VerificationStatus == "SUCCESS", nil
}
