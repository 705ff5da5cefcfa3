package gateways

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"elite-coaching/plans"
)

// CheckoutSession is the subset of a hosted checkout the handlers care
// about: where to send the browser.
type CheckoutSession struct {
	ID  string
	URL string
}

// CardGateway creates card-subscription checkout sessions.
type CardGateway interface {
	CreateSubscriptionCheckout(ctx context.Context, plan plans.Plan, origin string) (*CheckoutSession, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

// CreateSubscriptionCheckout creates a hosted checkout session in
// subscription mode with a fixed monthly recurrence.
func (g *StripeGateway) CreateSubscriptionCheckout(ctx context.Context, plan plans.Plan, origin string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(plan.Name),
						Description: stripe.String(fmt.Sprintf("Monthly coaching subscription - %s", strings.ToUpper(plan.ID))),
					},
					UnitAmount: stripe.Int64(plan.AmountUSD),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:               stripe.String(origin + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(origin + "/cancel"),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.AddMetadata("planId", plan.ID)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe checkout session: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
