package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"elite-coaching/gateways"
	"elite-coaching/monitoring"
	"elite-coaching/plans"
)

// CheckoutHandler owns the three payment-initiation endpoints. A nil
// gateway means the integration is not configured; its endpoint answers
// with a configuration error instead of attempting a call.
type CheckoutHandler struct {
	card     gateways.CardGateway
	regional gateways.RegionalGateway
	wallet   gateways.WalletGateway
	siteURL  string
}

func NewCheckoutHandler(card gateways.CardGateway, regional gateways.RegionalGateway, wallet gateways.WalletGateway, siteURL string) *CheckoutHandler {
	return &CheckoutHandler{
		card:     card,
		regional: regional,
		wallet:   wallet,
		siteURL:  siteURL,
	}
}

type CheckoutRequest struct {
	PlanID string `json:"planId" binding:"required"`
	LeadID string `json:"leadId"`
}

func (h *CheckoutHandler) origin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	return h.siteURL
}

// CreateStripeCheckout creates a card-subscription checkout session and
// returns the hosted page URL.
func (h *CheckoutHandler) CreateStripeCheckout(c *gin.Context) {
	if h.card == nil {
		log.Printf("STRIPE_SECRET_KEY not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment system not configured. Please contact support."})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription plan selected."})
		return
	}

	plan, ok := plans.Lookup(req.PlanID)
	if !ok {
		log.Printf("Invalid planId: %s", req.PlanID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription plan selected."})
		return
	}

	session, err := h.card.CreateSubscriptionCheckout(c.Request.Context(), plan, h.origin(c))
	if err != nil {
		log.Printf("Stripe checkout error: %v", err)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create payment session. Please try again or contact support.",
			"details": err.Error(),
		})
		return
	}

	monitoring.CheckoutSessionsTotal.WithLabelValues("stripe").Inc()
	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}

// CreateChargilyCheckout creates a DZD checkout on the regional gateway.
func (h *CheckoutHandler) CreateChargilyCheckout(c *gin.Context) {
	if h.regional == nil {
		log.Printf("CHARGILY_API_KEY not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment system not configured. Please contact support."})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan selected"})
		return
	}

	plan, ok := plans.Lookup(req.PlanID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan selected"})
		return
	}

	session, err := h.regional.CreateCheckout(c.Request.Context(), plan, h.origin(c))
	if err != nil {
		log.Printf("Chargily create-checkout error: %v", err)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Chargily checkout"})
		return
	}

	monitoring.CheckoutSessionsTotal.WithLabelValues("chargily").Inc()
	c.JSON(http.StatusOK, gin.H{"checkoutUrl": session.URL})
}

// CreatePayPalOrder creates a capture-intent order on the wallet
// gateway. The lead id, when present, rides along as the order's
// custom id so the webhook can recover the full applicant profile.
func (h *CheckoutHandler) CreatePayPalOrder(c *gin.Context) {
	if h.wallet == nil {
		log.Printf("PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PayPal configuration error: PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET is missing from server environment variables."})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan selected"})
		return
	}

	plan, ok := plans.Lookup(req.PlanID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan selected"})
		return
	}

	customID := req.LeadID
	if customID == "" {
		customID = plan.ID
	}

	order, err := h.wallet.CreateOrder(c.Request.Context(), plan, customID, h.origin(c))
	if err != nil {
		log.Printf("PayPal create-order error: %v", err)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create PayPal order"})
		return
	}

	monitoring.CheckoutSessionsTotal.WithLabelValues("paypal").Inc()
	c.JSON(http.StatusOK, gin.H{
		"orderId":    order.ID,
		"approveUrl": order.ApproveURL,
	})
}
