package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"elite-coaching/gateways"
	"elite-coaching/models"
	"elite-coaching/monitoring"
	"elite-coaching/notify"
	"elite-coaching/plans"
	"elite-coaching/utils"
)

// WebhookHandler receives payment-completion events from the gateways.
// Both receivers are idempotent: the payment row is upserted against
// (gateway, gateway_payment_id), so re-delivery never duplicates it.
type WebhookHandler struct {
	repo           models.Repository
	notifier       notify.Notifier
	wallet         gateways.WalletGateway
	kafka          utils.KafkaProducer
	chargilySecret string
}

func NewWebhookHandler(repo models.Repository, notifier notify.Notifier, wallet gateways.WalletGateway, kafka utils.KafkaProducer, chargilySecret string) *WebhookHandler {
	return &WebhookHandler{
		repo:           repo,
		notifier:       notifier,
		wallet:         wallet,
		kafka:          kafka,
		chargilySecret: chargilySecret,
	}
}

type chargilyEvent struct {
	Type string `json:"type"`
	Data struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Metadata *struct {
			PlanID string `json:"planId"`
		} `json:"metadata"`
		Customer *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// HandleChargilyWebhook verifies the HMAC signature over the raw body,
// then records checkout.paid events. Everything else is acknowledged
// and dropped.
func (h *WebhookHandler) HandleChargilyWebhook(c *gin.Context) {
	if h.chargilySecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chargily webhook secret is not configured"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("signature")
	mac := hmac.New(sha256.New, []byte(h.chargilySecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		log.Printf("Invalid Chargily signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event chargilyEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		return
	}

	if event.Type != "checkout.paid" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if event.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing checkout id in webhook payload"})
		return
	}

	planID := "unknown"
	if event.Data.Metadata != nil && event.Data.Metadata.PlanID != "" {
		planID = event.Data.Metadata.PlanID
	}

	clientName := "Client"
	clientEmail := ""
	if event.Data.Customer != nil {
		if event.Data.Customer.Name != "" {
			clientName = event.Data.Customer.Name
		}
		clientEmail = event.Data.Customer.Email
	}

	currency := strings.ToUpper(event.Data.Currency)
	if currency == "" {
		currency = "DZD"
	}

	payment := &models.Payment{
		Gateway:          "chargily",
		GatewayPaymentID: event.Data.ID,
		PlanID:           planID,
		Amount:           event.Data.Amount,
		Currency:         currency,
		Status:           "paid",
		ClientName:       clientName,
		ClientEmail:      clientEmail,
	}

	if err := h.repo.UpsertPayment(payment); err != nil {
		log.Printf("Failed to upsert chargily payment %s: %v", event.Data.ID, err)
		c.Error(err)
	} else {
		monitoring.PaymentsRecordedTotal.WithLabelValues("chargily").Inc()
		h.publishPaymentEvent(payment)
	}

	if _, ok := plans.Lookup(planID); ok && clientEmail != "" {
		h.sendPaymentEmails(clientEmail, clientName, payment.Amount, currency, plans.Name(planID), "Chargily", nil)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

type paypalEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			CustomID string `json:"custom_id"`
			Amount   struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"amount"`
		} `json:"purchase_units"`
		Payer *struct {
			EmailAddress string `json:"email_address"`
			Name         *struct {
				GivenName string `json:"given_name"`
				Surname   string `json:"surname"`
			} `json:"name"`
		} `json:"payer"`
	} `json:"resource"`
}

// HandlePayPalWebhook records completed captures and approved orders.
// When a webhook id is configured the delivery is verified against the
// gateway first; an unverifiable delivery is rejected.
func (h *WebhookHandler) HandlePayPalWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if h.wallet != nil && h.wallet.WebhookVerificationEnabled() {
		ok, err := h.wallet.VerifyWebhookSignature(c.Request.Context(), c.Request.Header, rawBody)
		if err != nil {
			log.Printf("PayPal webhook verification error: %v", err)
			c.Error(err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Webhook verification failed"})
			return
		}
		if !ok {
			log.Printf("Invalid PayPal webhook signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
	} else {
		log.Printf("PAYPAL_WEBHOOK_ID not configured; accepting webhook without verification")
	}

	var event paypalEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		return
	}

	if event.EventType != "PAYMENT.CAPTURE.COMPLETED" && event.EventType != "CHECKOUT.ORDER.APPROVED" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if event.Resource.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order id in webhook payload"})
		return
	}

	customID := ""
	amountCents := int64(0)
	currency := "USD"
	if len(event.Resource.PurchaseUnits) > 0 {
		unit := event.Resource.PurchaseUnits[0]
		customID = unit.CustomID
		if v, err := strconv.ParseFloat(unit.Amount.Value, 64); err == nil {
			amountCents = int64(math.Round(v * 100))
		}
		if unit.Amount.CurrencyCode != "" {
			currency = unit.Amount.CurrencyCode
		}
	}

	clientEmail := ""
	clientName := "Client"
	if event.Resource.Payer != nil {
		clientEmail = event.Resource.Payer.EmailAddress
		if event.Resource.Payer.Name != nil {
			name := strings.TrimSpace(event.Resource.Payer.Name.GivenName + " " + event.Resource.Payer.Name.Surname)
			if name != "" {
				clientName = name
			}
		}
	}

	// custom_id carries the lead uuid when onboarding ran first, the
	// bare plan id otherwise. A uuid-length value means a lead lookup.
	var lead *models.Lead
	planID := customID
	if len(customID) > 20 {
		if found, err := h.repo.GetLeadByID(customID); err == nil {
			lead = found
			planID = lead.PlanID
		} else if err != models.ErrNotFound {
			log.Printf("Failed to load lead %s: %v", customID, err)
		}
	}
	if planID == "" {
		planID = "unknown"
	}

	payment := &models.Payment{
		Gateway:          "paypal",
		GatewayPaymentID: event.Resource.ID,
		PlanID:           planID,
		Amount:           amountCents,
		Currency:         currency,
		Status:           "paid",
		ClientName:       clientName,
		ClientEmail:      clientEmail,
	}

	if err := h.repo.UpsertPayment(payment); err != nil {
		log.Printf("Failed to upsert paypal payment %s: %v", event.Resource.ID, err)
		c.Error(err)
	} else {
		monitoring.PaymentsRecordedTotal.WithLabelValues("paypal").Inc()
		h.publishPaymentEvent(payment)
	}

	if _, ok := plans.Lookup(planID); ok && clientEmail != "" {
		h.sendPaymentEmails(clientEmail, clientName, amountCents, currency, plans.Name(planID), "PayPal", lead)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// sendPaymentEmails fires the client confirmation and the coach
// notification as independent attempts. Failures are logged and never
// affect the webhook acknowledgment. When the lead is known the coach
// gets the full protocol email instead of the plain notification.
func (h *WebhookHandler) sendPaymentEmails(clientEmail, clientName string, amount int64, currency, planName, gateway string, lead *models.Lead) {
	if h.notifier == nil {
		log.Printf("RESEND_API_KEY not configured; skipping payment emails")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := h.notifier.SendPaymentSuccess(ctx, clientEmail, clientName, amount, currency, planName, gateway); err != nil {
			log.Printf("Failed to send payment success email: %v", err)
			monitoring.EmailsTotal.WithLabelValues("failure").Inc()
			return
		}
		monitoring.EmailsTotal.WithLabelValues("success").Inc()
	}()

	go func() {
		defer wg.Done()
		var err error
		if lead != nil {
			err = h.notifier.SendCoachProtocolDetails(ctx, lead, amount, currency, gateway)
		} else {
			err = h.notifier.SendCoachPaymentNotification(ctx, clientName, clientEmail, amount, currency, planName, gateway)
		}
		if err != nil {
			log.Printf("Failed to send coach notification email: %v", err)
			monitoring.EmailsTotal.WithLabelValues("failure").Inc()
			return
		}
		monitoring.EmailsTotal.WithLabelValues("success").Inc()
	}()

	wg.Wait()
}

func (h *WebhookHandler) publishPaymentEvent(payment *models.Payment) {
	if h.kafka == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := map[string]interface{}{
			"event": "payment_recorded",
			"data":  payment,
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal payment event: %v", err)
			return
		}
		if err := h.kafka.SendMessage(ctx, "crm_events", []byte(payment.GatewayPaymentID), jsonData); err != nil {
			log.Printf("Failed to send payment event to Kafka: %v", err)
		}
	}()
}
