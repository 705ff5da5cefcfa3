package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func checkoutRouter(h *CheckoutHandler) *gin.Engine {
	router := gin.New()
	router.POST("/checkout/stripe", h.CreateStripeCheckout)
	router.POST("/checkout/chargily", h.CreateChargilyCheckout)
	router.POST("/checkout/paypal", h.CreatePayPalOrder)
	return router
}

func TestStripeCheckoutValidPlan(t *testing.T) {
	card := &fakeCardGateway{url: "https://checkout.stripe.com/c/pay/cs_test_1"}
	h := NewCheckoutHandler(card, nil, nil, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/stripe", `{"planId":"pro"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.URL == "" {
		t.Error("expected a non-empty checkout url")
	}
	if !strings.Contains(resp.URL, "checkout.stripe.com") {
		t.Errorf("url = %q, want a hosted checkout domain", resp.URL)
	}
	if card.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", card.calls)
	}
}

func TestStripeCheckoutUnknownPlanMakesNoOutboundCall(t *testing.T) {
	for _, planID := range []string{"gold", "", "PRO"} {
		card := &fakeCardGateway{url: "https://checkout.stripe.com/c/pay/cs_test_1"}
		h := NewCheckoutHandler(card, nil, nil, "https://ayoubcmb.com")

		body := `{"planId":"` + planID + `"}`
		w := postJSON(t, checkoutRouter(h), "/checkout/stripe", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("planId %q: status = %d, want 400", planID, w.Code)
		}
		if card.calls != 0 {
			t.Errorf("planId %q: gateway calls = %d, want 0", planID, card.calls)
		}
	}
}

func TestStripeCheckoutNotConfigured(t *testing.T) {
	h := NewCheckoutHandler(nil, nil, nil, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/stripe", `{"planId":"pro"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not configured") {
		t.Errorf("body = %s, want a configuration error", w.Body.String())
	}
}

func TestStripeCheckoutGatewayError(t *testing.T) {
	card := &fakeCardGateway{err: errTest}
	h := NewCheckoutHandler(card, nil, nil, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/stripe", `{"planId":"basic"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestChargilyCheckoutValidPlan(t *testing.T) {
	regional := &fakeRegionalGateway{url: "https://pay.chargily.dz/checkouts/checkout_1/pay"}
	h := NewCheckoutHandler(nil, regional, nil, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/chargily", `{"planId":"basic"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.CheckoutURL == "" {
		t.Error("expected a non-empty checkoutUrl")
	}
	if regional.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", regional.calls)
	}
}

func TestChargilyCheckoutUnknownPlan(t *testing.T) {
	regional := &fakeRegionalGateway{url: "https://pay.chargily.dz/checkouts/checkout_1/pay"}
	h := NewCheckoutHandler(nil, regional, nil, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/chargily", `{"planId":"platinum"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if regional.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", regional.calls)
	}
}

func TestPayPalOrderUsesLeadIDAsCustomID(t *testing.T) {
	wallet := &fakeWalletGateway{orderID: "5O190127TN364715T", approveURL: "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T"}
	h := NewCheckoutHandler(nil, nil, wallet, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/paypal", `{"planId":"premium","leadId":"7b5efc34-9c1b-4f6f-9f65-8d7f6f0d2ab1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if wallet.lastCustomID != "7b5efc34-9c1b-4f6f-9f65-8d7f6f0d2ab1" {
		t.Errorf("custom id = %q, want the lead id", wallet.lastCustomID)
	}

	var resp struct {
		OrderID    string `json:"orderId"`
		ApproveURL string `json:"approveUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.OrderID == "" || resp.ApproveURL == "" {
		t.Errorf("response = %s, want orderId and approveUrl", w.Body.String())
	}
}

func TestPayPalOrderFallsBackToPlanIDAsCustomID(t *testing.T) {
	wallet := &fakeWalletGateway{orderID: "5O190127TN364715T", approveURL: "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T"}
	h := NewCheckoutHandler(nil, nil, wallet, "https://ayoubcmb.com")

	w := postJSON(t, checkoutRouter(h), "/checkout/paypal", `{"planId":"basic"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if wallet.lastCustomID != "basic" {
		t.Errorf("custom id = %q, want the plan id", wallet.lastCustomID)
	}
}
