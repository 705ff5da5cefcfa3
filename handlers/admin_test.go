package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"elite-coaching/models"
)

const adminTestSecret = "s3cret"

func adminRouter(h *AdminHandler) *gin.Engine {
	router := gin.New()
	router.GET("/admin/leads", h.ListLeads)
	router.GET("/admin/leads/search", h.SearchLeads)
	router.GET("/admin/payments", h.ListPayments)
	router.GET("/admin/contacts", h.ListContactMessages)
	return router
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminRejectsWrongSecret(t *testing.T) {
	repo := newFakeRepository()
	repo.payments["chargily:x"] = &models.Payment{Gateway: "chargily", GatewayPaymentID: "x"}
	h := NewAdminHandler(repo, nil, nil, adminTestSecret)
	router := adminRouter(h)

	for _, path := range []string{
		"/admin/payments",
		"/admin/payments?secret=wrong",
		"/admin/leads",
		"/admin/contacts",
		"/admin/leads/search?q=jane",
	} {
		w := getPath(router, path)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, w.Code)
		}
		if body := w.Body.String(); body != `{"error":"Unauthorized"}` {
			t.Errorf("%s: body = %s, want only the error", path, body)
		}
	}
}

func TestAdminUnsetSecretLocksEndpoints(t *testing.T) {
	h := NewAdminHandler(newFakeRepository(), nil, nil, "")
	router := adminRouter(h)

	// Even an empty query secret must not match an unset server secret.
	w := getPath(router, "/admin/payments?secret=")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAdminListsPaymentsWithCorrectSecret(t *testing.T) {
	repo := newFakeRepository()
	repo.payments["chargily:a"] = &models.Payment{Gateway: "chargily", GatewayPaymentID: "a", Amount: 40000, Currency: "DZD"}
	repo.payments["paypal:b"] = &models.Payment{Gateway: "paypal", GatewayPaymentID: "b", Amount: 29900, Currency: "USD"}
	h := NewAdminHandler(repo, nil, nil, adminTestSecret)

	w := getPath(adminRouter(h), "/admin/payments?secret="+adminTestSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var payments []models.Payment
	if err := json.Unmarshal(w.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("rows = %d, want 2", len(payments))
	}
	if len(payments) > adminRowLimit {
		t.Errorf("rows = %d, want at most %d", len(payments), adminRowLimit)
	}
}

func TestAdminPaymentsResponseIsCached(t *testing.T) {
	repo := newFakeRepository()
	repo.payments["paypal:b"] = &models.Payment{Gateway: "paypal", GatewayPaymentID: "b"}
	cache := newFakeCache()
	h := NewAdminHandler(repo, cache, nil, adminTestSecret)
	router := adminRouter(h)

	if w := getPath(router, "/admin/payments?secret="+adminTestSecret); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, ok := cache.store[paymentsCacheKey]; !ok {
		t.Fatal("payments list was not cached")
	}

	// Second request is served from the cache even if the store changes.
	repo.payments["paypal:c"] = &models.Payment{Gateway: "paypal", GatewayPaymentID: "c"}
	w := getPath(router, "/admin/payments?secret="+adminTestSecret)

	var payments []models.Payment
	if err := json.Unmarshal(w.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("rows = %d, want the cached single row", len(payments))
	}
}

func TestAdminSearchLeads(t *testing.T) {
	search := newFakeSearch()
	search.results = []map[string]interface{}{
		{"id": "lead-1", "full_name": "Jane Doe"},
	}
	h := NewAdminHandler(newFakeRepository(), nil, search, adminTestSecret)

	w := getPath(adminRouter(h), "/admin/leads/search?secret="+adminTestSecret+"&q=jane")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(results) != 1 || results[0]["full_name"] != "Jane Doe" {
		t.Errorf("results = %v, want the indexed lead", results)
	}
}

func TestAdminSearchMissingQuery(t *testing.T) {
	h := NewAdminHandler(newFakeRepository(), nil, newFakeSearch(), adminTestSecret)

	w := getPath(adminRouter(h), "/admin/leads/search?secret="+adminTestSecret)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAdminSearchUnavailable(t *testing.T) {
	h := NewAdminHandler(newFakeRepository(), nil, nil, adminTestSecret)

	w := getPath(adminRouter(h), "/admin/leads/search?secret="+adminTestSecret+"&q=jane")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
