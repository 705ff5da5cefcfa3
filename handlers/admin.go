package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"elite-coaching/models"
	"elite-coaching/utils"
)

const adminRowLimit = 100

// AdminHandler serves the dashboard's read-only queries behind a shared
// secret passed as a query parameter.
type AdminHandler struct {
	repo   models.Repository
	cache  utils.RedisClient
	search utils.SearchClient
	secret string
}

func NewAdminHandler(repo models.Repository, cache utils.RedisClient, search utils.SearchClient, secret string) *AdminHandler {
	return &AdminHandler{
		repo:   repo,
		cache:  cache,
		search: search,
		secret: secret,
	}
}

// authorized does a plain string comparison against the server secret,
// matching the dashboard's existing behavior. An unset server secret
// locks the endpoints entirely.
func (h *AdminHandler) authorized(c *gin.Context) bool {
	secret := c.Query("secret")
	if h.secret == "" || secret != h.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}

func (h *AdminHandler) ListLeads(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	leads, err := h.repo.RecentLeads(adminRowLimit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, leads)
}

const paymentsCacheKey = "admin:payments"

func (h *AdminHandler) ListPayments(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetFromCache(c.Request.Context(), paymentsCacheKey); err == nil && cached != "" {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	payments, err := h.repo.RecentPayments(adminRowLimit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.cache != nil {
		if body, err := json.Marshal(payments); err == nil {
			if err := h.cache.SetToCache(c.Request.Context(), paymentsCacheKey, string(body), 30*time.Second); err != nil {
				log.Printf("Failed to cache payments list: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) ListContactMessages(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	msgs, err := h.repo.RecentContactMessages(adminRowLimit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SearchLeads runs a full-text query over the indexed leads.
func (h *AdminHandler) SearchLeads(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter q"})
		return
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"full_name", "email", "health_problems", "plan_id"},
			},
		},
		"size": adminRowLimit,
	}

	results, err := h.search.Search(c.Request.Context(), "leads", query)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
