package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"elite-coaching/models"
	"elite-coaching/notify"
	"elite-coaching/plans"
	"elite-coaching/utils"
)

// LeadHandler collects onboarding applications submitted before payment.
type LeadHandler struct {
	repo     models.Repository
	notifier notify.Notifier
	kafka    utils.KafkaProducer
}

func NewLeadHandler(repo models.Repository, notifier notify.Notifier, kafka utils.KafkaProducer) *LeadHandler {
	return &LeadHandler{
		repo:     repo,
		notifier: notifier,
		kafka:    kafka,
	}
}

type LeadRequest struct {
	FullName       string   `json:"full_name" binding:"required,min=2,max=100"`
	Email          string   `json:"email" binding:"required,email"`
	Phone          string   `json:"phone"`
	Height         int      `json:"height" binding:"required,gt=0"`
	Weight         int      `json:"weight" binding:"required,gt=0"`
	HealthProblems string   `json:"health_problems"`
	PhysiquePhotos []string `json:"physique_photos" binding:"required,min=1"`
	PlanID         string   `json:"plan_id" binding:"required"`
}

// CreateLead validates and persists the applicant profile, then tells
// the coach about it. The min=1 photos rule mirrors the client-side
// "submit disabled until a photo is uploaded" behavior.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := plans.Lookup(req.PlanID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan selected"})
		return
	}

	lead := &models.Lead{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		HeightCm:       req.Height,
		WeightKg:       req.Weight,
		HealthProblems: req.HealthProblems,
		PhysiquePhotos: req.PhysiquePhotos,
		PlanID:         req.PlanID,
	}

	if err := h.repo.CreateLead(lead); err != nil {
		log.Printf("Failed to create lead: %v", err)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save application"})
		return
	}

	if h.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.notifier.SendLeadNotification(ctx, lead); err != nil {
			log.Printf("Failed to send lead notification: %v", err)
		}
	} else {
		log.Printf("RESEND_API_KEY not configured; skipping lead notification email")
	}

	h.publishLeadEvent(lead)

	c.JSON(http.StatusCreated, gin.H{"id": lead.ID})
}

func (h *LeadHandler) publishLeadEvent(lead *models.Lead) {
	if h.kafka == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := map[string]interface{}{
			"event": "lead_created",
			"data":  lead,
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal lead event: %v", err)
			return
		}
		if err := h.kafka.SendMessage(ctx, "crm_events", []byte(lead.ID), jsonData); err != nil {
			log.Printf("Failed to send lead event to Kafka: %v", err)
		}
	}()
}
