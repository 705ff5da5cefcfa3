package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"elite-coaching/models"
	"elite-coaching/notify"
)

// ContactHandler receives plain contact-form submissions.
type ContactHandler struct {
	repo     models.Repository
	notifier notify.Notifier
}

func NewContactHandler(repo models.Repository, notifier notify.Notifier) *ContactHandler {
	return &ContactHandler{
		repo:     repo,
		notifier: notifier,
	}
}

type ContactRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Experience string `json:"experience"`
	Goal       string `json:"goal"`
	Message    string `json:"message" binding:"required"`
}

func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	msg := &models.ContactMessage{
		Name:       req.Name,
		Email:      req.Email,
		Experience: req.Experience,
		Goal:       req.Goal,
		Message:    req.Message,
	}

	if err := h.repo.CreateContactMessage(msg); err != nil {
		log.Printf("Failed to save contact message: %v", err)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	if h.notifier == nil {
		log.Printf("RESEND_API_KEY not configured; contact emails will not be sent")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Application received. Email service not configured.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := h.notifier.SendContactNotifications(ctx, msg); err != nil {
		log.Printf("Failed to send contact emails: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Application received. Coach will contact you within 48 hours.",
	})
}
