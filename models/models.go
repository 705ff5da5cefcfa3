package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a coaching applicant captured by the onboarding form before
// payment. Rows are insert-only.
type Lead struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	FullName       string    `gorm:"not null" json:"full_name"`
	Email          string    `gorm:"not null" json:"email"`
	Phone          string    `json:"phone"`
	HeightCm       int       `json:"height"`
	WeightKg       int       `json:"weight"`
	HealthProblems string    `json:"health_problems"`
	PhysiquePhotos []string  `gorm:"serializer:json" json:"physique_photos"`
	PlanID         string    `gorm:"not null" json:"plan_id"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Payment is one completed gateway payment, recorded by a webhook
// receiver. (Gateway, GatewayPaymentID) is the natural key: webhook
// re-delivery upserts against it and must never create a second row.
type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Gateway          string    `gorm:"not null;uniqueIndex:idx_payments_gateway_payment_id" json:"gateway"`
	GatewayPaymentID string    `gorm:"not null;uniqueIndex:idx_payments_gateway_payment_id" json:"gateway_payment_id"`
	PlanID           string    `json:"plan_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	ClientName       string    `json:"client_name"`
	ClientEmail      string    `json:"client_email"`
}

// ContactMessage is a plain contact-form submission. Insert-only.
type ContactMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null" json:"email"`
	Experience string    `json:"experience"`
	Goal       string    `json:"goal"`
	Message    string    `gorm:"not null" json:"message"`
}
