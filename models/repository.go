package models

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elite-coaching/config"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	CreateLead(lead *Lead) error
	GetLeadByID(id string) (*Lead, error)
	UpsertPayment(payment *Payment) error
	CreateContactMessage(msg *ContactMessage) error
	RecentLeads(limit int) ([]Lead, error)
	RecentPayments(limit int) ([]Payment, error)
	RecentContactMessages(limit int) ([]ContactMessage, error)
	Close() error
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(cfg config.DatabaseConfig) (*PostgresRepository, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Lead{}, &Payment{}, &ContactMessage{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) CreateLead(lead *Lead) error {
	return r.db.Create(lead).Error
}

func (r *PostgresRepository) GetLeadByID(id string) (*Lead, error) {
	var lead Lead
	if err := r.db.First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// UpsertPayment inserts the payment or, when a row with the same
// (gateway, gateway_payment_id) already exists, updates it in place.
// This is what makes webhook re-delivery safe.
func (r *PostgresRepository) UpsertPayment(payment *Payment) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "gateway"}, {Name: "gateway_payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "amount", "currency", "status",
			"client_name", "client_email", "updated_at",
		}),
	}).Create(payment).Error
}

func (r *PostgresRepository) CreateContactMessage(msg *ContactMessage) error {
	return r.db.Create(msg).Error
}

func (r *PostgresRepository) RecentLeads(limit int) ([]Lead, error) {
	var leads []Lead
	err := r.db.Order("created_at DESC").Limit(limit).Find(&leads).Error
	return leads, err
}

func (r *PostgresRepository) RecentPayments(limit int) ([]Payment, error) {
	var payments []Payment
	err := r.db.Order("created_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

func (r *PostgresRepository) RecentContactMessages(limit int) ([]ContactMessage, error) {
	var msgs []ContactMessage
	err := r.db.Order("created_at DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
