package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

// ZakatPaymentModel represents the zakat_payments table in the database.
type ZakatPaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	HawlCycleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Recipient   string          `gorm:"type:varchar(255);not null"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Date        time.Time       `gorm:"type:date;not null"`
	Notes       *string         `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`

	// Relationships (not loaded by default)
	HawlCycle *HawlCycleModel `gorm:"foreignKey:HawlCycleID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the ZakatPaymentModel.
func (ZakatPaymentModel) TableName() string {
	return "zakat_payments"
}

// ToEntity converts a ZakatPaymentModel to a domain ZakatPayment entity.
func (m *ZakatPaymentModel) ToEntity() *entity.ZakatPayment {
	return &entity.ZakatPayment{
		ID:          m.ID,
		UserID:      m.UserID,
		HawlCycleID: m.HawlCycleID,
		Amount:      m.Amount,
		Recipient:   m.Recipient,
		Category:    entity.PaymentCategory(m.Category),
		Date:        dateOnly(m.Date),
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}

// ZakatPaymentFromEntity creates a ZakatPaymentModel from a domain ZakatPayment entity.
func ZakatPaymentFromEntity(p *entity.ZakatPayment) *ZakatPaymentModel {
	return &ZakatPaymentModel{
		ID:          p.ID,
		UserID:      p.UserID,
		HawlCycleID: p.HawlCycleID,
		Amount:      p.Amount,
		Recipient:   p.Recipient,
		Category:    string(p.Category),
		Date:        p.Date,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}
