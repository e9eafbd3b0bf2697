package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

// paymentRepository implements the adapter.PaymentRepository interface.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance.
func NewPaymentRepository(db *gorm.DB) adapter.PaymentRepository {
	return &paymentRepository{
		db: db,
	}
}

// Create inserts a payment.
func (r *paymentRepository) Create(ctx context.Context, payment *entity.ZakatPayment) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return db.Create(model.ZakatPaymentFromEntity(payment)).Error
}

// Delete removes a payment from its cycle.
func (r *paymentRepository) Delete(ctx context.Context, cycleID, paymentID uuid.UUID) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("id = ? AND hawl_cycle_id = ?", paymentID, cycleID).Delete(&model.ZakatPaymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrPaymentNotFound
	}
	return nil
}

// FindByID retrieves a payment of the given cycle.
func (r *paymentRepository) FindByID(ctx context.Context, cycleID, paymentID uuid.UUID) (*entity.ZakatPayment, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.ZakatPaymentModel
	result := db.Where("id = ? AND hawl_cycle_id = ?", paymentID, cycleID).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrPaymentNotFound
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// ListByCycle returns the payments of a cycle, latest date first.
func (r *paymentRepository) ListByCycle(ctx context.Context, cycleID uuid.UUID) ([]*entity.ZakatPayment, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.ZakatPaymentModel
	result := db.
		Where("hawl_cycle_id = ?", cycleID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	payments := make([]*entity.ZakatPayment, len(models))
	for i := range models {
		payments[i] = models[i].ToEntity()
	}
	return payments, nil
}

// SummaryByCycle returns the total paid and payment count of a cycle.
func (r *paymentRepository) SummaryByCycle(ctx context.Context, cycleID uuid.UUID) (*entity.PaymentSummary, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row struct {
		TotalPaid    decimal.Decimal `gorm:"column:total_paid"`
		PaymentCount int             `gorm:"column:payment_count"`
	}
	err = db.
		Model(&model.ZakatPaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total_paid, COUNT(*) AS payment_count").
		Where("hawl_cycle_id = ?", cycleID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &entity.PaymentSummary{
		TotalPaid:    row.TotalPaid,
		PaymentCount: row.PaymentCount,
	}, nil
}

// ListRecentByUser returns the user's latest payments with the currency of their cycle.
func (r *paymentRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.RecentPayment, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.ZakatPaymentModel
	result := db.
		Preload("HawlCycle").
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	payments := make([]entity.RecentPayment, len(models))
	for i := range models {
		currency := entity.DefaultCurrency
		if models[i].HawlCycle != nil {
			currency = models[i].HawlCycle.Currency
		}
		payments[i] = entity.RecentPayment{
			Payment:  models[i].ToEntity(),
			Currency: currency,
		}
	}
	return payments, nil
}
