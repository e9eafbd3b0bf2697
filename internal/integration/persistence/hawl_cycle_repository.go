package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

// hawlCycleRepository implements the adapter.HawlCycleRepository interface.
type hawlCycleRepository struct {
	db *gorm.DB
}

// NewHawlCycleRepository creates a new Hawl cycle repository instance.
func NewHawlCycleRepository(db *gorm.DB) adapter.HawlCycleRepository {
	return &hawlCycleRepository{
		db: db,
	}
}

// Create inserts a new cycle.
func (r *hawlCycleRepository) Create(ctx context.Context, cycle *entity.HawlCycle) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Create(model.HawlCycleFromEntity(cycle)).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerror.ErrTrackingCycleExists
		}
		return err
	}
	return nil
}

// Update saves every column of the cycle.
func (r *hawlCycleRepository) Update(ctx context.Context, cycle *entity.HawlCycle) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return db.Save(model.HawlCycleFromEntity(cycle)).Error
}

// FindByID retrieves a cycle owned by the user.
func (r *hawlCycleRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.HawlCycle, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.HawlCycleModel
	result := db.Where("id = ? AND user_id = ?", id, userID).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrHawlCycleNotFound
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// ListTracking returns every tracking cycle of the user, newest first.
func (r *hawlCycleRepository) ListTracking(ctx context.Context, userID uuid.UUID) ([]*entity.HawlCycle, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.HawlCycleModel
	result := db.
		Where("user_id = ? AND status = ?", userID, entity.HawlStatusTracking).
		Order("created_at DESC").
		Order("hawl_start_date DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toCycles(models), nil
}

// FindLatestTracking returns the newest tracking cycle, or nil.
func (r *hawlCycleRepository) FindLatestTracking(ctx context.Context, userID uuid.UUID) (*entity.HawlCycle, error) {
	return r.findFirst(ctx, "user_id = ? AND status = ?", userID, entity.HawlStatusTracking)
}

// FindLatestClosed returns the closed cycle with the latest due date, or nil.
func (r *hawlCycleRepository) FindLatestClosed(ctx context.Context, userID uuid.UUID) (*entity.HawlCycle, error) {
	return r.findFirst(ctx, "user_id = ? AND status <> ?", userID, entity.HawlStatusTracking)
}

func (r *hawlCycleRepository) findFirst(ctx context.Context, query string, args ...interface{}) (*entity.HawlCycle, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.HawlCycleModel
	result := db.
		Where(query, args...).
		Order("hawl_due_date DESC").
		Order("created_at DESC").
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// ListDueWithPayments returns due cycles with payment totals, oldest Hawl first.
func (r *hawlCycleRepository) ListDueWithPayments(ctx context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.HawlCycleModel
	result := db.
		Where("user_id = ? AND status = ?", userID, entity.HawlStatusDue).
		Order("hawl_start_date ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return withPayments(db, models)
}

// ListWithPayments returns all cycles of the user with payment totals, newest first.
func (r *hawlCycleRepository) ListWithPayments(ctx context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.HawlCycleModel
	result := db.
		Where("user_id = ?", userID).
		Order("hawl_start_date DESC").
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return withPayments(db, models)
}

type paymentTotals struct {
	HawlCycleID  uuid.UUID       `gorm:"column:hawl_cycle_id"`
	TotalPaid    decimal.Decimal `gorm:"column:total_paid"`
	PaymentCount int             `gorm:"column:payment_count"`
}

// withPayments attaches the payment sum and count to each cycle.
func withPayments(db *gorm.DB, models []model.HawlCycleModel) ([]entity.CycleWithPayments, error) {
	out := make([]entity.CycleWithPayments, len(models))
	if len(models) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}

	var totals []paymentTotals
	err := db.
		Model(&model.ZakatPaymentModel{}).
		Select("hawl_cycle_id, COALESCE(SUM(amount), 0) AS total_paid, COUNT(*) AS payment_count").
		Where("hawl_cycle_id IN ?", ids).
		Group("hawl_cycle_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	byCycle := make(map[uuid.UUID]paymentTotals, len(totals))
	for _, t := range totals {
		byCycle[t.HawlCycleID] = t
	}

	for i := range models {
		t := byCycle[models[i].ID]
		out[i] = entity.CycleWithPayments{
			Cycle:        models[i].ToEntity(),
			TotalPaid:    t.TotalPaid,
			PaymentCount: t.PaymentCount,
		}
	}
	return out, nil
}

func toCycles(models []model.HawlCycleModel) []*entity.HawlCycle {
	cycles := make([]*entity.HawlCycle, len(models))
	for i := range models {
		cycles[i] = models[i].ToEntity()
	}
	return cycles
}
