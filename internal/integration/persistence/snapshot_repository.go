package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

// snapshotRepository implements the adapter.SnapshotRepository interface.
type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new snapshot repository instance.
func NewSnapshotRepository(db *gorm.DB) adapter.SnapshotRepository {
	return &snapshotRepository{
		db: db,
	}
}

// Create inserts a new snapshot.
func (r *snapshotRepository) Create(ctx context.Context, snapshot *entity.AssetSnapshot) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return db.Create(model.AssetSnapshotFromEntity(snapshot)).Error
}

// FindByID retrieves a snapshot owned by the user.
func (r *snapshotRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.AssetSnapshot, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.AssetSnapshotModel
	result := db.Where("id = ? AND user_id = ?", id, userID).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSnapshotNotFound
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// FindLatestByUser returns the snapshot with the latest snapshot date, or nil.
// Snapshots on the same date are ordered by creation time.
func (r *snapshotRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.AssetSnapshot, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.AssetSnapshotModel
	result := db.
		Where("user_id = ?", userID).
		Order("snapshot_date DESC").
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

// ListByUser returns up to limit snapshots, newest first.
func (r *snapshotRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AssetSnapshot, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.AssetSnapshotModel
	result := db.
		Where("user_id = ?", userID).
		Order("snapshot_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	snapshots := make([]*entity.AssetSnapshot, len(models))
	for i := range models {
		snapshots[i] = models[i].ToEntity()
	}
	return snapshots, nil
}
