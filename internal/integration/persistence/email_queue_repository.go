package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

// emailQueueRepository implements the adapter.EmailQueueRepository interface.
type emailQueueRepository struct {
	db *gorm.DB
}

// NewEmailQueueRepository creates a new email queue repository instance.
func NewEmailQueueRepository(db *gorm.DB) adapter.EmailQueueRepository {
	return &emailQueueRepository{
		db: db,
	}
}

// Create adds a new email job to the queue. Inside a transaction the job is
// committed together with the change that triggered it.
func (r *emailQueueRepository) Create(ctx context.Context, job *entity.EmailJob) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Create(model.EmailQueueModelFromEntity(job)).Error; err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeEmailQueueFailed,
			"failed to create email job",
			err,
		)
	}
	return nil
}

// GetPendingJobs retrieves jobs ready to be processed at now.
func (r *emailQueueRepository) GetPendingJobs(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var models []model.EmailQueueModel
	result := db.
		Where("status = ?", entity.EmailStatusPending).
		Where("scheduled_at <= ?", now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	jobs := make([]*entity.EmailJob, len(models))
	for i := range models {
		jobs[i] = models[i].ToEntity()
	}
	return jobs, nil
}

// Update saves changes to an email job.
func (r *emailQueueRepository) Update(ctx context.Context, job *entity.EmailJob) error {
	db, err := conn(ctx, r.db)
	if err != nil {
		return err
	}
	return db.Save(model.EmailQueueModelFromEntity(job)).Error
}

// GetByID retrieves a specific job by its ID.
func (r *emailQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var m model.EmailQueueModel
	result := db.Where("id = ?", id).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.NewEmailError(
				domainerror.ErrCodeEmailJobNotFound,
				"email job not found",
				domainerror.ErrEmailJobNotFound,
			)
		}
		return nil, result.Error
	}
	return m.ToEntity(), nil
}

// ExistsForReference reports whether a job of the template was already queued for the record.
func (r *emailQueueRepository) ExistsForReference(ctx context.Context, templateType entity.EmailTemplateType, referenceID uuid.UUID) (bool, error) {
	db, err := conn(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	result := db.
		Model(&model.EmailQueueModel{}).
		Where("template_type = ? AND reference_id = ?", templateType, referenceID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
