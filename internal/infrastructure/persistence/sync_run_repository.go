package persistence

import (
	"context"
	"errors"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements pipeline.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Create persists a new sync run
func (r *GormSyncRunRepository) Create(ctx context.Context, run *pipeline.SyncRun) error {
	var model models.SyncRunModel
	if err := model.FromDomain(run); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID finds a sync run by its ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*pipeline.SyncRun, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Update persists run changes conditionally on the aggregate version.
// The version the caller loaded must still be current; otherwise the
// write is rejected with shared.ErrConcurrencyConflict.
func (r *GormSyncRunRepository) Update(ctx context.Context, run *pipeline.SyncRun) error {
	expectedVersion := run.Version
	run.IncrementVersion()

	var model models.SyncRunModel
	if err := model.FromDomain(run); err != nil {
		run.Version = expectedVersion
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.SyncRunModel{}).
		Where("id = ? AND version = ?", run.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"current_step": model.CurrentStep,
			"steps":        model.Steps,
			"metrics":      model.Metrics,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		run.Version = expectedVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		run.Version = expectedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindAll returns the most recent sync runs, newest first
func (r *GormSyncRunRepository) FindAll(ctx context.Context, limit int) ([]*pipeline.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	var runModels []models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]*pipeline.SyncRun, 0, len(runModels))
	for i := range runModels {
		run, err := runModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
