package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *GormSyncRunRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SyncRunModel{}))
	return NewGormSyncRunRepository(db)
}

func TestSyncRunRepositoryCreateAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := pipeline.NewSyncRun()
	require.NoError(t, run.RecordStep(pipeline.StepParseMerge, pipeline.StepResult{
		Status:     pipeline.StepStatusSuccess,
		Duration:   3 * time.Second,
		Counters:   map[string]int{"noStock": 12},
		FinishedAt: time.Now(),
	}))
	require.NoError(t, repo.Create(ctx, run))

	loaded, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunStatusRunning, loaded.Status)
	assert.Equal(t, pipeline.StepParseMerge, loaded.CurrentStep)
	assert.Equal(t, 12, loaded.Metrics["noStock"])
	require.Contains(t, loaded.Steps, pipeline.StepParseMerge)
	assert.Equal(t, pipeline.StepStatusSuccess, loaded.Steps[pipeline.StepParseMerge].Status)
}

func TestSyncRunRepositoryFindByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSyncRunRepositoryUpdateBumpsVersion(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := pipeline.NewSyncRun()
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, run.RecordStep(pipeline.StepPricing, pipeline.StepResult{
		Status:     pipeline.StepStatusSuccess,
		FinishedAt: time.Now(),
	}))
	require.NoError(t, repo.Update(ctx, run))
	assert.Equal(t, 2, run.Version)

	loaded, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, pipeline.StepPricing, loaded.CurrentStep)
}

func TestSyncRunRepositoryUpdateConflict(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	run := pipeline.NewSyncRun()
	require.NoError(t, repo.Create(ctx, run))

	// Two workers load the same version; the second write must lose.
	first, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)

	require.NoError(t, first.RecordStep(pipeline.StepParseMerge, pipeline.StepResult{
		Status: pipeline.StepStatusSuccess, FinishedAt: time.Now(),
	}))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.RecordStep(pipeline.StepEANMapping, pipeline.StepResult{
		Status: pipeline.StepStatusSuccess, FinishedAt: time.Now(),
	}))
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// The losing aggregate keeps its loaded version so a retry can re-read.
	assert.Equal(t, 1, second.Version)
}

func TestSyncRunRepositoryFindAllNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := pipeline.NewSyncRun()
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))

	newer := pipeline.NewSyncRun()
	require.NoError(t, repo.Create(ctx, newer))

	runs, err := repo.FindAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)
}
