package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// SyncRunRepository defines the persistence contract for sync runs.
// Update is conditional on the aggregate version: a mismatch returns
// shared.ErrConcurrencyConflict so the caller can re-read and retry.
type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)
	Update(ctx context.Context, run *SyncRun) error
	FindAll(ctx context.Context, limit int) ([]*SyncRun, error)
}
