package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRecordAttempts bounds the optimistic-concurrency retry loop when
// merging a step result into the run record.
const maxRecordAttempts = 3

// Step is one executable pipeline step. Execute returns the step's
// metric contributions; an error is a step-level fault that the
// orchestrator records as a failed StepResult.
type Step interface {
	Name() pipeline.StepName
	Execute(ctx context.Context, runID uuid.UUID, cfg StepConfig) (map[string]int, error)
}

// Orchestrator dispatches exactly one named step per invocation and
// merges its result into the run record. Step faults never escape the
// orchestrator; only structural faults (unknown step, unknown run,
// persistence failure) surface as errors.
type Orchestrator struct {
	runs   pipeline.SyncRunRepository
	steps  map[pipeline.StepName]Step
	logger *zap.Logger
}

// NewOrchestrator creates an Orchestrator with no steps registered
func NewOrchestrator(runs pipeline.SyncRunRepository, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		runs:   runs,
		steps:  make(map[pipeline.StepName]Step),
		logger: logger,
	}
}

// Register adds a step to the dispatch table
func (o *Orchestrator) Register(step Step) {
	o.steps[step.Name()] = step
}

// CreateRun starts a new pending run
func (o *Orchestrator) CreateRun(ctx context.Context) (*pipeline.SyncRun, error) {
	run := pipeline.NewSyncRun()
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	o.logger.Info("Sync run created", zap.String("run_id", run.ID.String()))
	return run, nil
}

// GetRun loads one run record
func (o *Orchestrator) GetRun(ctx context.Context, runID uuid.UUID) (*pipeline.SyncRun, error) {
	return o.runs.FindByID(ctx, runID)
}

// ListRuns returns the most recent runs
func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]*pipeline.SyncRun, error) {
	return o.runs.FindAll(ctx, limit)
}

// RunStep executes exactly one named step against a run and records the
// outcome. The returned StepResult reflects the step's own outcome; the
// returned error is non-nil only for structural faults raised before or
// after step execution.
func (o *Orchestrator) RunStep(ctx context.Context, runID uuid.UUID, name pipeline.StepName, cfg StepConfig) (pipeline.StepResult, error) {
	step, ok := o.steps[name]
	if !name.IsValid() || !ok {
		return pipeline.StepResult{}, fmt.Errorf("%w: %s", shared.ErrUnknownStep, name)
	}
	if _, err := o.runs.FindByID(ctx, runID); err != nil {
		return pipeline.StepResult{}, err
	}

	o.logger.Info("Executing pipeline step",
		zap.String("run_id", runID.String()),
		zap.String("step", string(name)))

	start := time.Now()
	counters, err := o.execute(ctx, step, runID, cfg)

	result := pipeline.StepResult{
		Status:     pipeline.StepStatusSuccess,
		Duration:   time.Since(start),
		Counters:   counters,
		FinishedAt: time.Now(),
	}
	if err != nil {
		result.Status = pipeline.StepStatusFailed
		result.Error = err.Error()
		o.logger.Error("Pipeline step failed",
			zap.String("run_id", runID.String()),
			zap.String("step", string(name)),
			zap.Error(err))
	} else {
		o.logger.Info("Pipeline step completed",
			zap.String("run_id", runID.String()),
			zap.String("step", string(name)),
			zap.Duration("duration", result.Duration),
			zap.Any("counters", counters))
	}

	if err := o.record(ctx, runID, name, result); err != nil {
		return result, err
	}
	return result, nil
}

// execute runs the step, converting a panic into a step-level fault so
// a data-induced crash is recorded instead of escaping the boundary.
func (o *Orchestrator) execute(ctx context.Context, step Step, runID uuid.UUID, cfg StepConfig) (counters map[string]int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	return step.Execute(ctx, runID, cfg)
}

// record merges the step result into the run via read-merge-write,
// retrying on version conflicts so concurrent writers never lose a
// recorded result.
func (o *Orchestrator) record(ctx context.Context, runID uuid.UUID, name pipeline.StepName, result pipeline.StepResult) error {
	for attempt := 0; attempt < maxRecordAttempts; attempt++ {
		run, err := o.runs.FindByID(ctx, runID)
		if err != nil {
			return err
		}
		if err := run.RecordStep(name, result); err != nil {
			return err
		}

		err = o.runs.Update(ctx, run)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return fmt.Errorf("failed to persist step result: %w", err)
		}
		o.logger.Warn("Run record version conflict, retrying",
			zap.String("run_id", runID.String()),
			zap.Int("attempt", attempt+1))
	}
	return fmt.Errorf("failed to persist step result after %d attempts: %w",
		maxRecordAttempts, shared.ErrConcurrencyConflict)
}
