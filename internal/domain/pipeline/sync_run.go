package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// StepName identifies one step of the catalog sync pipeline
type StepName string

const (
	StepParseMerge       StepName = "parse_merge"
	StepEANMapping       StepName = "ean_mapping"
	StepPricing          StepName = "pricing"
	StepExportEAN        StepName = "export_ean"
	StepExportMediaworld StepName = "export_mediaworld"
	StepExportEprice     StepName = "export_eprice"
)

// AllSteps returns the pipeline steps in their natural execution order.
// The engine does not self-schedule; ordering is the caller's concern.
func AllSteps() []StepName {
	return []StepName{
		StepParseMerge,
		StepEANMapping,
		StepPricing,
		StepExportEAN,
		StepExportMediaworld,
		StepExportEprice,
	}
}

// IsValid checks if the step name is one of the known pipeline steps
func (s StepName) IsValid() bool {
	switch s {
	case StepParseMerge, StepEANMapping, StepPricing,
		StepExportEAN, StepExportMediaworld, StepExportEprice:
		return true
	}
	return false
}

// RunStatus represents the overall status of a sync run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the outcome of a single step invocation
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
)

// StepResult records the outcome of exactly one step invocation.
// A re-invocation fully replaces the prior result for that step name.
type StepResult struct {
	Status     StepStatus     `json:"status"`
	Duration   time.Duration  `json:"duration"`
	Counters   map[string]int `json:"counters,omitempty"`
	Error      string         `json:"error,omitempty"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Succeeded returns true if the step completed without a step-level fault
func (r StepResult) Succeeded() bool {
	return r.Status == StepStatusSuccess
}

// SyncRun is the persisted state of one pipeline execution: per-step
// results, flat metric counters, and the last step that ran.
type SyncRun struct {
	shared.BaseAggregateRoot
	Status      RunStatus               `json:"status"`
	CurrentStep StepName                `json:"current_step,omitempty"`
	Steps       map[StepName]StepResult `json:"steps"`
	Metrics     map[string]int          `json:"metrics"`
}

// NewSyncRun creates a new pending sync run
func NewSyncRun() *SyncRun {
	return &SyncRun{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            RunStatusPending,
		Steps:             make(map[StepName]StepResult),
		Metrics:           make(map[string]int),
	}
}

// RecordStep merges a step invocation outcome into the run: the step's
// prior result is fully replaced, CurrentStep is updated, and the step's
// counters are shallow-merged into the run metrics (later values win).
func (r *SyncRun) RecordStep(name StepName, result StepResult) error {
	if !name.IsValid() {
		return shared.NewDomainError("UNKNOWN_STEP", fmt.Sprintf("unknown step name: %s", name))
	}
	if r.Steps == nil {
		r.Steps = make(map[StepName]StepResult)
	}
	if r.Metrics == nil {
		r.Metrics = make(map[string]int)
	}

	r.Steps[name] = result
	r.CurrentStep = name
	for k, v := range result.Counters {
		r.Metrics[k] = v
	}

	if result.Status == StepStatusFailed {
		r.Status = RunStatusFailed
	} else if len(r.Steps) == len(AllSteps()) && !r.hasFailedStep() {
		r.Status = RunStatusCompleted
	} else {
		r.Status = RunStatusRunning
	}

	r.UpdatedAt = time.Now()
	return nil
}

func (r *SyncRun) hasFailedStep() bool {
	for _, res := range r.Steps {
		if res.Status == StepStatusFailed {
			return true
		}
	}
	return false
}

// LastError returns the error text of the most recently recorded step,
// or empty if that step succeeded.
func (r *SyncRun) LastError() string {
	if res, ok := r.Steps[r.CurrentStep]; ok {
		return res.Error
	}
	return ""
}

// StepsJSON returns the step results as a JSON string for persistence
func (r *SyncRun) StepsJSON() (string, error) {
	if len(r.Steps) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(r.Steps)
	if err != nil {
		return "", fmt.Errorf("failed to marshal step results: %w", err)
	}
	return string(data), nil
}

// SetStepsFromJSON parses step results from a JSON string
func (r *SyncRun) SetStepsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "{}" {
		r.Steps = make(map[StepName]StepResult)
		return nil
	}
	var steps map[StepName]StepResult
	if err := json.Unmarshal([]byte(jsonStr), &steps); err != nil {
		return fmt.Errorf("failed to unmarshal step results: %w", err)
	}
	r.Steps = steps
	return nil
}

// MetricsJSON returns the metric counters as a JSON string for persistence
func (r *SyncRun) MetricsJSON() (string, error) {
	if len(r.Metrics) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(r.Metrics)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return string(data), nil
}

// SetMetricsFromJSON parses metric counters from a JSON string
func (r *SyncRun) SetMetricsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "{}" {
		r.Metrics = make(map[string]int)
		return nil
	}
	var metrics map[string]int
	if err := json.Unmarshal([]byte(jsonStr), &metrics); err != nil {
		return fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	r.Metrics = metrics
	return nil
}
