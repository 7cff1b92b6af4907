package models

import (
	"fmt"

	"github.com/catalogsync/backend/internal/domain/pipeline"
)

// SyncRunModel is the persistence model for pipeline sync runs. Step
// results and metric counters are stored as JSON documents.
type SyncRunModel struct {
	AggregateModel
	Status      string `gorm:"type:varchar(20);not null;index"`
	CurrentStep string `gorm:"type:varchar(40)"`
	Steps       string `gorm:"type:text;not null;default:'{}'"`
	Metrics     string `gorm:"type:text;not null;default:'{}'"`
}

// TableName specifies the table name for SyncRunModel
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// FromDomain populates the model from a domain SyncRun
func (m *SyncRunModel) FromDomain(run *pipeline.SyncRun) error {
	m.FromDomainAggregateRoot(run.BaseAggregateRoot)
	m.Status = string(run.Status)
	m.CurrentStep = string(run.CurrentStep)

	steps, err := run.StepsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize steps: %w", err)
	}
	m.Steps = steps

	metrics, err := run.MetricsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize metrics: %w", err)
	}
	m.Metrics = metrics
	return nil
}

// ToDomain converts the model to a domain SyncRun
func (m *SyncRunModel) ToDomain() (*pipeline.SyncRun, error) {
	run := &pipeline.SyncRun{
		Status:      pipeline.RunStatus(m.Status),
		CurrentStep: pipeline.StepName(m.CurrentStep),
	}
	m.PopulateAggregateRoot(&run.BaseAggregateRoot)

	if err := run.SetStepsFromJSON(m.Steps); err != nil {
		return nil, fmt.Errorf("failed to parse steps: %w", err)
	}
	if err := run.SetMetricsFromJSON(m.Metrics); err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}
	return run, nil
}
