package handler

import (
	"net/http"
	"strconv"
	"time"

	appsync "github.com/catalogsync/backend/internal/application/sync"
	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncHandler exposes the pipeline over HTTP
type SyncHandler struct {
	BaseHandler
	orchestrator *appsync.Orchestrator
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(orchestrator *appsync.Orchestrator) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator}
}

// StepConfigRequest is the caller-supplied step configuration. Decimal
// values travel as strings; only their shape is validated here, not
// their bounds.
type StepConfigRequest struct {
	ShippingCost    string `json:"shipping_cost" binding:"omitempty,decimalstr"`
	FeeA            string `json:"fee_a" binding:"omitempty,decimalstr"`
	FeeB            string `json:"fee_b" binding:"omitempty,decimalstr"`
	PreparationDays int    `json:"preparation_days" binding:"omitempty,min=0"`
}

// RunStepRequest is the body of a step invocation
type RunStepRequest struct {
	StepName string            `json:"step_name" binding:"required"`
	Config   StepConfigRequest `json:"config"`
}

// toStepConfig parses the request into the application config. Missing
// monetary values default to zero shipping and identity fee multipliers.
func (r *RunStepRequest) toStepConfig() (appsync.StepConfig, error) {
	cfg := appsync.StepConfig{
		ShippingCost:    decimal.Zero,
		FeeA:            decimal.NewFromInt(1),
		FeeB:            decimal.NewFromInt(1),
		PreparationDays: r.Config.PreparationDays,
	}

	var err error
	if r.Config.ShippingCost != "" {
		if cfg.ShippingCost, err = decimal.NewFromString(r.Config.ShippingCost); err != nil {
			return cfg, err
		}
	}
	if r.Config.FeeA != "" {
		if cfg.FeeA, err = decimal.NewFromString(r.Config.FeeA); err != nil {
			return cfg, err
		}
	}
	if r.Config.FeeB != "" {
		if cfg.FeeB, err = decimal.NewFromString(r.Config.FeeB); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// StepResultResponse is the serialized outcome of one step invocation
type StepResultResponse struct {
	Status     string         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Counters   map[string]int `json:"counters,omitempty"`
	Error      string         `json:"error,omitempty"`
	FinishedAt time.Time      `json:"finished_at"`
}

func toStepResultResponse(r pipeline.StepResult) StepResultResponse {
	return StepResultResponse{
		Status:     string(r.Status),
		DurationMS: r.Duration.Milliseconds(),
		Counters:   r.Counters,
		Error:      r.Error,
		FinishedAt: r.FinishedAt,
	}
}

// RunResponse is the serialized run record
type RunResponse struct {
	ID          string                        `json:"id"`
	Status      string                        `json:"status"`
	CurrentStep string                        `json:"current_step,omitempty"`
	Steps       map[string]StepResultResponse `json:"steps"`
	Metrics     map[string]int                `json:"metrics"`
	Version     int                           `json:"version"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

func toRunResponse(run *pipeline.SyncRun) RunResponse {
	steps := make(map[string]StepResultResponse, len(run.Steps))
	for name, result := range run.Steps {
		steps[string(name)] = toStepResultResponse(result)
	}
	return RunResponse{
		ID:          run.ID.String(),
		Status:      string(run.Status),
		CurrentStep: string(run.CurrentStep),
		Steps:       steps,
		Metrics:     run.Metrics,
		Version:     run.Version,
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}

// CreateRun handles POST /api/v1/sync/runs
func (h *SyncHandler) CreateRun(c *gin.Context) {
	run, err := h.orchestrator.CreateRun(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toRunResponse(run))
}

// RunStep handles POST /api/v1/sync/runs/:id/steps
func (h *SyncHandler) RunStep(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_RUN_ID", "run id must be a UUID")
		return
	}

	var req RunStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	cfg, err := req.toStepConfig()
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	result, err := h.orchestrator.RunStep(c.Request.Context(), runID, pipeline.StepName(req.StepName), cfg)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	payload := gin.H{"step_result": toStepResultResponse(result)}
	if result.Status == pipeline.StepStatusFailed {
		h.Failure(c, payload, "STEP_FAILED", result.Error)
		return
	}
	h.Success(c, payload)
}

// GetRun handles GET /api/v1/sync/runs/:id
func (h *SyncHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_RUN_ID", "run id must be a UUID")
		return
	}

	run, err := h.orchestrator.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toRunResponse(run))
}

// ListRuns handles GET /api/v1/sync/runs
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.Error(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.orchestrator.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, toRunResponse(run))
	}
	h.Success(c, responses)
}
