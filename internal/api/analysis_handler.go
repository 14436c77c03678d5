package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/api/shared"
	"github.com/routinely/routinely-api/internal/domain/sequence"
	"github.com/routinely/routinely-api/internal/events"
	"github.com/routinely/routinely-api/internal/service"
	"github.com/routinely/routinely-api/internal/worker"
)

// MineRequest carries optional overrides for one mining pass.
type MineRequest struct {
	MinLen              int `json:"min_len"              validate:"omitempty,gt=0"`
	MaxLen              int `json:"max_len"              validate:"omitempty,gt=0"`
	RecurrenceThreshold int `json:"recurrence_threshold" validate:"omitempty,gt=0"`
}

// MineResponse reports the outcome of a mining pass.
type MineResponse struct {
	NotesCreated int `json:"notes_created"`
	NotesUpdated int `json:"notes_updated"`
}

// GenerateRequest carries optional overrides for one generation pass.
type GenerateRequest struct {
	MinOccurrence int `json:"min_occurrence" validate:"omitempty,gt=0"`
	RecencyDays   int `json:"recency_days"   validate:"omitempty,gt=0"`
}

// GenerateResponse lists the tasks a generation pass created.
type GenerateResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ReprioritizeRequest selects between a dry run and a persisted pass.
type ReprioritizeRequest struct {
	ApplyChanges bool `json:"apply_changes"`
}

// PriorityAdjustmentResponse reports one task's re-scoring outcome.
type PriorityAdjustmentResponse struct {
	TaskID         string  `json:"task_id"`
	OriginalScore  float64 `json:"original_score"`
	SuggestedScore float64 `json:"suggested_score"`
}

// ReprioritizeResponse lists every considered task's adjustment.
type ReprioritizeResponse struct {
	Adjustments []PriorityAdjustmentResponse `json:"adjustments"`
	Applied     bool                         `json:"applied"`
}

// AnalysisJobResponse acknowledges an accepted background pipeline run.
type AnalysisJobResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// AnalysisHandler exposes the three engine operations and the async
// pipeline trigger over HTTP.
type AnalysisHandler struct {
	miningService     service.MiningService
	generationService service.TaskGenerationService
	priorityService   service.TaskPriorityService
	gate              service.FeatureGate
	emitter           events.EventEmitter
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(
	miningService service.MiningService,
	generationService service.TaskGenerationService,
	priorityService service.TaskPriorityService,
	gate service.FeatureGate,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnalysisHandler{
		miningService:     miningService,
		generationService: generationService,
		priorityService:   priorityService,
		gate:              gate,
		emitter:           emitter,
		validator:         validator.New(),
		logger:            logger.With("component", "analysis_handler"),
	}
}

// Mine handles POST /api/users/{userID}/analysis/mine requests. The body
// is optional; absent fields fall back to the configured defaults.
func (h *AnalysisHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req MineRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	result, err := h.miningService.Mine(r.Context(), userID, sequence.Params{
		MinLen:              req.MinLen,
		MaxLen:              req.MaxLen,
		RecurrenceThreshold: req.RecurrenceThreshold,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MineResponse{
		NotesCreated: result.NotesCreated,
		NotesUpdated: result.NotesUpdated,
	})
}

// GenerateTasks handles POST /api/users/{userID}/analysis/generate requests.
func (h *AnalysisHandler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	created, err := h.generationService.Generate(r.Context(), userID, service.GenerationParams{
		MinOccurrence: req.MinOccurrence,
		RecencyDays:   req.RecencyDays,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{
		Tasks: tasksToResponse(created),
	})
}

// Reprioritize handles POST /api/users/{userID}/analysis/reprioritize
// requests. A disabled feature gate answers 403 rather than pretending
// the pass ran.
func (h *AnalysisHandler) Reprioritize(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req ReprioritizeRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	adjustments, err := h.priorityService.Reprioritize(r.Context(), userID, req.ApplyChanges)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := ReprioritizeResponse{
		Adjustments: make([]PriorityAdjustmentResponse, len(adjustments)),
		Applied:     req.ApplyChanges,
	}
	for i, adj := range adjustments {
		response.Adjustments[i] = PriorityAdjustmentResponse{
			TaskID:         adj.TaskID.String(),
			OriginalScore:  adj.OriginalScore,
			SuggestedScore: adj.SuggestedScore,
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// RunAnalysis handles POST /api/users/{userID}/analysis requests by
// queueing the full mine/generate/reprioritize pipeline as a background
// job. Returns 202 once the job request is accepted.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromRequest(w, r)
	if !ok {
		return
	}

	if !h.gate.Enabled(r.Context(), service.FeatureBackgroundJobs, userID) {
		shared.RespondWithError(w, r, http.StatusForbidden, "Background analysis is disabled")
		return
	}

	event, err := events.NewJobRequestEvent(worker.JobTypeProcessAnalysis, map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to queue analysis", err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to queue analysis", err)
		return
	}

	h.logger.Info("analysis pipeline queued",
		"user_id", userID,
		"event_id", event.ID)

	shared.RespondWithJSON(w, r, http.StatusAccepted, AnalysisJobResponse{
		EventID: event.ID.String(),
		Status:  "accepted",
	})
}

// userIDFromRequest parses the userID route parameter. On failure it
// writes the error response and reports false.
func (h *AnalysisHandler) userIDFromRequest(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}
