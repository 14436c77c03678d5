package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/events"
)

// JobSubmitter is the slice of the runner the event handler needs.
type JobSubmitter interface {
	Submit(ctx context.Context, job Job) error
}

// AnalysisEventHandler implements events.EventHandler: it turns
// process-analysis job request events into durable jobs on the runner.
type AnalysisEventHandler struct {
	factory *AnalysisJobFactory
	runner  JobSubmitter
	logger  *slog.Logger
}

// NewAnalysisEventHandler creates a new event handler around the given
// factory and runner.
func NewAnalysisEventHandler(
	factory *AnalysisJobFactory,
	runner JobSubmitter,
	logger *slog.Logger,
) *AnalysisEventHandler {
	return &AnalysisEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "analysis_event_handler"),
	}
}

// Ensure AnalysisEventHandler implements events.EventHandler
var _ events.EventHandler = (*AnalysisEventHandler)(nil)

// HandleEvent processes job request events of the process-analysis type,
// ignoring every other type so additional handlers can coexist.
func (h *AnalysisEventHandler) HandleEvent(
	ctx context.Context,
	event *events.JobRequestEvent,
) error {
	if event.Type != JobTypeProcessAnalysis {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			"error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	job, err := h.factory.CreateJob(payload.UserID)
	if err != nil {
		h.logger.Error("failed to create analysis job",
			"error", err,
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create analysis job: %w", err)
	}

	if err := h.runner.Submit(ctx, job); err != nil {
		h.logger.Error("failed to submit analysis job",
			"error", err,
			"job_id", job.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit analysis job: %w", err)
	}

	h.logger.Info("analysis job submitted",
		"job_id", job.ID(),
		"user_id", payload.UserID,
		"event_id", event.ID)
	return nil
}
