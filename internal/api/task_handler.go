package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/api/shared"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/store"
)

// UpdateTaskStatusRequest carries a task's new lifecycle state.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TaskListResponse lists a user's open tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// TaskHandler exposes the review surface over suggested tasks.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With("component", "task_handler"),
	}
}

// ListOpenTasks handles GET /api/users/{userID}/tasks requests and
// returns the user's non-terminal tasks.
func (h *TaskHandler) ListOpenTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	tasks, err := h.taskStore.ListOpenByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasksToResponse(tasks),
	})
}

// UpdateTaskStatus handles PATCH /api/tasks/{taskID}/status requests.
// "acknowledged" is accepted as an alias for "accepted" for clients
// predating the current status vocabulary.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil || taskID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	status := normalizeTaskStatus(req.Status)
	if !domain.IsValidTaskStatus(status) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
		return
	}

	if err := h.taskStore.UpdateStatus(r.Context(), taskID, status); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("task status updated",
		"task_id", taskID,
		"status", string(status))

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

func normalizeTaskStatus(raw string) domain.TaskStatus {
	if raw == "acknowledged" {
		return domain.TaskStatusAccepted
	}
	return domain.TaskStatus(raw)
}
