package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/api/shared"
	"github.com/routinely/routinely-api/internal/store"
)

// ReviewProcessNoteRequest carries the reviewer-owned fields of a note.
// Nil fields are left untouched.
type ReviewProcessNoteRequest struct {
	UserFeedback *string   `json:"user_feedback" validate:"omitempty,max=2000"`
	UserTags     *[]string `json:"user_tags"     validate:"omitempty,dive,min=1,max=64"`
}

// ProcessNoteListResponse lists a user's process notes.
type ProcessNoteListResponse struct {
	ProcessNotes []ProcessNoteResponse `json:"process_notes"`
}

// ProcessNoteHandler exposes the human review surface over mined notes.
type ProcessNoteHandler struct {
	noteStore store.ProcessNoteStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewProcessNoteHandler creates a new ProcessNoteHandler.
func NewProcessNoteHandler(noteStore store.ProcessNoteStore, logger *slog.Logger) *ProcessNoteHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProcessNoteHandler{
		noteStore: noteStore,
		validator: validator.New(),
		logger:    logger.With("component", "process_note_handler"),
	}
}

// ListProcessNotes handles GET /api/users/{userID}/process-notes
// requests. Supports min_occurrence and since_days query filters.
func (h *ProcessNoteHandler) ListProcessNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var filter store.ProcessNoteFilter
	if raw := r.URL.Query().Get("min_occurrence"); raw != "" {
		minOccurrence, err := strconv.Atoi(raw)
		if err != nil || minOccurrence < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid min_occurrence")
			return
		}
		filter.MinOccurrence = minOccurrence
	}
	if raw := r.URL.Query().Get("since_days"); raw != "" {
		sinceDays, err := strconv.Atoi(raw)
		if err != nil || sinceDays < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid since_days")
			return
		}
		filter.ObservedSince = time.Now().UTC().AddDate(0, 0, -sinceDays)
	}

	notes, err := h.noteStore.ListByUser(r.Context(), userID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := ProcessNoteListResponse{
		ProcessNotes: make([]ProcessNoteResponse, len(notes)),
	}
	for i, note := range notes {
		response.ProcessNotes[i] = processNoteToResponse(note)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// ReviewProcessNote handles PATCH /api/process-notes/{noteID} requests.
// Only the reviewer-owned feedback and tag fields can change here; the
// mined observation fields stay as the miner wrote them.
func (h *ProcessNoteHandler) ReviewProcessNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil || noteID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid process note ID")
		return
	}

	var req ReviewProcessNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if req.UserFeedback == nil && req.UserTags == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No review fields provided")
		return
	}

	note, err := h.noteStore.GetByID(r.Context(), noteID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if req.UserFeedback != nil {
		note.UserFeedback = *req.UserFeedback
	}
	if req.UserTags != nil {
		note.UserTags = *req.UserTags
	}
	note.UpdatedAt = time.Now().UTC()

	if err := h.noteStore.Update(r.Context(), note); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("process note reviewed",
		"note_id", noteID,
		"user_id", note.UserID)

	shared.RespondWithJSON(w, r, http.StatusOK, processNoteToResponse(note))
}
