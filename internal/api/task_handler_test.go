package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/testutils"
)

func newTaskRouter(taskStore *testutils.FakeTaskStore) chi.Router {
	handler := NewTaskHandler(taskStore, newHandlerLogger())

	router := chi.NewRouter()
	router.Get("/api/users/{userID}/tasks", handler.ListOpenTasks)
	router.Patch("/api/tasks/{taskID}/status", handler.UpdateTaskStatus)
	return router
}

func seedStoredTask(
	t *testing.T,
	taskStore *testutils.FakeTaskStore,
	userID uuid.UUID,
	status domain.TaskStatus,
) *domain.Task {
	t.Helper()
	score := 0.6
	task := &domain.Task{
		ID:            uuid.New(),
		UserID:        userID,
		Description:   "Review recurring process: a -> b -> c",
		SourceType:    domain.TaskSourceProcessNote,
		PriorityScore: &score,
		Status:        status,
	}
	require.NoError(t, taskStore.Create(context.Background(), task))
	return task
}

func TestListOpenTasksEndpoint(t *testing.T) {
	t.Parallel()
	taskStore := testutils.NewFakeTaskStore()
	router := newTaskRouter(taskStore)
	userID := uuid.New()

	seedStoredTask(t, taskStore, userID, domain.TaskStatusSuggested)
	seedStoredTask(t, taskStore, userID, domain.TaskStatusCompleted)
	seedStoredTask(t, taskStore, uuid.New(), domain.TaskStatusSuggested)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/tasks", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response TaskListResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Tasks, 1, "Terminal and foreign tasks are excluded")
	assert.Equal(t, userID.String(), response.Tasks[0].UserID)
}

func TestListOpenTasksEndpointInvalidUser(t *testing.T) {
	t.Parallel()
	router := newTaskRouter(testutils.NewFakeTaskStore())

	req := httptest.NewRequest(http.MethodGet, "/api/users/junk/tasks", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTaskStatusEndpoint(t *testing.T) {
	t.Parallel()
	taskStore := testutils.NewFakeTaskStore()
	router := newTaskRouter(taskStore)
	task := seedStoredTask(t, taskStore, uuid.New(), domain.TaskStatusSuggested)

	body, _ := json.Marshal(UpdateTaskStatusRequest{Status: "in_progress"})
	req := httptest.NewRequest(http.MethodPatch,
		"/api/tasks/"+task.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response TaskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "in_progress", response.Status)

	stored, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, stored.Status)
}

func TestUpdateTaskStatusEndpointAcknowledgedAlias(t *testing.T) {
	t.Parallel()
	taskStore := testutils.NewFakeTaskStore()
	router := newTaskRouter(taskStore)
	task := seedStoredTask(t, taskStore, uuid.New(), domain.TaskStatusSuggested)

	body, _ := json.Marshal(UpdateTaskStatusRequest{Status: "acknowledged"})
	req := httptest.NewRequest(http.MethodPatch,
		"/api/tasks/"+task.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	stored, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusAccepted, stored.Status)
}

func TestUpdateTaskStatusEndpointRejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	taskStore := testutils.NewFakeTaskStore()
	router := newTaskRouter(taskStore)
	task := seedStoredTask(t, taskStore, uuid.New(), domain.TaskStatusSuggested)

	body, _ := json.Marshal(UpdateTaskStatusRequest{Status: "someday"})
	req := httptest.NewRequest(http.MethodPatch,
		"/api/tasks/"+task.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTaskStatusEndpointUnknownTask(t *testing.T) {
	t.Parallel()
	router := newTaskRouter(testutils.NewFakeTaskStore())

	body, _ := json.Marshal(UpdateTaskStatusRequest{Status: "accepted"})
	req := httptest.NewRequest(http.MethodPatch,
		"/api/tasks/"+uuid.New().String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
