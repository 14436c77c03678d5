package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/domain/sequence"
	"github.com/routinely/routinely-api/internal/events"
	"github.com/routinely/routinely-api/internal/service"
	"github.com/routinely/routinely-api/internal/worker"
)

func newHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMiningService struct {
	result service.MineResult
	err    error
	params sequence.Params
}

func (f *fakeMiningService) Mine(
	_ context.Context,
	_ uuid.UUID,
	params sequence.Params,
) (service.MineResult, error) {
	f.params = params
	return f.result, f.err
}

type fakeGenerationService struct {
	tasks []*domain.Task
	err   error
}

func (f *fakeGenerationService) Generate(
	_ context.Context,
	_ uuid.UUID,
	_ service.GenerationParams,
) ([]*domain.Task, error) {
	return f.tasks, f.err
}

type fakePriorityService struct {
	adjustments []service.PriorityAdjustment
	err         error
	applied     bool
}

func (f *fakePriorityService) Reprioritize(
	_ context.Context,
	_ uuid.UUID,
	applyChanges bool,
) ([]service.PriorityAdjustment, error) {
	f.applied = applyChanges
	return f.adjustments, f.err
}

type allowAllGate struct{ enabled bool }

func (g allowAllGate) Enabled(_ context.Context, _ service.Feature, _ uuid.UUID) bool {
	return g.enabled
}

type recordingEmitter struct {
	emitted []*events.JobRequestEvent
	err     error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.JobRequestEvent) error {
	e.emitted = append(e.emitted, event)
	return e.err
}

type analysisHarness struct {
	mining   *fakeMiningService
	gen      *fakeGenerationService
	priority *fakePriorityService
	emitter  *recordingEmitter
	router   chi.Router
}

func newAnalysisHarness(gateEnabled bool) *analysisHarness {
	h := &analysisHarness{
		mining:   &fakeMiningService{},
		gen:      &fakeGenerationService{},
		priority: &fakePriorityService{},
		emitter:  &recordingEmitter{},
	}

	handler := NewAnalysisHandler(
		h.mining, h.gen, h.priority,
		allowAllGate{enabled: gateEnabled},
		h.emitter,
		newHandlerLogger(),
	)

	router := chi.NewRouter()
	router.Route("/api/users/{userID}", func(r chi.Router) {
		r.Post("/analysis", handler.RunAnalysis)
		r.Post("/analysis/mine", handler.Mine)
		r.Post("/analysis/generate", handler.GenerateTasks)
		r.Post("/analysis/reprioritize", handler.Reprioritize)
	})
	h.router = router
	return h
}

func (h *analysisHarness) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

func TestMineEndpoint(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	harness.mining.result = service.MineResult{NotesCreated: 2, NotesUpdated: 1}
	userID := uuid.New()

	recorder := harness.do(http.MethodPost, "/api/users/"+userID.String()+"/analysis/mine", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response MineResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 2, response.NotesCreated)
	assert.Equal(t, 1, response.NotesUpdated)
}

func TestMineEndpointPassesOverrides(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	userID := uuid.New()

	recorder := harness.do(http.MethodPost,
		"/api/users/"+userID.String()+"/analysis/mine",
		MineRequest{MinLen: 2, MaxLen: 4, RecurrenceThreshold: 5})
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, 2, harness.mining.params.MinLen)
	assert.Equal(t, 4, harness.mining.params.MaxLen)
	assert.Equal(t, 5, harness.mining.params.RecurrenceThreshold)
}

func TestMineEndpointInvalidUserID(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)

	recorder := harness.do(http.MethodPost, "/api/users/not-a-uuid/analysis/mine", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMineEndpointRejectsBadOverrides(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	userID := uuid.New()

	recorder := harness.do(http.MethodPost,
		"/api/users/"+userID.String()+"/analysis/mine",
		MineRequest{MinLen: -1})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGenerateEndpoint(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	userID := uuid.New()
	score := 0.8
	noteID := uuid.New()
	harness.gen.tasks = []*domain.Task{{
		ID:            uuid.New(),
		UserID:        userID,
		ProcessNoteID: &noteID,
		Description:   "Review recurring process: a -> b -> c",
		SourceType:    domain.TaskSourceProcessNote,
		PriorityScore: &score,
		Status:        domain.TaskStatusSuggested,
	}}

	recorder := harness.do(http.MethodPost,
		"/api/users/"+userID.String()+"/analysis/generate", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response GenerateResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Tasks, 1)
	assert.Equal(t, "suggested", response.Tasks[0].Status)
	require.NotNil(t, response.Tasks[0].ProcessNoteID)
	assert.Equal(t, noteID.String(), *response.Tasks[0].ProcessNoteID)
}

func TestReprioritizeEndpoint(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	userID := uuid.New()
	taskID := uuid.New()
	harness.priority.adjustments = []service.PriorityAdjustment{{
		TaskID:         taskID,
		OriginalScore:  0.5,
		SuggestedScore: 0.65,
	}}

	recorder := harness.do(http.MethodPost,
		"/api/users/"+userID.String()+"/analysis/reprioritize",
		ReprioritizeRequest{ApplyChanges: true})
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.True(t, harness.priority.applied)

	var response ReprioritizeResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Applied)
	require.Len(t, response.Adjustments, 1)
	assert.Equal(t, taskID.String(), response.Adjustments[0].TaskID)
	assert.InDelta(t, 0.65, response.Adjustments[0].SuggestedScore, 1e-9)
}

func TestReprioritizeEndpointFeatureDisabled(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	harness.priority.err = service.ErrFeatureDisabled
	userID := uuid.New()

	recorder := harness.do(http.MethodPost,
		"/api/users/"+userID.String()+"/analysis/reprioritize", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "This feature is disabled")
}

func TestRunAnalysisEndpoint(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(true)
	userID := uuid.New()

	recorder := harness.do(http.MethodPost, "/api/users/"+userID.String()+"/analysis", nil)
	require.Equal(t, http.StatusAccepted, recorder.Code)

	require.Len(t, harness.emitter.emitted, 1)
	event := harness.emitter.emitted[0]
	assert.Equal(t, worker.JobTypeProcessAnalysis, event.Type)

	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, userID, payload.UserID)

	var response AnalysisJobResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "accepted", response.Status)
	assert.Equal(t, event.ID.String(), response.EventID)
}

func TestRunAnalysisEndpointGatedOff(t *testing.T) {
	t.Parallel()
	harness := newAnalysisHarness(false)
	userID := uuid.New()

	recorder := harness.do(http.MethodPost, "/api/users/"+userID.String()+"/analysis", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Empty(t, harness.emitter.emitted)
}
