package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/domain/scoring"
	"github.com/routinely/routinely-api/internal/testutils"
)

type generationFixture struct {
	noteStore *testutils.FakeProcessNoteStore
	taskStore *testutils.FakeTaskStore
	service   TaskGenerationService
	now       time.Time
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()

	noteStore := testutils.NewFakeProcessNoteStore()
	taskStore := testutils.NewFakeTaskStore()
	db := testutils.NewStubDB()
	t.Cleanup(func() { _ = db.Close() })

	svc, err := NewTaskGenerationService(
		NewProcessNoteRepositoryAdapter(noteStore, db),
		NewTaskRepositoryAdapter(taskStore, db),
		GenerationParams{MinOccurrence: 3, RecencyDays: 30},
		scoring.NewDefaultParams(),
		newTestLogger(),
	)
	require.NoError(t, err, "Creating the generation service should succeed")

	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	svc.(*taskGenerationService).nowFn = func() time.Time { return now }

	return &generationFixture{
		noteStore: noteStore,
		taskStore: taskStore,
		service:   svc,
		now:       now,
	}
}

// seedNote stores a note observed the given number of days before the
// fixture's pinned clock.
func (f *generationFixture) seedNote(
	t *testing.T,
	userID uuid.UUID,
	description string,
	occurrences int,
	daysAgo int,
) *domain.ProcessNote {
	t.Helper()

	last := f.now.AddDate(0, 0, -daysAgo)
	note, err := domain.NewProcessNote(
		userID,
		"Review recurring process: "+description,
		description,
		[]uuid.UUID{uuid.New()},
		occurrences,
		last.AddDate(0, 0, -7),
		last,
	)
	require.NoError(t, err)
	require.NoError(t, f.noteStore.Create(context.Background(), note))
	return note
}

func TestGenerationRejectsNilUser(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)

	_, err := fixture.service.Generate(context.Background(), uuid.Nil, GenerationParams{})
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestGenerationCreatesSuggestedTask(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	note := fixture.seedNote(t, userID, "open -> edit -> commit", 5, 2)

	created, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, created, 1)

	task := created[0]
	assert.Equal(t, userID, task.UserID)
	assert.Equal(t, note.InferredTaskName, task.Description)
	assert.Equal(t, domain.TaskStatusSuggested, task.Status)
	assert.Equal(t, domain.TaskSourceProcessNote, task.SourceType)
	assert.Equal(t, note.ID.String(), task.SourceIdentifier)
	require.NotNil(t, task.ProcessNoteID)
	assert.Equal(t, note.ID, *task.ProcessNoteID)
	assert.Contains(t, task.Notes, "observed 5 times")

	expectedScore := scoring.ComputePriority(
		note.OccurrenceCount, note.LastObservedAt, fixture.now, scoring.NewDefaultParams())
	require.NotNil(t, task.PriorityScore)
	assert.InDelta(t, expectedScore, *task.PriorityScore, 1e-9)

	// The task landed in the store, not just in the return value.
	stored, err := fixture.taskStore.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Description, stored.Description)
}

func TestGenerationFallsBackToStepsDescription(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	// Notes written outside the miner may carry no inferred name.
	last := fixture.now.AddDate(0, 0, -2)
	note := &domain.ProcessNote{
		ID:                uuid.New(),
		UserID:            userID,
		StepsDescription:  "open -> edit -> commit",
		SourceActivityIDs: []uuid.UUID{uuid.New()},
		OccurrenceCount:   5,
		FirstObservedAt:   last.AddDate(0, 0, -7),
		LastObservedAt:    last,
	}
	require.NoError(t, fixture.noteStore.Create(ctx, note))

	created, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err, "A nameless note must not abort the pass")
	require.Len(t, created, 1)
	assert.Equal(t, "open -> edit -> commit", created[0].Description)
}

func TestGenerationTruncatesLongFallbackDescription(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	steps := strings.Repeat("step -> ", 40) + "done"
	last := fixture.now.AddDate(0, 0, -2)
	note := &domain.ProcessNote{
		ID:                uuid.New(),
		UserID:            userID,
		StepsDescription:  steps,
		SourceActivityIDs: []uuid.UUID{uuid.New()},
		OccurrenceCount:   5,
		FirstObservedAt:   last.AddDate(0, 0, -7),
		LastObservedAt:    last,
	}
	require.NoError(t, fixture.noteStore.Create(ctx, note))

	created, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, created, 1)

	description := created[0].Description
	assert.Len(t, description, maxFallbackDescriptionLen+len("..."))
	assert.True(t, strings.HasSuffix(description, "..."))
	assert.Equal(t, steps[:maxFallbackDescriptionLen], strings.TrimSuffix(description, "..."))
}

func TestGenerationSkipsNotesWithActiveTask(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	fixture.seedNote(t, userID, "open -> edit -> commit", 5, 2)

	first, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The suggested task is still active, so the note stays blocked.
	second, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	assert.Empty(t, second, "A note with an active task must not spawn another")
	assert.Len(t, fixture.taskStore.Tasks, 1)
}

func TestGenerationResumesAfterTerminalTask(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	fixture.seedNote(t, userID, "open -> edit -> commit", 5, 2)

	first, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, fixture.taskStore.UpdateStatus(
		ctx, first[0].ID, domain.TaskStatusCompleted))

	second, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	assert.Len(t, second, 1, "A completed task no longer blocks the note")
	assert.Len(t, fixture.taskStore.Tasks, 2)
}

func TestGenerationFiltersByOccurrenceAndRecency(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	fixture.seedNote(t, userID, "qualifies", 5, 2)
	fixture.seedNote(t, userID, "too rare", 2, 2)
	fixture.seedNote(t, userID, "too stale", 10, 45)

	created, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Review recurring process: qualifies", created[0].Description)
}

func TestGenerationOrdersByRecency(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	fixture.seedNote(t, userID, "older pattern", 5, 10)
	fixture.seedNote(t, userID, "fresher pattern", 5, 1)

	created, err := fixture.service.Generate(ctx, userID, GenerationParams{})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Review recurring process: fresher pattern", created[0].Description)
	assert.Equal(t, "Review recurring process: older pattern", created[1].Description)
}

func TestGenerationNoQualifyingNotes(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)

	created, err := fixture.service.Generate(context.Background(), uuid.New(), GenerationParams{})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestGenerationParamOverrides(t *testing.T) {
	t.Parallel()
	fixture := newGenerationFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	fixture.seedNote(t, userID, "rare pattern", 2, 2)

	// The per-call threshold overrides the configured default of 3.
	created, err := fixture.service.Generate(ctx, userID, GenerationParams{MinOccurrence: 2})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}
