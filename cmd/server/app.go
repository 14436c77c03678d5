package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/routinely/routinely-api/internal/config"
	"github.com/routinely/routinely-api/internal/domain/scoring"
	"github.com/routinely/routinely-api/internal/domain/sequence"
	"github.com/routinely/routinely-api/internal/events"
	"github.com/routinely/routinely-api/internal/platform/featureflags"
	"github.com/routinely/routinely-api/internal/platform/postgres"
	"github.com/routinely/routinely-api/internal/service"
	"github.com/routinely/routinely-api/internal/store"
	"github.com/routinely/routinely-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	activityStore store.ActivityStore
	noteStore     store.ProcessNoteStore
	taskStore     store.TaskStore

	// Engine services
	miningService     service.MiningService
	generationService service.TaskGenerationService
	priorityService   service.TaskPriorityService
	featureGate       service.FeatureGate

	// Event system and background work
	eventEmitter events.EventEmitter
	jobRunner    *worker.Runner
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts core dependencies like
// configuration, logger, and database connection that must be
// established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.activityStore = postgres.NewPostgresActivityStore(db, logger)
	app.noteStore = postgres.NewPostgresProcessNoteStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Repository adapters pair the stores with the database handle so
	// services can run their writes transactionally.
	activityRepo := service.NewActivityRepositoryAdapter(app.activityStore)
	noteRepo := service.NewProcessNoteRepositoryAdapter(app.noteStore, db)
	taskRepo := service.NewTaskRepositoryAdapter(app.taskStore, db)

	app.featureGate = featureflags.NewConfigGate(cfg.Features)

	miningDefaults := sequence.Params{
		MinLen:              cfg.Mining.MinLen,
		MaxLen:              cfg.Mining.MaxLen,
		RecurrenceThreshold: cfg.Mining.RecurrenceThreshold,
	}
	generationDefaults := service.GenerationParams{
		MinOccurrence: cfg.TaskGeneration.MinOccurrence,
		RecencyDays:   cfg.TaskGeneration.RecencyDays,
	}
	scoringParams := scoring.NewDefaultParams()
	if cfg.Prioritization.DefaultScore > 0 {
		scoringParams.DefaultScore = cfg.Prioritization.DefaultScore
	}
	if cfg.Prioritization.Epsilon > 0 {
		scoringParams.Epsilon = cfg.Prioritization.Epsilon
	}

	var err error
	app.miningService, err = service.NewMiningService(
		activityRepo, noteRepo, miningDefaults, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mining service: %w", err)
	}

	app.generationService, err = service.NewTaskGenerationService(
		noteRepo, taskRepo, generationDefaults, scoringParams, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task generation service: %w", err)
	}

	app.priorityService, err = service.NewTaskPriorityService(
		taskRepo, app.featureGate, scoringParams, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task priority service: %w", err)
	}

	// Event emitter links the API layer to the background pipeline.
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	if err := app.setupJobRunner(emitter); err != nil {
		return nil, fmt.Errorf("failed to set up job runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupJobRunner starts the background job runner and registers the
// analysis pipeline factory and its event handler.
func (app *application) setupJobRunner(emitter *events.InMemoryEventEmitter) error {
	jobStore := postgres.NewPostgresJobStore(app.db, app.logger)

	app.jobRunner = worker.NewRunner(jobStore, worker.RunnerConfig{
		WorkerCount: app.config.Worker.WorkerCount,
		QueueSize:   app.config.Worker.QueueSize,
		StuckJobAge: time.Duration(app.config.Worker.StuckJobMins) * time.Minute,
	}, app.logger)

	factory, err := worker.NewAnalysisJobFactory(
		app.miningService,
		app.generationService,
		app.priorityService,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis job factory: %w", err)
	}
	app.jobRunner.RegisterFactory(factory)

	if err := app.jobRunner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	handler := worker.NewAnalysisEventHandler(factory, app.jobRunner, app.logger)
	emitter.RegisterHandler(handler)

	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
