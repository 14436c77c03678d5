package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/routinely/routinely-api/internal/api"
	apiMiddleware "github.com/routinely/routinely-api/internal/api/middleware"
	"github.com/rs/cors"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	analysisHandler := api.NewAnalysisHandler(
		app.miningService,
		app.generationService,
		app.priorityService,
		app.featureGate,
		app.eventEmitter,
		app.logger,
	)
	noteHandler := api.NewProcessNoteHandler(app.noteStore, app.logger)
	taskHandler := api.NewTaskHandler(app.taskStore, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			// Analysis triggers
			r.Post("/analysis", analysisHandler.RunAnalysis)
			r.Post("/analysis/mine", analysisHandler.Mine)
			r.Post("/analysis/generate", analysisHandler.GenerateTasks)
			r.Post("/analysis/reprioritize", analysisHandler.Reprioritize)

			// Review surfaces
			r.Get("/process-notes", noteHandler.ListProcessNotes)
			r.Get("/tasks", taskHandler.ListOpenTasks)
		})

		r.Patch("/process-notes/{noteID}", noteHandler.ReviewProcessNote)
		r.Patch("/tasks/{taskID}/status", taskHandler.UpdateTaskStatus)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
