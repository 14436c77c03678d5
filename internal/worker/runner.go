package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StuckJobAge defines how long a job can sit in processing state
	// before it is considered stuck and marked failed
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	// If zero, defaults to 5 minutes.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Runner manages background job processing
type Runner struct {
	store      JobStore
	factories  map[string]JobFactory
	jobChan    chan Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewRunner creates a new Runner
func NewRunner(store JobStore, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		factories:  make(map[string]JobFactory),
		jobChan:    make(chan Job, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "job_runner"),
		errHandler: func(job Job, err error) {
			logger.Error("job execution failed",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// RegisterFactory registers the factory used to rebuild persisted jobs
// of one type during recovery.
func (r *Runner) RegisterFactory(factory JobFactory) {
	r.factories[factory.JobType()] = factory
}

// Submit persists a new job and adds it to the queue
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case r.jobChan <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full, try again later")
	}
}

// Start recovers unfinished jobs, then launches the worker pool and the
// stuck-job monitor.
func (r *Runner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	return nil
}

// Stop gracefully shuts down the runner
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
}

// recover requeues jobs left pending or processing by a previous run.
// Records whose type has no registered factory are marked failed so they
// do not linger forever.
func (r *Runner) recover() error {
	ctx := context.Background()

	pending, err := r.store.ListJobsByStatus(ctx, JobStatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	processing, err := r.store.ListJobsByStatus(ctx, JobStatusProcessing, 0)
	if err != nil {
		return fmt.Errorf("failed to list processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	records := append(pending, processing...)
	for _, record := range records {
		factory, ok := r.factories[record.Type]
		if !ok {
			r.logger.Error("no factory registered for persisted job type",
				"job_id", record.ID,
				"job_type", record.Type)
			if err := r.store.UpdateJobStatus(ctx, record.ID, JobStatusFailed,
				"no factory registered for job type"); err != nil {
				r.logger.Error("failed to mark unrecoverable job failed",
					"job_id", record.ID, "error", err)
			}
			continue
		}

		job, err := factory.Rebuild(record)
		if err != nil {
			r.logger.Error("failed to rebuild persisted job",
				"job_id", record.ID,
				"job_type", record.Type,
				"error", err)
			if err := r.store.UpdateJobStatus(ctx, record.ID, JobStatusFailed,
				err.Error()); err != nil {
				r.logger.Error("failed to mark unrecoverable job failed",
					"job_id", record.ID, "error", err)
			}
			continue
		}

		select {
		case r.jobChan <- job:
		default:
			r.logger.Error("failed to requeue job, queue is full",
				"job_id", record.ID,
				"job_type", record.Type)
		}
	}

	return nil
}

// worker consumes jobs from the queue until the runner stops
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("worker stopping")
			return
		case job, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.processJob(job, log)
		}
	}
}

// processJob executes one job, tracking its status transitions in the
// store. Failures are recorded and reported to the error handler, never
// retried here.
func (r *Runner) processJob(job Job, log *slog.Logger) {
	ctx := r.ctx

	if err := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusProcessing, ""); err != nil {
		log.Error("failed to mark job processing",
			"job_id", job.ID(), "error", err)
	}

	log.Info("processing job", "job_id", job.ID(), "job_type", job.Type())

	if err := job.Execute(ctx); err != nil {
		if statusErr := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusFailed,
			err.Error()); statusErr != nil {
			log.Error("failed to mark job failed",
				"job_id", job.ID(), "error", statusErr)
		}
		r.errHandler(job, err)
		return
	}

	if err := r.store.UpdateJobStatus(ctx, job.ID(), JobStatusCompleted, ""); err != nil {
		log.Error("failed to mark job completed",
			"job_id", job.ID(), "error", err)
	}

	log.Info("job completed", "job_id", job.ID(), "job_type", job.Type())
}

// stuckJobMonitor periodically marks jobs failed when they have been in
// processing state longer than the configured age.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			stuck, err := r.store.ListJobsByStatus(r.ctx, JobStatusProcessing, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to list stuck jobs", "error", err)
				continue
			}
			for _, record := range stuck {
				r.logger.Warn("marking stuck job failed",
					"job_id", record.ID,
					"job_type", record.Type,
					"last_update", record.UpdatedAt)
				if err := r.store.UpdateJobStatus(r.ctx, record.ID, JobStatusFailed,
					"job exceeded maximum processing time"); err != nil {
					r.logger.Error("failed to mark stuck job failed",
						"job_id", record.ID, "error", err)
				}
			}
		}
	}
}
