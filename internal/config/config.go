package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"          validate:"required"`
	Database       DatabaseConfig       `mapstructure:"database"        validate:"required"`
	Mining         MiningConfig         `mapstructure:"mining"          validate:"required"`
	TaskGeneration TaskGenerationConfig `mapstructure:"task_generation" validate:"required"`
	Prioritization PrioritizationConfig `mapstructure:"prioritization"`
	Features       FeaturesConfig       `mapstructure:"features"`
	Worker         WorkerConfig         `mapstructure:"worker"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// MiningConfig carries the default parameters for sequence mining.
// Callers may override them per request.
type MiningConfig struct {
	MinLen              int `mapstructure:"min_len"              validate:"required,gt=0"`
	MaxLen              int `mapstructure:"max_len"              validate:"required,gtefield=MinLen"`
	RecurrenceThreshold int `mapstructure:"recurrence_threshold" validate:"required,gt=0"`
}

// TaskGenerationConfig carries the default parameters for task generation.
type TaskGenerationConfig struct {
	MinOccurrence int `mapstructure:"min_occurrence" validate:"required,gt=0"`
	RecencyDays   int `mapstructure:"recency_days"   validate:"required,gt=0"`
}

// PrioritizationConfig overrides the most commonly tuned scoring knobs.
// Zero values keep the built-in scoring defaults.
type PrioritizationConfig struct {
	DefaultScore float64 `mapstructure:"default_score" validate:"omitempty,gte=0,lte=1"`
	Epsilon      float64 `mapstructure:"epsilon"       validate:"omitempty,gt=0,lt=1"`
}

// FeaturesConfig contains tenant-level feature flags. Flags default to
// off; the boundary layer consults them before invoking the engine.
type FeaturesConfig struct {
	Reprioritization bool `mapstructure:"reprioritization"`
	BackgroundJobs   bool `mapstructure:"background_jobs"`
}

// WorkerConfig tunes the background job runner.
type WorkerConfig struct {
	WorkerCount  int `mapstructure:"worker_count"   validate:"omitempty,gt=0"`
	QueueSize    int `mapstructure:"queue_size"     validate:"omitempty,gt=0"`
	StuckJobMins int `mapstructure:"stuck_job_mins" validate:"omitempty,gt=0"`
}
