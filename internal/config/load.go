package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables read by Load, e.g.
// ROUTINELY_SERVER_PORT or ROUTINELY_DATABASE_URL.
const envPrefix = "ROUTINELY"

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from the
		// environment. Any other read failure is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Registering the key (even empty) lets AutomaticEnv surface it
	// through Unmarshal.
	v.SetDefault("database.url", "")

	v.SetDefault("mining.min_len", 3)
	v.SetDefault("mining.max_len", 7)
	v.SetDefault("mining.recurrence_threshold", 3)

	v.SetDefault("task_generation.min_occurrence", 3)
	v.SetDefault("task_generation.recency_days", 30)

	v.SetDefault("prioritization.default_score", 0.5)
	v.SetDefault("prioritization.epsilon", 1e-6)

	v.SetDefault("features.reprioritization", true)
	v.SetDefault("features.background_jobs", true)

	v.SetDefault("worker.worker_count", 2)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.stuck_job_mins", 30)
}
