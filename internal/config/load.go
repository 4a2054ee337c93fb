package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a
// config file. Environment variables (AUTOPRESS_ prefix, dots replaced
// with underscores) take precedence over values from config files.
// Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("AUTOPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about; keys without
	// defaults must be bound explicitly for env-only configuration.
	for _, key := range []string{"database.url", "llm.gemini_api_key", "redis.password"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// A missing config file is fine; env vars may carry everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults matching the reference deployment:
// per-category worker counts 5/3/2, 2h job TTL, 30d metrics TTL.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "prompts/article.tmpl")

	v.SetDefault("pipeline.generation_workers", 5)
	v.SetDefault("pipeline.publishing_workers", 3)
	v.SetDefault("pipeline.tracking_workers", 2)
	v.SetDefault("pipeline.generation_stagger", 5*time.Second)
	v.SetDefault("pipeline.queue_poll_interval", time.Second)
	v.SetDefault("pipeline.job_ttl", 2*time.Hour)
	v.SetDefault("pipeline.metrics_ttl", 30*24*time.Hour)

	v.SetDefault("analytics.base_url", "http://localhost:9090")
}
