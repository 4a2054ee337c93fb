package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Routing  RoutingConfig  `mapstructure:"routing"`

	Analytics AnalyticsConfig `mapstructure:"analytics" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains connection settings for the job store and the
// delayed task queues.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// LLMConfig contains all content-generator integration settings.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName          string `mapstructure:"model_name" validate:"required"`
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"required"`
}

// PipelineConfig tunes the orchestration core: worker pool sizes per
// task category, dispatch staggering and store TTLs.
type PipelineConfig struct {
	// GenerationWorkers bounds concurrent content-generation tasks.
	GenerationWorkers int `mapstructure:"generation_workers" validate:"required,gt=0"`

	// PublishingWorkers bounds concurrent publish tasks.
	PublishingWorkers int `mapstructure:"publishing_workers" validate:"required,gt=0"`

	// TrackingWorkers bounds concurrent performance-tracking tasks.
	TrackingWorkers int `mapstructure:"tracking_workers" validate:"required,gt=0"`

	// GenerationStagger is the per-priority dispatch delay between
	// generation tasks of one batch job.
	GenerationStagger time.Duration `mapstructure:"generation_stagger" validate:"required"`

	// QueuePollInterval is how often idle workers poll the delayed
	// queues for due tasks.
	QueuePollInterval time.Duration `mapstructure:"queue_poll_interval" validate:"required"`

	// JobTTL bounds how long job records are retained.
	JobTTL time.Duration `mapstructure:"job_ttl" validate:"required"`

	// MetricsTTL bounds how long performance records are retained.
	MetricsTTL time.Duration `mapstructure:"metrics_ttl" validate:"required"`
}

// AnalyticsConfig points at the external metrics backend the
// performance tracker pulls from.
type AnalyticsConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// RoutingSite is one configured publishing destination.
type RoutingSite struct {
	ID         string   `mapstructure:"id" validate:"required"`
	Name       string   `mapstructure:"name"`
	BaseURL    string   `mapstructure:"base_url"`
	Categories []string `mapstructure:"categories"`
	Keywords   []string `mapstructure:"keywords"`
	IsActive   bool     `mapstructure:"is_active"`
	Priority   int      `mapstructure:"priority"`
}

// RoutingRule is one configured destination-routing matcher.
type RoutingRule struct {
	Keywords     []string `mapstructure:"keywords"`
	Categories   []string `mapstructure:"categories"`
	TargetSiteID string   `mapstructure:"target_site_id" validate:"required"`
	Priority     int      `mapstructure:"priority"`
	Description  string   `mapstructure:"description"`
}

// RoutingConfig holds the site set, routing rules, the fixed
// content-type lookup table, and the fallback destination.
type RoutingConfig struct {
	Sites          []RoutingSite     `mapstructure:"sites"`
	Rules          []RoutingRule     `mapstructure:"rules"`
	ContentTypeMap map[string]string `mapstructure:"content_type_map"`
	DefaultSiteID  string            `mapstructure:"default_site_id"`
}
