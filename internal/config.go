package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Utilization   UtilizationConfig   `mapstructure:"utilization"`
	Notification  NotificationConfig  `mapstructure:"notification"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// UtilizationConfig tunes the over-allocation calculator.
type UtilizationConfig struct {
	HighThreshold         float64 `mapstructure:"high_threshold"`
	CriticalThreshold     float64 `mapstructure:"critical_threshold"`
	IncludeInactive       bool    `mapstructure:"include_inactive"`
	MaxRangeDays          int     `mapstructure:"max_range_days"`
	DefaultWeeklyCapacity float64 `mapstructure:"default_weekly_capacity"`
	DefaultLookaheadWeeks int     `mapstructure:"default_lookahead_weeks"`
	EvaluateOnChange      bool    `mapstructure:"evaluate_on_allocation_change"`
}

type NotificationConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	WebhookURL     string        `mapstructure:"webhook_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxWorkers     int           `mapstructure:"max_workers"`
	JobQueueSize   int           `mapstructure:"job_queue_size"`
	WorkerPoolSize int           `mapstructure:"worker_pool_size"`
	RatePerMinute  int           `mapstructure:"rate_per_minute"`
	Burst          int           `mapstructure:"burst"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	// ScanInterval is how often the standalone worker re-scans utilization.
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

// ----------------- DEFAULTS -----------------

func DefaultUtilizationConfig() UtilizationConfig {
	policy := capacity.DefaultSeverityPolicy()
	return UtilizationConfig{
		HighThreshold:         policy.HighAbove,
		CriticalThreshold:     policy.CriticalAbove,
		MaxRangeDays:          731,
		DefaultWeeklyCapacity: capacity.DefaultWeeklyCapacity,
		DefaultLookaheadWeeks: 12,
		EvaluateOnChange:      true,
	}
}

// ApplyDefaults fills zero values left by a partial config file.
func (c *Config) ApplyDefaults() {
	defaults := DefaultUtilizationConfig()
	if c.Utilization.HighThreshold == 0 {
		c.Utilization.HighThreshold = defaults.HighThreshold
	}
	if c.Utilization.CriticalThreshold == 0 {
		c.Utilization.CriticalThreshold = defaults.CriticalThreshold
	}
	if c.Utilization.MaxRangeDays == 0 {
		c.Utilization.MaxRangeDays = defaults.MaxRangeDays
	}
	if c.Utilization.DefaultWeeklyCapacity == 0 {
		c.Utilization.DefaultWeeklyCapacity = defaults.DefaultWeeklyCapacity
	}
	if c.Utilization.DefaultLookaheadWeeks == 0 {
		c.Utilization.DefaultLookaheadWeeks = defaults.DefaultLookaheadWeeks
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
	if c.Notification.Timeout == 0 {
		c.Notification.Timeout = 10 * time.Second
	}
	if c.Notification.MaxAttempts == 0 {
		c.Notification.MaxAttempts = 3
	}
	if c.Notification.RetryBackoff == 0 {
		c.Notification.RetryBackoff = 500 * time.Millisecond
	}
	if c.Notification.ScanInterval == 0 {
		c.Notification.ScanInterval = 15 * time.Minute
	}
}

// SeverityPolicy converts the configured thresholds for the calculator.
func (c UtilizationConfig) SeverityPolicy() capacity.SeverityPolicy {
	return capacity.SeverityPolicy{
		HighAbove:     c.HighThreshold,
		CriticalAbove: c.CriticalThreshold,
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration for container deployments.
func LoadConfigFromEnv() *Config {
	defaults := DefaultUtilizationConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Utilization: UtilizationConfig{
			HighThreshold:         getEnvAsFloat("UTILIZATION_HIGH_THRESHOLD", defaults.HighThreshold),
			CriticalThreshold:     getEnvAsFloat("UTILIZATION_CRITICAL_THRESHOLD", defaults.CriticalThreshold),
			IncludeInactive:       getEnvAsBool("UTILIZATION_INCLUDE_INACTIVE", false),
			MaxRangeDays:          getEnvAsInt("UTILIZATION_MAX_RANGE_DAYS", defaults.MaxRangeDays),
			DefaultWeeklyCapacity: getEnvAsFloat("UTILIZATION_DEFAULT_WEEKLY_CAPACITY", defaults.DefaultWeeklyCapacity),
			DefaultLookaheadWeeks: getEnvAsInt("UTILIZATION_DEFAULT_LOOKAHEAD_WEEKS", defaults.DefaultLookaheadWeeks),
			EvaluateOnChange:      getEnvAsBool("UTILIZATION_EVALUATE_ON_ALLOCATION_CHANGE", true),
		},
		Notification: NotificationConfig{
			Enabled:        getEnvAsBool("NOTIFICATION_ENABLED", false),
			WebhookURL:     getEnv("NOTIFICATION_WEBHOOK_URL", ""),
			Timeout:        getEnvAsDuration("NOTIFICATION_TIMEOUT", 10*time.Second),
			MaxWorkers:     getEnvAsInt("NOTIFICATION_MAX_WORKERS", 4),
			JobQueueSize:   getEnvAsInt("NOTIFICATION_JOB_QUEUE_SIZE", 100),
			WorkerPoolSize: getEnvAsInt("NOTIFICATION_WORKER_POOL_SIZE", 4),
			RatePerMinute:  getEnvAsInt("NOTIFICATION_RATE_PER_MINUTE", 60),
			Burst:          getEnvAsInt("NOTIFICATION_BURST", 10),
			MaxAttempts:    getEnvAsInt("NOTIFICATION_MAX_ATTEMPTS", 3),
			RetryBackoff:   getEnvAsDuration("NOTIFICATION_RETRY_BACKOFF", 500*time.Millisecond),
			ScanInterval:   getEnvAsDuration("NOTIFICATION_SCAN_INTERVAL", 15*time.Minute),
		},
	}

	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Utilization.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("utilization config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *UtilizationConfig) Validate() error {
	if c.HighThreshold < capacity.FullUtilization {
		return fmt.Errorf("high_threshold must be >= %.0f", capacity.FullUtilization)
	}
	if c.CriticalThreshold < c.HighThreshold {
		return errors.New("critical_threshold must be >= high_threshold")
	}
	if c.MaxRangeDays <= 0 {
		return errors.New("max_range_days must be positive")
	}
	if c.DefaultWeeklyCapacity <= 0 {
		return errors.New("default_weekly_capacity must be positive")
	}
	return nil
}

func (c *NotificationConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.WebhookURL == "" {
		return errors.New("webhook_url is required when notifications are enabled")
	}
	u, err := url.Parse(c.WebhookURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid webhook_url %q", c.WebhookURL)
	}
	return nil
}
