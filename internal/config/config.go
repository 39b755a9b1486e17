package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Workflow     WorkflowConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	// StatementTimeoutMs bounds every statement; zero leaves the server default.
	StatementTimeoutMs int
	ApplicationName    string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// Addrs holds one address for a standalone server, or several for a cluster.
	Addrs    []string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
}

// AuthConfig defines how platform identities and the scheduler are verified.
type AuthConfig struct {
	// JWTSecret verifies HS256 access tokens issued by the hosting platform.
	JWTSecret string
	// SchedulerKeyHash is the bcrypt hash of the key the external cron presents.
	SchedulerKeyHash string
}

// NotificationConfig holds delivery endpoints and queue sizing.
type NotificationConfig struct {
	EmailFrom    string
	WebhookURL   string
	KafkaBrokers []string
	KafkaTopic   string
	QueueSize    int
	Workers      int
}

// KafkaEnabled reports whether a Kafka sink should be started.
func (n NotificationConfig) KafkaEnabled() bool {
	return len(n.KafkaBrokers) > 0 && n.KafkaTopic != ""
}

// WorkflowConfig carries the product rules of the work order lifecycle.
type WorkflowConfig struct {
	AutoCloseHours       int
	SweepIntervalSeconds int
	SweepBatchSize       int
	AllowAdminFastTrack  bool
}

// AutoCloseWindow returns the reporter closure window.
func (w WorkflowConfig) AutoCloseWindow() time.Duration {
	return time.Duration(w.AutoCloseHours) * time.Hour
}

// SweepInterval returns how often the auto-close worker runs.
func (w WorkflowConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepIntervalSeconds) * time.Second
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "workorder-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:                os.Getenv("POSTGRES_DSN"),
			MaxConns:           int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:           int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:      getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:     int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:     int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			StatementTimeoutMs: getEnvAsInt("POSTGRES_STATEMENT_TIMEOUT_MS", 15000),
		},
		Redis: RedisConfig{
			Addrs:    getEnvAsListOr("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SchedulerKeyHash: os.Getenv("AUTH_SCHEDULER_KEY_HASH"),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "maintenance@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:   getEnv("KAFKA_NOTIFICATION_TOPIC", "work-order-notifications"),
			QueueSize:    getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:      getEnvAsInt("NOTIFY_WORKERS", 2),
		},
		Workflow: WorkflowConfig{
			AutoCloseHours:       getEnvAsInt("WORKFLOW_AUTO_CLOSE_HOURS", 24),
			SweepIntervalSeconds: getEnvAsInt("WORKFLOW_SWEEP_INTERVAL_SECONDS", 300),
			SweepBatchSize:       getEnvAsInt("WORKFLOW_SWEEP_BATCH_SIZE", 100),
			AllowAdminFastTrack:  getEnvAsBool("WORKFLOW_ALLOW_ADMIN_FAST_TRACK", false),
		},
	}

	cfg.Postgres.ApplicationName = cfg.App.Name

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workflow.AutoCloseHours <= 0 {
		return fmt.Errorf("WORKFLOW_AUTO_CLOSE_HOURS must be positive, got %d", c.Workflow.AutoCloseHours)
	}
	if c.Workflow.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("WORKFLOW_SWEEP_INTERVAL_SECONDS must be positive, got %d", c.Workflow.SweepIntervalSeconds)
	}
	if c.Workflow.SweepBatchSize <= 0 {
		return fmt.Errorf("WORKFLOW_SWEEP_BATCH_SIZE must be positive, got %d", c.Workflow.SweepBatchSize)
	}
	if c.Notification.QueueSize <= 0 || c.Notification.Workers <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE and NOTIFY_WORKERS must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsListOr(key, fallback string) []string {
	if list := getEnvAsList(key); len(list) > 0 {
		return list
	}
	return []string{fallback}
}
