package config

import (
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	Scheduler  SchedulerConfig
	Publish    PublishConfig
	Generation GenerationConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type SchedulerConfig struct {
	PollInterval time.Duration // how often the loop polls for due posts
	TickLimit    int           // max posts fetched per tick
	BatchSize    int           // concurrent executions per sub-batch
}

type PublishConfig struct {
	MaxAttempts   int
	RetryMinDelay time.Duration // minimum gap between attempts on one post
	StoreTimeout  time.Duration // per content-store call
}

type GenerationConfig struct {
	Provider     string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIAPIKey string
	GeminiModel  string
	OpenAIModel  string
	Timeout      time.Duration // per generation call
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "production"),
		BasicAuth:          getEnvList("APP_BASIC_AUTH"),
		CorsAllowedOrigins: getEnvList("APP_CORS_ALLOWED_ORIGINS"),
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "azpress"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "storages/azpress.db"),
	}

	valkeyCfg := ValkeyConfig{
		Enabled:   getEnvBool("VALKEY_ENABLED", false),
		Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		Password:  getEnv("VALKEY_PASSWORD", ""),
		DB:        getEnvInt("VALKEY_DB", 0),
		KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azpress"),
	}

	schedulerCfg := SchedulerConfig{
		PollInterval: getEnvDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
		TickLimit:    getEnvInt("SCHEDULER_TICK_LIMIT", 100),
		BatchSize:    getEnvInt("SCHEDULER_BATCH_SIZE", 10),
	}

	publishCfg := PublishConfig{
		MaxAttempts:   getEnvInt("PUBLISH_MAX_ATTEMPTS", 3),
		RetryMinDelay: getEnvDuration("PUBLISH_RETRY_MIN_DELAY", 0),
		StoreTimeout:  getEnvDuration("PUBLISH_STORE_TIMEOUT", 15*time.Second),
	}

	generationCfg := GenerationConfig{
		Provider:     getEnv("GENERATION_PROVIDER", "gemini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:      getEnvDuration("GENERATION_TIMEOUT", 90*time.Second),
	}

	cfg := &Config{
		App:        appCfg,
		Database:   dbCfg,
		Valkey:     valkeyCfg,
		Scheduler:  schedulerCfg,
		Publish:    publishCfg,
		Generation: generationCfg,
	}

	Global = cfg
	return cfg, nil
}
