package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Gateway    GatewayConfig
	Assembly   AssemblyAIConfig
	OpenRouter OpenRouterConfig
	Google     GoogleConfig
	Redis      RedisConfig
	Storage    StorageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// GatewayConfig holds the hosted data store configuration
type GatewayConfig struct {
	BaseURL        string        `envconfig:"GATEWAY_BASE_URL" default:"https://acadease.fly.dev"`
	AuthCollection string        `envconfig:"GATEWAY_AUTH_COLLECTION" default:"users"`
	TaskCollection string        `envconfig:"GATEWAY_TASK_COLLECTION" default:"tasks"`
	Timeout        time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"30s"`
}

// AssemblyAIConfig holds speech-to-text provider configuration
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY"`
	BaseURL      string        `envconfig:"ASSEMBLYAI_API_URL" default:"https://api.assemblyai.com"`
	PollInterval time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"3s"`
	MaxPolls     int           `envconfig:"ASSEMBLYAI_MAX_POLLS" default:"100"`
}

// OpenRouterConfig holds text/image understanding provider configuration
type OpenRouterConfig struct {
	APIKey  string        `envconfig:"OPENROUTER_API_KEY"`
	BaseURL string        `envconfig:"OPENROUTER_API_URL" default:"https://openrouter.ai/api/v1"`
	Model   string        `envconfig:"OPENROUTER_MODEL" default:"meta-llama/llama-4-maverick:free"`
	Timeout time.Duration `envconfig:"OPENROUTER_TIMEOUT" default:"30s"`
}

// GoogleConfig holds Google sign-in configuration for the classroom import
type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/v1/classroom/callback"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds media staging storage configuration
type StorageConfig struct {
	Enabled         bool          `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"acadease-media"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	StagingTTL      time.Duration `envconfig:"STORAGE_STAGING_TTL" default:"1h"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if c.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
