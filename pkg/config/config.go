package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/visitnote/visit-summary/pkg/validator"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Anthropic AnthropicConfig
	DocStore  DocStoreConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	JWT       JWTConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10" validate:"gte=0"`
}

// CacheConfig selects the summary cache backend
type CacheConfig struct {
	Driver string `default:"redis" validate:"oneof=redis memory"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL            string        `default:"redis://localhost:6379" validate:"required"`
	DialTimeout    time.Duration `split_words:"true" default:"2s"`
	ReadTimeout    time.Duration `split_words:"true" default:"1s"`
	WriteTimeout   time.Duration `split_words:"true" default:"1s"`
	ConnectTimeout time.Duration `split_words:"true" default:"5s"`
}

// RedactedURL returns URL with any password masked, safe for logging
func (c RedisConfig) RedactedURL() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

// AnthropicConfig holds completion service configuration. An empty APIKey is
// allowed: the client then answers with a "not configured" placeholder.
type AnthropicConfig struct {
	APIKey              string `split_words:"true"`
	Model               string `default:"claude-3-5-sonnet-20241022"`
	BaseURL             string `split_words:"true" default:"https://api.anthropic.com" validate:"url"`
	SummaryCacheMinutes int    `split_words:"true" default:"60" validate:"gt=0"`
}

// DocStoreConfig selects where forms and patients are read from
type DocStoreConfig struct {
	Driver string `default:"mongo" validate:"oneof=mongo postgres"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	Name     string `default:"patient_dashboard"`
	SSLMode  string `default:"disable"`
	MaxConns int    `split_words:"true" default:"25"`
	MinConns int    `split_words:"true" default:"5"`
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URL          string `envconfig:"MONGODB_URL" default:"mongodb://localhost:27017"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"patient_dashboard" validate:"required"`
}

// JWTConfig holds access token verification settings
type JWTConfig struct {
	AccessSecret string        `split_words:"true" default:"your-access-secret-change-in-production" validate:"required"`
	AccessExpiry time.Duration `split_words:"true" default:"30m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"", &config.Server},
		{"cache", &config.Cache},
		{"redis", &config.Redis},
		{"anthropic", &config.Anthropic},
		{"docstore", &config.DocStore},
		{"db", &config.Database},
		{"", &config.Mongo},
		{"jwt", &config.JWT},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return nil, fmt.Errorf("failed to process environment: %w", err)
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.Environment == "production" && c.JWT.AccessSecret == "your-access-secret-change-in-production" {
		return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
	}
	return nil
}

// SummaryCacheTTL returns the summary cache TTL in whole seconds
func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.Anthropic.SummaryCacheMinutes) * time.Minute
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
