package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all runtime configuration, read from the environment
type Config struct {
	MongoURI  string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB   string `env:"MONGO_DB" envDefault:"survey_db"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`

	// OpenAIKey empty switches the completion client to canned replies
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// CompletionEnabled reports whether a real completion backend is configured
func (c *Config) CompletionEnabled() bool {
	return c.OpenAIKey != ""
}
