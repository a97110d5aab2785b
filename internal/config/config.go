// Package config provides configuration loading and validation for the
// service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration, read from environment variables.
type Config struct {
	// Server
	Port        int
	DatabaseURL string

	// LLM provider credentials. All optional; a provider without a key
	// fails at call time, not at startup.
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// Worker pool
	Workers           int
	QueueSize         int
	HeartbeatInterval time.Duration
	LeaseWindow       time.Duration
}

// FromEnv reads the configuration from environment variables. DATABASE_URL
// is required; everything else has a default.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:         os.Getenv("GEMINI_API_KEY"),
		Workers:           4,
		QueueSize:         64,
		HeartbeatInterval: 15 * time.Second,
		LeaseWindow:       5 * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.Workers, err = intEnv("AGENT_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = intEnv("AGENT_QUEUE_SIZE", cfg.QueueSize); err != nil {
		return nil, err
	}
	if cfg.HeartbeatInterval, err = durationEnv("AGENT_HEARTBEAT_INTERVAL", cfg.HeartbeatInterval); err != nil {
		return nil, err
	}
	if cfg.LeaseWindow, err = durationEnv("AGENT_LEASE_WINDOW", cfg.LeaseWindow); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be in 1-65535, got %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config error: workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("config error: queue size must be at least 1, got %d", c.QueueSize)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("config error: heartbeat interval must be positive")
	}
	if c.LeaseWindow <= c.HeartbeatInterval {
		return fmt.Errorf("config error: lease window must exceed the heartbeat interval")
	}
	return nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}
