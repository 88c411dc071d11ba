// Package config loads application configuration from an optional YAML file
// and environment variables. Environment always wins over the file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Range span limits: the content-plan read window is capped to keep the
// three-table fan-out bounded. The floor protects against misconfiguration.
const (
	DefaultRangeLimitDays = 93
	MinRangeLimitDays     = 7
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	JWTSecret      string `yaml:"jwt_secret"`
	Port           string `yaml:"port"`
	Env            string `yaml:"env"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	RangeLimitDays int    `yaml:"range_limit_days"`
	SweepSchedule  string `yaml:"sweep_schedule"`
}

// Load reads configuration, in order: .env file (if present), the YAML file
// at path (if path is non-empty and the file exists), then environment
// variable overrides. DatabaseURL and JWTSecret are required.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           "8080",
		Env:            "development",
		LogLevel:       "info",
		LogFormat:      "text",
		RangeLimitDays: DefaultRangeLimitDays,
		SweepSchedule:  "@hourly",
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RangeLimitDays < MinRangeLimitDays {
		cfg.RangeLimitDays = MinRangeLimitDays
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown YAML keys to catch typos

	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.Port, "PORT")
	setString(&c.Env, "ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.SweepSchedule, "SWEEP_SCHEDULE")

	if raw := strings.TrimSpace(os.Getenv("PLAN_RANGE_LIMIT_DAYS")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			c.RangeLimitDays = limit
		}
	}
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
