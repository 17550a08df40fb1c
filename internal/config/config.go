package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Supabase    SupabaseConfig    `mapstructure:"supabase"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Delivery    DeliveryConfig    `mapstructure:"delivery"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
// Delivery history falls back to process memory when URL is empty.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// Enabled reports whether a Supabase project is configured.
func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.ServiceKey != ""
}

// QueueConfig holds async queue settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// DeliveryConfig selects the delivery channel.
type DeliveryConfig struct {
	Channel string `mapstructure:"channel"`
}

// IdempotencyConfig holds Idempotency-Key retention settings.
type IdempotencyConfig struct {
	TTLSec int `mapstructure:"ttl_sec"`
}

// PipelineConfig is an optional pipeline definition. When Stages is empty the
// built-in sample pipeline is used.
type PipelineConfig struct {
	Name   string        `mapstructure:"name"`
	Stages []StageConfig `mapstructure:"stages"`
}

// StageConfig defines one stage and its notifications.
type StageConfig struct {
	Name          string               `mapstructure:"name"`
	Notifications []NotificationConfig `mapstructure:"notifications"`
}

// NotificationConfig defines one notification.
type NotificationConfig struct {
	ID       int    `mapstructure:"id"`
	Message  string `mapstructure:"message"`
	Severity string `mapstructure:"severity"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the PIPENOTIFY_ prefix and underscore separators.
// Example: PIPENOTIFY_DELIVERY_CHANNEL overrides delivery.channel in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	return load(v)
}

// LoadFile reads configuration from an explicit file path plus environment variables.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v.SetEnvPrefix("PIPENOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional: env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated API keys from env var
	if apiKeysStr := v.GetString("auth.api_keys"); apiKeysStr != "" && len(cfg.Auth.APIKeys) == 0 {
		cfg.Auth.APIKeys = splitList(apiKeysStr)
	}

	cfg.Delivery.Channel = strings.ToLower(strings.TrimSpace(cfg.Delivery.Channel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-API-Key", "Idempotency-Key", "X-Request-ID"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("delivery.channel", "email")
	v.SetDefault("idempotency.ttl_sec", 86400) // 24 hours
	v.SetDefault("pipeline.name", "My Pipeline")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
