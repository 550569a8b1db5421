package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Gemini    GeminiConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Sniper    SniperConfig
	Portfolio PortfolioConfig
	Churn     ChurnConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects and configures the record store backend
type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // "supabase" or "postgres"
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// GeminiConfig holds message-drafting API configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// SniperConfig holds affinity matching configuration
type SniperConfig struct {
	WindowDays     int `mapstructure:"window_days"`
	MaxLineItems   int `mapstructure:"max_line_items"`
	MinPhoneDigits int `mapstructure:"min_phone_digits"`
}

// PortfolioConfig holds portfolio view configuration
type PortfolioConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// ChurnConfig holds churn worklist configuration
type ChurnConfig struct {
	ThresholdDays int `mapstructure:"threshold_days"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/modainteligente/")

	// Environment variable settings
	v.SetEnvPrefix("MODAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Store defaults
	v.SetDefault("store.backend", "supabase")

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Sniper defaults
	v.SetDefault("sniper.window_days", 180)
	v.SetDefault("sniper.max_line_items", 200)
	v.SetDefault("sniper.min_phone_digits", 8)

	// Portfolio defaults
	v.SetDefault("portfolio.page_size", 100)

	// Churn defaults
	v.SetDefault("churn.threshold_days", 90)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Store.Backend {
	case "supabase":
		if config.Store.SupabaseURL == "" {
			return fmt.Errorf("Supabase URL is required (set MODAI_STORE_SUPABASE_URL)")
		}
		if config.Store.SupabaseKey == "" {
			return fmt.Errorf("Supabase key is required (set MODAI_STORE_SUPABASE_KEY)")
		}
	case "postgres":
		if config.Store.PostgresDSN == "" {
			return fmt.Errorf("Postgres DSN is required when store backend is 'postgres'")
		}
	default:
		return fmt.Errorf("store backend must be 'supabase' or 'postgres', got: %s", config.Store.Backend)
	}

	if config.Sniper.WindowDays <= 0 {
		return fmt.Errorf("sniper window must be positive, got: %d", config.Sniper.WindowDays)
	}
	if config.Churn.ThresholdDays <= 0 {
		return fmt.Errorf("churn threshold must be positive, got: %d", config.Churn.ThresholdDays)
	}

	return nil
}
