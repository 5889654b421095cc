// Package config holds global settings for the lurebox engine.
// All settings can be configured via environment variables, an optional
// YAML file, or programmatically.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMProvider defines the backend LLM service type.
type LLMProvider string

const (
	ProviderNone       LLMProvider = "none"       // No LLM, pattern-only operation
	ProviderOllama     LLMProvider = "ollama"     // Local Ollama server
	ProviderOpenRouter LLMProvider = "openrouter" // OpenRouter (default, has free tier)
	ProviderGroq       LLMProvider = "groq"       // Groq (high-speed inference)
	ProviderCustom     LLMProvider = "custom"     // Custom OpenAI-compatible endpoint
)

// Config holds global settings for the lurebox engine and service.
type Config struct {
	// === LLM Provider Configuration ===
	LLMProvider      LLMProvider `yaml:"llm_provider"`
	LLMAPIKey        string      `yaml:"llm_api_key"`
	LLMModel         string      `yaml:"llm_model"`
	LLMFallbackModel string      `yaml:"llm_fallback_model"` // Secondary model tried once on failure
	LLMBaseURL       string      `yaml:"llm_base_url"`
	LLMTimeoutMs     int         `yaml:"llm_timeout_ms"`
	LLMMaxConcurrent int         `yaml:"llm_max_concurrent"` // Bound on in-flight provider calls

	// === Detection Thresholds (0.0 - 1.0) ===
	// PatternTrustThreshold is the single short-circuit threshold: a pattern
	// score at or above it is trusted outright and the model classifier is
	// never consulted for that message.
	PatternTrustThreshold float64 `yaml:"pattern_trust_threshold"`
	// ConfidenceThreshold is the minimum model confidence for a scam verdict
	// when the classifier is consulted.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// === Feature Flags ===
	EnableModelClassifier bool `yaml:"enable_model_classifier"` // Consult the model below the pattern-trust threshold
	EnableModelExtraction bool `yaml:"enable_model_extraction"` // Model-assisted structured extraction

	// === Engagement ===
	MaxConversationTurns int `yaml:"max_conversation_turns"` // Advisory wind-down ceiling
	MinTurnsBeforeClose  int `yaml:"min_turns_before_close"` // Minimum turns before intelligence-complete close

	// === Service ===
	APIKey     string `yaml:"api_key"` // Header auth for the HTTP surface
	ListenAddr string `yaml:"listen_addr"`

	// === State store ===
	RedisAddr      string `yaml:"redis_addr"` // Empty = in-memory conversation store
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`

	// === Intelligence archive ===
	DatabaseURL string `yaml:"database_url"` // Empty = archiving disabled

	// === Logging ===
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "console" or "json"
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	cfg := &Config{
		LLMProvider:      detectLLMProvider(),
		LLMAPIKey:        GetEnv("LUREBOX_LLM_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		LLMModel:         GetEnv("LUREBOX_LLM_MODEL", "meta-llama/llama-3.1-8b-instruct:free"),
		LLMFallbackModel: GetEnv("LUREBOX_LLM_FALLBACK_MODEL", "mistralai/mistral-7b-instruct:free"),
		LLMBaseURL:       GetEnv("LUREBOX_LLM_BASE_URL", ""),
		LLMTimeoutMs:     GetEnvInt("LUREBOX_LLM_TIMEOUT_MS", 60000),
		LLMMaxConcurrent: GetEnvInt("LUREBOX_LLM_MAX_CONCURRENT", 32),

		PatternTrustThreshold: GetEnvFloat("LUREBOX_PATTERN_TRUST_THRESHOLD", 0.3),
		ConfidenceThreshold:   GetEnvFloat("LUREBOX_CONFIDENCE_THRESHOLD", 0.7),

		EnableModelClassifier: GetEnvBool("LUREBOX_ENABLE_MODEL_CLASSIFIER", true),
		EnableModelExtraction: GetEnvBool("LUREBOX_ENABLE_MODEL_EXTRACTION", true),

		MaxConversationTurns: GetEnvInt("LUREBOX_MAX_TURNS", 20),
		MinTurnsBeforeClose:  GetEnvInt("LUREBOX_MIN_TURNS_BEFORE_CLOSE", 5),

		APIKey:     GetEnv("LUREBOX_API_KEY", ""),
		ListenAddr: GetEnv("LUREBOX_LISTEN_ADDR", ":8080"),

		RedisAddr:      GetEnv("LUREBOX_REDIS_ADDR", ""),
		RedisPassword:  GetEnv("LUREBOX_REDIS_PASSWORD", ""),
		RedisDB:        GetEnvInt("LUREBOX_REDIS_DB", 0),
		RedisKeyPrefix: GetEnv("LUREBOX_REDIS_KEY_PREFIX", "lurebox:"),

		DatabaseURL: GetEnv("LUREBOX_DATABASE_URL", os.Getenv("DATABASE_URL")),

		LogLevel:  GetEnv("LUREBOX_LOG_LEVEL", "info"),
		LogFormat: GetEnv("LUREBOX_LOG_FORMAT", "console"),
	}

	// Optional YAML overrides on top of env defaults
	if path := os.Getenv("LUREBOX_CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] config file %s not applied: %v\n", path, err)
		}
	}

	return cfg
}

// LoadFile merges settings from a YAML file into the config.
// Zero-valued fields in the file leave the existing values untouched
// because decoding happens in place.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// LLMTimeout returns the provider call timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutMs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.LLMTimeoutMs) * time.Millisecond
}

// Validate checks that required configuration is present and thresholds
// are in range. In production (LUREBOX_ENV=production) a missing API key
// is an error; in development it is only a warning.
func (c *Config) Validate() error {
	env := strings.ToLower(os.Getenv("LUREBOX_ENV"))
	isProduction := env == "production" || env == "prod"

	if c.PatternTrustThreshold < 0 || c.PatternTrustThreshold > 1 {
		return fmt.Errorf("pattern_trust_threshold out of range: %v", c.PatternTrustThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold out of range: %v", c.ConfidenceThreshold)
	}
	if c.MaxConversationTurns <= 0 {
		return fmt.Errorf("max_conversation_turns must be positive, got %d", c.MaxConversationTurns)
	}

	if c.APIKey == "" {
		if isProduction {
			return fmt.Errorf("missing required secret: LUREBOX_API_KEY")
		}
		fmt.Fprintln(os.Stderr, "[STARTUP] Warning: LUREBOX_API_KEY not set - HTTP surface is unauthenticated")
	}

	return nil
}

func detectLLMProvider() LLMProvider {
	// Check explicit provider setting first
	if p := os.Getenv("LUREBOX_LLM_PROVIDER"); p != "" {
		return LLMProvider(p)
	}
	// Auto-detect based on available keys
	if os.Getenv("GROQ_API_KEY") != "" {
		return ProviderGroq
	}
	if os.Getenv("OPENROUTER_API_KEY") != "" || os.Getenv("LUREBOX_LLM_API_KEY") != "" {
		return ProviderOpenRouter
	}
	// Default to Ollama (local) if no cloud keys found
	return ProviderOllama
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
