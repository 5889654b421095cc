package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.PatternTrustThreshold != 0.3 {
		t.Errorf("PatternTrustThreshold = %v, want 0.3", cfg.PatternTrustThreshold)
	}
	if cfg.ConfidenceThreshold != 0.7 {
		t.Errorf("ConfidenceThreshold = %v, want 0.7", cfg.ConfidenceThreshold)
	}
	if cfg.MaxConversationTurns != 20 {
		t.Errorf("MaxConversationTurns = %d, want 20", cfg.MaxConversationTurns)
	}
	if cfg.MinTurnsBeforeClose != 5 {
		t.Errorf("MinTurnsBeforeClose = %d, want 5", cfg.MinTurnsBeforeClose)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if !cfg.EnableModelClassifier || !cfg.EnableModelExtraction {
		t.Error("model features should default to enabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LUREBOX_PATTERN_TRUST_THRESHOLD", "0.5")
	t.Setenv("LUREBOX_MAX_TURNS", "30")
	t.Setenv("LUREBOX_ENABLE_MODEL_CLASSIFIER", "false")
	t.Setenv("LUREBOX_LLM_PROVIDER", "groq")
	t.Setenv("LUREBOX_LLM_TIMEOUT_MS", "5000")

	cfg := NewDefaultConfig()

	if cfg.PatternTrustThreshold != 0.5 {
		t.Errorf("PatternTrustThreshold = %v, want 0.5", cfg.PatternTrustThreshold)
	}
	if cfg.MaxConversationTurns != 30 {
		t.Errorf("MaxConversationTurns = %d, want 30", cfg.MaxConversationTurns)
	}
	if cfg.EnableModelClassifier {
		t.Error("EnableModelClassifier should be overridden to false")
	}
	if cfg.LLMProvider != ProviderGroq {
		t.Errorf("LLMProvider = %s, want groq", cfg.LLMProvider)
	}
	if cfg.LLMTimeout() != 5*time.Second {
		t.Errorf("LLMTimeout = %v, want 5s", cfg.LLMTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lurebox.yaml")
	content := []byte("pattern_trust_threshold: 0.45\nlisten_addr: \":9090\"\nredis_addr: \"localhost:6379\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.PatternTrustThreshold != 0.45 {
		t.Errorf("PatternTrustThreshold = %v, want 0.45", cfg.PatternTrustThreshold)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	// Fields absent from the file keep their defaults.
	if cfg.MaxConversationTurns != 20 {
		t.Errorf("MaxConversationTurns = %d, want untouched default 20", cfg.MaxConversationTurns)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.LoadFile("/nonexistent/lurebox.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		env     string
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, "", false},
		{"threshold too high", func(c *Config) { c.PatternTrustThreshold = 1.5 }, "", true},
		{"threshold negative", func(c *Config) { c.ConfidenceThreshold = -0.1 }, "", true},
		{"zero turns", func(c *Config) { c.MaxConversationTurns = 0 }, "", true},
		{"production without api key", func(c *Config) { c.APIKey = "" }, "production", true},
		{"production with api key", func(c *Config) { c.APIKey = "secret" }, "production", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LUREBOX_ENV", tt.env)
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("LUREBOX_TEST_STR", "value")
	t.Setenv("LUREBOX_TEST_BOOL", "true")
	t.Setenv("LUREBOX_TEST_FLOAT", "0.25")
	t.Setenv("LUREBOX_TEST_INT", "7")
	t.Setenv("LUREBOX_TEST_BAD_INT", "not-a-number")

	if got := GetEnv("LUREBOX_TEST_STR", "default"); got != "value" {
		t.Errorf("GetEnv = %q, want %q", got, "value")
	}
	if got := GetEnv("LUREBOX_TEST_UNSET", "default"); got != "default" {
		t.Errorf("GetEnv fallback = %q, want %q", got, "default")
	}
	if !GetEnvBool("LUREBOX_TEST_BOOL", false) {
		t.Error("GetEnvBool should parse true")
	}
	if got := GetEnvFloat("LUREBOX_TEST_FLOAT", 0.5); got != 0.25 {
		t.Errorf("GetEnvFloat = %v, want 0.25", got)
	}
	if got := GetEnvInt("LUREBOX_TEST_INT", 0); got != 7 {
		t.Errorf("GetEnvInt = %d, want 7", got)
	}
	if got := GetEnvInt("LUREBOX_TEST_BAD_INT", 3); got != 3 {
		t.Errorf("GetEnvInt invalid value should fall back, got %d", got)
	}
}
