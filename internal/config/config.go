// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./frontdesk.yaml or ~/.frontdesk/config.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the completion service API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModel indicates the chat model name is empty.
	ErrInvalidModel = errors.New("invalid model name")

	// ErrInvalidEmbedModel indicates the embedding model name is empty.
	ErrInvalidEmbedModel = errors.New("invalid embedding model name")

	// ErrInvalidKnowledgeDir indicates the knowledge directory is not usable.
	ErrInvalidKnowledgeDir = errors.New("invalid knowledge directory")

	// ErrInvalidAddr indicates the listen address is empty.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidEmbedBatch indicates the embedding batch settings are out of range.
	ErrInvalidEmbedBatch = errors.New("invalid embedding batch settings")
)

const (
	// DefaultModel is the default chat completion model.
	DefaultModel = "gpt-4o-mini"

	// DefaultEmbedModel is the default embedding model.
	DefaultEmbedModel = "text-embedding-3-small"

	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8080"

	// DefaultKnowledgeDir is the default knowledge base directory.
	DefaultKnowledgeDir = "./knowledge"
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// HTTP server
	Addr string `mapstructure:"addr" json:"addr"`

	// Completion service
	APIKey     string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON
	BaseURL    string `mapstructure:"base_url" json:"base_url"`
	Model      string `mapstructure:"model" json:"model"`
	EmbedModel string `mapstructure:"embed_model" json:"embed_model"`

	// Knowledge base
	KnowledgeDir    string        `mapstructure:"knowledge_dir" json:"knowledge_dir"`
	EmbedBatchSize  int           `mapstructure:"embed_batch_size" json:"embed_batch_size"`
	EmbedBatchDelay time.Duration `mapstructure:"embed_batch_delay" json:"embed_batch_delay"`
	Watch           bool          `mapstructure:"watch" json:"watch"`

	// Calendar. An empty CalendarID disables the scheduling tools.
	CalendarID string `mapstructure:"calendar_id" json:"calendar_id"`

	// Assistant behavior
	SystemPrompt string `mapstructure:"system_prompt" json:"system_prompt"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("frontdesk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".frontdesk"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("embed_model", DefaultEmbedModel)
	v.SetDefault("knowledge_dir", DefaultKnowledgeDir)
	v.SetDefault("embed_batch_size", 20)
	v.SetDefault("embed_batch_delay", 500*time.Millisecond)
	v.SetDefault("watch", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure here is a programming
	// error worth crashing on.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("api_key", "OPENAI_API_KEY")
	mustBind("base_url", "OPENAI_BASE_URL")
	mustBind("model", "FRONTDESK_MODEL")
	mustBind("embed_model", "FRONTDESK_EMBED_MODEL")
	mustBind("addr", "FRONTDESK_ADDR")
	mustBind("knowledge_dir", "FRONTDESK_KNOWLEDGE_DIR")
	mustBind("calendar_id", "FRONTDESK_CALENDAR_ID")
	mustBind("log_level", "FRONTDESK_LOG_LEVEL")
	mustBind("log_json", "FRONTDESK_LOG_JSON")
	mustBind("watch", "FRONTDESK_WATCH")
}

// Validate checks the configuration for fatal misconfiguration. It is called
// by Load; commands that build their own Config call it directly.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalidModel)
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("%w: embed_model must not be empty", ErrInvalidEmbedModel)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidAddr)
	}
	if c.KnowledgeDir == "" {
		return fmt.Errorf("%w: knowledge_dir must not be empty", ErrInvalidKnowledgeDir)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("%w: embed_batch_size must be at least 1, got %d", ErrInvalidEmbedBatch, c.EmbedBatchSize)
	}
	if c.EmbedBatchDelay < 0 {
		return fmt.Errorf("%w: embed_batch_delay must not be negative", ErrInvalidEmbedBatch)
	}
	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 characters
// or fewer are fully masked; longer ones keep the first and last 2 characters
// for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
