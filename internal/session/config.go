package session

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/palate-app/palate/internal/domain"
)

// configValidator validates configuration structs. Shared because
// validator instances cache struct metadata.
var configValidator = validator.New()

// Config is the service-level configuration loaded from YAML. Engine
// weights are design constants and deliberately not configurable; the
// knobs here cover the external collaborators around the engine.
type Config struct {
	// Suggestion configures the external AI suggestion fallback.
	Suggestion SuggestionConfig `yaml:"suggestion"`

	// Provider configures candidate provisioning.
	Provider ProviderConfig `yaml:"provider"`
}

// SuggestionConfig selects and bounds the LLM-backed suggestion service.
type SuggestionConfig struct {
	// Provider is the LLM provider backing suggestions.
	Provider string `yaml:"provider" validate:"omitempty,oneof=anthropic openai google"`

	// Model overrides the provider's default model.
	Model string `yaml:"model" validate:"max=100"`

	// APIKeyEnv names the environment variable holding the provider
	// API key; the key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env" validate:"max=100"`

	// TimeoutMS bounds one suggestion call end to end, retries
	// included. The collaborator is the only blocking external call in
	// an aggregation, so this directly caps result latency on fallback.
	TimeoutMS int `yaml:"timeout_ms" validate:"min=0,max=120000"`

	// MaxTokens limits the suggestion completion length.
	MaxTokens int `yaml:"max_tokens" validate:"min=0,max=8192"`
}

// Timeout returns the configured suggestion timeout, defaulting to 10s.
func (c SuggestionConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ProviderConfig bounds candidate provisioning.
type ProviderConfig struct {
	// DefaultLimit caps candidates per session when the caller does not
	// specify one.
	DefaultLimit int `yaml:"default_limit" validate:"min=0,max=100"`

	// RadiusTiers lists the accepted radius tier labels.
	RadiusTiers []string `yaml:"radius_tiers" validate:"max=10,dive,min=1,max=50"`

	// DedupeThreshold is the name-similarity level (0..1) above which
	// two candidates from different sources are merged as duplicates.
	DedupeThreshold float64 `yaml:"dedupe_threshold" validate:"min=0,max=1"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Suggestion: SuggestionConfig{
			Provider:  "anthropic",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			TimeoutMS: 10000,
			MaxTokens: 1024,
		},
		Provider: ProviderConfig{
			DefaultLimit:    20,
			RadiusTiers:     []string{"walking", "short_drive", "day_trip"},
			DedupeThreshold: 0.85,
		},
	}
}

// LoadConfig reads, parses, and validates a YAML config file. Omitted
// sections fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := configValidator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, collectFieldErrors("config", err))
	}
	return cfg, nil
}

// collectFieldErrors folds validator field failures into a single
// domain.ValidationError so callers see every bad field at once.
func collectFieldErrors(entity string, err error) *domain.ValidationError {
	verr := domain.NewValidationError(entity)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.AddError(fe.Error())
		}
		return verr
	}
	verr.AddError(err.Error())
	return verr
}
