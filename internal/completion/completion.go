package completion

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in configuration
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultTemperature is the sampling temperature for every completion call
const DefaultTemperature = 0.7

// Metadata keys filled by backends
const (
	MetadataKeyProvider     = "provider"
	MetadataKeyModel        = "model"
	MetadataKeyLatencyMs    = "latency_ms"
	MetadataKeyInputTokens  = "input_tokens"
	MetadataKeyOutputTokens = "output_tokens"
	MetadataKeyTotalTokens  = "total_tokens"
	MetadataKeyFinishReason = "finish_reason"
	MetadataKeyCached       = "cached"
)

// Result is the raw reply of the completion service. Text has no
// guaranteed shape.
type Result struct {
	Text     string
	Metadata map[string]string
}

// Completer is what the pipeline calls
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Result, error)
}

// Backend performs exactly one outbound call per Complete
type Backend interface {
	Completer
	Name() string
	Model() string
}

// Config holds the settings for creating a Backend
type Config struct {
	Provider    string  // "gemini", "openai" or "anthropic"
	APIKey      string  // required
	Model       string  // empty means the provider default
	Temperature float64 // zero means DefaultTemperature
	BaseURL     string  // optional endpoint override
	MaxTokens   int     // zero means the provider default

	// ResponseSchema asks the backend for schema-constrained JSON output
	// when the provider supports it. nil means free text.
	ResponseSchema map[string]any
}

// DefaultModel returns the model used when Config.Model is empty
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	}
	return ""
}

// NewBackend creates the backend for cfg.Provider
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	switch cfg.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, &ConfigurationError{
			Setting: "completion.provider",
			Message: "unknown completion provider: " + cfg.Provider,
		}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{
			Setting: APIKeyEnvVars(cfg.Provider)[0],
			Message: "API key for " + cfg.Provider + " is missing",
		}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	switch cfg.Provider {
	case ProviderGemini:
		return newGeminiBackend(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIBackend(cfg), nil
	default:
		return newAnthropicBackend(cfg), nil
	}
}

// APIKeyEnvVars lists the environment variables checked for a provider's
// key, in priority order.
func APIKeyEnvVars(provider string) []string {
	switch provider {
	case ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	case ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY"}
	}
	return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
}

func initMetadata(provider, model string) map[string]string {
	return map[string]string{
		MetadataKeyProvider: provider,
		MetadataKeyModel:    model,
	}
}

func setLatencyMetadata(meta map[string]string, start time.Time) {
	meta[MetadataKeyLatencyMs] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
}

func setTokenMetadata(meta map[string]string, input, output, total int64) {
	meta[MetadataKeyInputTokens] = strconv.FormatInt(input, 10)
	meta[MetadataKeyOutputTokens] = strconv.FormatInt(output, 10)
	meta[MetadataKeyTotalTokens] = strconv.FormatInt(total, 10)
}
