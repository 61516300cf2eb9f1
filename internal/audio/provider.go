package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/lughat/internal/logging"
)

// Speed selects the narration rate
type Speed int

const (
	// Normal uses the provider's default rate
	Normal Speed = iota
	// Slow narrates noticeably slower for learners
	Slow
)

func (s Speed) String() string {
	if s == Slow {
		return "slow"
	}
	return "normal"
}

// ParseSpeed accepts "normal" or "slow"; empty means normal
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return Normal, nil
	case "slow":
		return Slow, nil
	}
	return Normal, fmt.Errorf("unknown speed %q (want normal or slow)", s)
}

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio synthesizes text at the given speed into outputFile
	GenerateAudio(ctx context.Context, text string, speed Speed, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider  string        // "openai" or "espeak"
	OutputDir string        // Directory for per-request clips
	Timeout   time.Duration // Per-call limit
	Fallback  bool          // Fall back to espeak-ng when the primary fails

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIModel   string // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	OpenAIVoice   string // "alloy", "echo", "fable", "onyx", "nova", "shimmer", ...
	OpenAIBaseURL string

	// Clip cache keyed by text, voice and speed
	EnableCache bool
	CacheDir    string

	// espeak-ng settings
	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		OutputDir:   "./audio",
		Timeout:     DefaultTimeout,
		OpenAIModel: "tts-1",
		OpenAIVoice: "alloy",
		ESpeak:      DefaultConfig(),
	}
}

// NewProvider creates the appropriate audio provider based on configuration.
// With Fallback set and espeak-ng installed, the OpenAI provider is wrapped
// so that a failed call is retried locally.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		primary, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		if !config.Fallback {
			return primary, nil
		}
		fallback, err := NewESpeakProvider(config.ESpeak)
		if err != nil {
			logging.NewLogger(context.Background()).Warnf("espeak-ng fallback unavailable: %v", err)
			return primary, nil
		}
		return NewProviderWithFallback(primary, fallback), nil

	case "espeak", "espeak-ng":
		return NewESpeakProvider(config.ESpeak)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, speed Speed, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, speed, outputFile)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	logging.NewLogger(ctx).Warnf("primary provider (%s) failed: %v. Falling back to %s",
		p.primary.Name(), err, p.fallback.Name())
	return p.fallback.GenerateAudio(ctx, text, speed, outputFile)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
