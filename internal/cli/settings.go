package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/prompt"
	"codeberg.org/snonux/lughat/internal/throttle"
)

// Settings is the resolved configuration after flags, environment and
// config file have been merged by viper
type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration

	Strategy prompt.Strategy
	Category prompt.Category
	Speed    audio.Speed

	SkipAudio   bool
	Audio       *audio.Config
	MetricsAddr string
	CacheDSN    string
	LogLevel    string
}

// LoadSettings reads the merged configuration. Values that fail to parse
// are reported with their config key.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		Provider:    viper.GetString("completion.provider"),
		Model:       viper.GetString("completion.model"),
		BaseURL:     viper.GetString("completion.base_url"),
		Timeout:     viper.GetDuration("completion.timeout"),
		MinInterval: viper.GetDuration("throttle.min_interval"),
		SkipAudio:   viper.GetBool("audio.skip"),
		MetricsAddr: viper.GetString("metrics.addr"),
		CacheDSN:    viper.GetString("cache.dsn"),
		LogLevel:    viper.GetString("log.level"),
	}
	if s.Provider == "" {
		s.Provider = completion.ProviderGemini
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Timeout <= 0 {
		s.Timeout = completion.DefaultTimeout
	}
	if s.MinInterval <= 0 {
		s.MinInterval = throttle.DefaultMinInterval
	}
	s.APIKey = GetAPIKey(s.Provider)

	var err error
	if s.Strategy, err = prompt.ParseStrategy(stringOr("prompt.strategy", string(prompt.StrategyOmnibus))); err != nil {
		return nil, fmt.Errorf("prompt.strategy: %w", err)
	}
	if s.Category, err = prompt.ParseCategory(stringOr("prompt.category", prompt.Translation.Key())); err != nil {
		return nil, fmt.Errorf("prompt.category: %w", err)
	}
	if s.Speed, err = audio.ParseSpeed(viper.GetString("audio.speed")); err != nil {
		return nil, fmt.Errorf("audio.speed: %w", err)
	}

	s.Audio = audio.DefaultProviderConfig()
	s.Audio.Provider = stringOr("audio.provider", s.Audio.Provider)
	s.Audio.OutputDir = stringOr("audio.directory", s.Audio.OutputDir)
	s.Audio.OpenAIModel = stringOr("audio.openai_model", s.Audio.OpenAIModel)
	s.Audio.OpenAIVoice = stringOr("audio.openai_voice", s.Audio.OpenAIVoice)
	s.Audio.OpenAIBaseURL = viper.GetString("audio.openai_base_url")
	s.Audio.OpenAIKey = GetOpenAIKey()
	s.Audio.Fallback = viper.GetBool("audio.fallback")
	s.Audio.EnableCache = viper.GetBool("audio.cache")
	s.Audio.CacheDir = stringOr("audio.cache_dir", filepath.Join(s.Audio.OutputDir, ".cache"))
	if voice := viper.GetString("audio.espeak_voice"); voice != "" {
		s.Audio.ESpeak.Voice = voice
	}

	return s, nil
}

// CompletionConfig returns the backend configuration for these settings
func (s *Settings) CompletionConfig() completion.Config {
	return completion.Config{
		Provider: s.Provider,
		APIKey:   s.APIKey,
		Model:    s.Model,
		BaseURL:  s.BaseURL,
	}
}

func stringOr(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
