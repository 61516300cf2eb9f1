package cli

import (
	"time"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/prompt"
	"codeberg.org/snonux/lughat/internal/throttle"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	EnvFile     string
	BatchFile   string
	ListModels  bool
	Archive     bool
	MetricsAddr string
	LogLevel    string

	// Completion flags
	Provider string
	Model    string
	Strategy string
	Category string
	Timeout  time.Duration
	Interval time.Duration

	// Audio flags
	SkipAudio     bool
	Speed         string
	AudioDir      string
	AudioProvider string
	AudioFallback bool
	AudioCache    bool
	AudioCacheDir string
	OpenAIModel   string
	OpenAIVoice   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	audioDefaults := audio.DefaultProviderConfig()
	return &Flags{
		EnvFile:       ".env",
		LogLevel:      "info",
		Provider:      completion.ProviderGemini,
		Strategy:      string(prompt.StrategyOmnibus),
		Category:      prompt.Translation.Key(),
		Timeout:       completion.DefaultTimeout,
		Interval:      throttle.DefaultMinInterval,
		Speed:         audio.Normal.String(),
		AudioDir:      audioDefaults.OutputDir,
		AudioProvider: audioDefaults.Provider,
		AudioFallback: true,
		OpenAIModel:   audioDefaults.OpenAIModel,
		OpenAIVoice:   audioDefaults.OpenAIVoice,
	}
}
