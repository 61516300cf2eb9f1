package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lughat/internal"
	"codeberg.org/snonux/lughat/internal/completion"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lughat [text]",
		Short: "English to Urdu language learning assistant",
		Long: `lughat sends English text to a large language model and shows a
structured learning response: Urdu translation, pronunciation guide,
definition, vocabulary analysis, grammar notes and corrections.

The pronunciation guide can be read aloud using OpenAI TTS or espeak-ng.

Examples:
  lughat                                   # Interactive session, type "end" to quit
  lughat "How are you?"                    # Show the translation of one text
  lughat -c pronunciation "Good morning"   # Pronunciation guide with audio
  lughat --batch phrases.txt               # Process every line of a file`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lughat.yaml)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", flags.EnvFile, "dotenv file with API keys (ignored when missing)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.Category, "category", "c", flags.Category, "Section to show: translation, pronunciation, definition, vocabulary, grammar, corrections, synonyms, conversation")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", flags.Strategy, "Prompt strategy: omnibus, category or json")
	cmd.Flags().StringVar(&flags.Speed, "speed", flags.Speed, "Narration speed for the pronunciation guide: normal or slow")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process texts from file (one per line, optional '= category' suffix)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available models for the completion provider")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the audio directory into a timestamped archive and exit")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	// Completion flags
	cmd.Flags().StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Completion provider: gemini, openai or anthropic")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", "", "Completion model (default depends on the provider)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout for one completion call")
	cmd.Flags().DurationVar(&flags.Interval, "min-interval", flags.Interval, "Minimum delay between two completion calls")

	// Audio flags
	cmd.Flags().BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio generation")
	cmd.Flags().StringVarP(&flags.AudioDir, "audio-dir", "o", flags.AudioDir, "Directory for pronunciation clips")
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech provider: openai or espeak")
	cmd.Flags().BoolVar(&flags.AudioFallback, "audio-fallback", flags.AudioFallback, "Fall back to espeak-ng when OpenAI TTS fails")
	cmd.Flags().BoolVar(&flags.AudioCache, "audio-cache", false, "Reuse clips for identical text and speed")
	cmd.Flags().StringVar(&flags.AudioCacheDir, "audio-cache-dir", "", "Directory for reused clips (default is <audio-dir>/.cache)")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, echo, fable, onyx, nova, shimmer")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("prompt.category", cmd.Flags().Lookup("category"))
	viper.BindPFlag("prompt.strategy", cmd.Flags().Lookup("strategy"))
	viper.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))
	viper.BindPFlag("completion.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("completion.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("completion.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("throttle.min_interval", cmd.Flags().Lookup("min-interval"))
	viper.BindPFlag("audio.speed", cmd.Flags().Lookup("speed"))
	viper.BindPFlag("audio.skip", cmd.Flags().Lookup("skip-audio"))
	viper.BindPFlag("audio.directory", cmd.Flags().Lookup("audio-dir"))
	viper.BindPFlag("audio.provider", cmd.Flags().Lookup("audio-provider"))
	viper.BindPFlag("audio.fallback", cmd.Flags().Lookup("audio-fallback"))
	viper.BindPFlag("audio.cache", cmd.Flags().Lookup("audio-cache"))
	viper.BindPFlag("audio.cache_dir", cmd.Flags().Lookup("audio-cache-dir"))
	viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".lughat" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lughat")
	}

	// Environment variables, e.g. LUGHAT_COMPLETION_PROVIDER
	viper.SetEnvPrefix("LUGHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// LoadEnvFile loads API keys from a dotenv file. Variables already set in
// the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// GetAPIKey retrieves the completion API key for provider from the
// environment or the config file
func GetAPIKey(provider string) string {
	// First check environment variables
	for _, name := range completion.APIKeyEnvVars(provider) {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}

	// Then check config file
	return viper.GetString("completion.api_key")
}

// GetOpenAIKey retrieves the OpenAI API key used for speech synthesis
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	if key := viper.GetString("audio.openai_key"); key != "" {
		return key
	}
	// A shared key works when OpenAI is also the completion provider
	if strings.EqualFold(viper.GetString("completion.provider"), completion.ProviderOpenAI) {
		return viper.GetString("completion.api_key")
	}
	return ""
}
