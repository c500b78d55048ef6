package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syuuma-ito/whisper-app/internal/config"
	"github.com/syuuma-ito/whisper-app/internal/logging"
	"github.com/syuuma-ito/whisper-app/internal/transcribe"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "whisper-app",
	Short: "Speech-to-text transcription app with a local GUI",
	Long: `Whisper-app records timestamped transcripts of audio and video files.

It runs a local faster-whisper model by default and can also use the
OpenAI or Gemini APIs. Transcripts are saved as text files with one
timestamped line per segment:

  [0.00s -> 5.00s] Hello, world!

Run "whisper-app gui" for the graphical interface or
"whisper-app transcribe" for one-shot use.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., ja, en) or auto")
	rootCmd.PersistentFlags().
		String("env-file", "", "Path to a .env file with settings")
}

// registers the model/backend flags shared by gui and transcribe
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("provider", "p", "", "Transcription provider (whisper, openai, gemini)")
	cmd.Flags().
		StringP("model", "m", "", "Model name (e.g., large-v3-turbo, whisper-1)")
	cmd.Flags().
		String("compute-type", "", "Inference precision for the local model (int8, float16, float32)")
	cmd.Flags().
		String("device", "", "Inference device (auto, cpu, cuda)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key for hosted providers (or set OPENAI_API_KEY / GEMINI_API_KEY)")
	cmd.Flags().
		String("output-dir", "", "Directory for generated transcripts")
}

// loadConfig merges flags over env vars and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	computeType, _ := cmd.Flags().GetString("compute-type")
	device, _ := cmd.Flags().GetString("device")
	language, _ := cmd.Flags().GetString("language")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	cfg, err := config.Load(config.Overrides{
		EnvFile:     envFile,
		Provider:    provider,
		Model:       model,
		ComputeType: computeType,
		Device:      device,
		Language:    language,
		OutputDir:   outputDir,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveAPIKey picks the key for hosted providers: flag, then config,
// then the provider's conventional environment variable.
func resolveAPIKey(cmd *cobra.Command, cfg *config.Config, provider transcribe.Provider) string {
	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		key = cfg.APIKey
	}
	if key == "" {
		switch provider {
		case transcribe.ProviderOpenAI:
			key = os.Getenv("OPENAI_API_KEY")
		case transcribe.ProviderGemini:
			key = os.Getenv("GEMINI_API_KEY")
		}
	}
	return key
}

// newTranscriber builds the configured model adapter.
func newTranscriber(cmd *cobra.Command, cfg *config.Config) (transcribe.Transcriber, error) {
	provider := transcribe.Provider(cfg.Provider)

	opts := transcribe.Options{
		Model:       cfg.Model,
		Language:    cfg.Language,
		Device:      cfg.ResolveDevice(),
		ComputeType: cfg.ComputeType,
	}

	apiKey := resolveAPIKey(cmd, cfg, provider)
	if provider != transcribe.ProviderWhisper && apiKey == "" {
		return nil, fmt.Errorf(
			"API key is required for provider %q: use --api-key or the provider's environment variable",
			provider,
		)
	}

	return transcribe.Factory(cmd.Context(), provider, apiKey, opts)
}
