package config

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// model sizes accepted by the local whisper backend
var AvailableModels = []string{
	"base",
	"small",
	"medium",
	"large-v3",
	"large-v3-turbo",
	"distil-large-v3",
}

// inference precisions accepted by the local whisper backend
var AvailableComputeTypes = []string{
	"int8",
	"float16",
	"float32",
}

type Config struct {
	Provider    string `env:"WHISPER_APP_PROVIDER" envDefault:"whisper"`
	Model       string `env:"WHISPER_APP_MODEL" envDefault:"large-v3-turbo"`
	ComputeType string `env:"WHISPER_APP_COMPUTE_TYPE"`
	Device      string `env:"WHISPER_APP_DEVICE" envDefault:"auto"`
	Language    string `env:"WHISPER_APP_LANGUAGE" envDefault:"auto"`
	OutputDir   string `env:"WHISPER_APP_OUTPUT_DIR"`
	APIKey      string `env:"WHISPER_APP_API_KEY"`

	HTTPAddr string `env:"WHISPER_APP_HTTP_ADDR" envDefault:"127.0.0.1:8799"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile     string
	Provider    string
	Model       string
	ComputeType string
	Device      string
	Language    string
	OutputDir   string
	HTTPAddr    string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.Provider != "" {
		cfg.Provider = overrides.Provider
	}
	if overrides.Model != "" {
		cfg.Model = overrides.Model
	}
	if overrides.ComputeType != "" {
		cfg.ComputeType = overrides.ComputeType
	}
	if overrides.Device != "" {
		cfg.Device = overrides.Device
	}
	if overrides.Language != "" {
		cfg.Language = overrides.Language
	}
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}

	if cfg.ComputeType == "" {
		if CanUseGPU() {
			cfg.ComputeType = "float16"
		} else {
			cfg.ComputeType = "float32"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the whisper backend settings. Hosted providers accept
// arbitrary model names, so only the local backend's lists are enforced.
func (c *Config) Validate() error {
	if c.Provider == "whisper" {
		if !slices.Contains(AvailableModels, c.Model) {
			return fmt.Errorf(
				"invalid model %q: available models are %v",
				c.Model,
				AvailableModels,
			)
		}
		if !slices.Contains(AvailableComputeTypes, c.ComputeType) {
			return fmt.Errorf(
				"invalid compute type %q: available types are %v",
				c.ComputeType,
				AvailableComputeTypes,
			)
		}
	}

	switch c.Device {
	case "auto", "cpu", "cuda":
	default:
		return fmt.Errorf("invalid device %q: use auto, cpu, or cuda", c.Device)
	}

	if !IsValidLanguage(c.Language) {
		return fmt.Errorf(
			"invalid language %q: use auto or an ISO 639-1 code like ja or en",
			c.Language,
		)
	}

	return nil
}

// ResolveDevice maps the auto device to a concrete backend device.
func (c *Config) ResolveDevice() string {
	if c.Device != "auto" {
		return c.Device
	}
	if CanUseGPU() {
		return "cuda"
	}
	return "cpu"
}

var languageRegex = regexp.MustCompile(`^[a-z]{2,3}$`)

// IsValidLanguage accepts "auto" or a two/three letter ISO 639 code.
func IsValidLanguage(lang string) bool {
	if lang == "auto" {
		return true
	}
	return languageRegex.MatchString(lang)
}

// CanUseGPU reports whether an NVIDIA GPU is visible to this process.
func CanUseGPU() bool {
	if os.Getenv("WHISPER_APP_FORCE_CPU") != "" {
		return false
	}
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}
