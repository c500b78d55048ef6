package config

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid whisper config",
			cfg: Config{
				Provider:    "whisper",
				Model:       "large-v3-turbo",
				ComputeType: "float32",
				Device:      "auto",
				Language:    "auto",
			},
		},
		{
			name: "invalid model",
			cfg: Config{
				Provider:    "whisper",
				Model:       "gigantic",
				ComputeType: "float32",
				Device:      "cpu",
				Language:    "auto",
			},
			wantErr: true,
		},
		{
			name: "invalid compute type",
			cfg: Config{
				Provider:    "whisper",
				Model:       "base",
				ComputeType: "float64",
				Device:      "cpu",
				Language:    "auto",
			},
			wantErr: true,
		},
		{
			name: "hosted provider skips model list",
			cfg: Config{
				Provider: "openai",
				Model:    "whisper-1",
				Device:   "cpu",
				Language: "auto",
			},
		},
		{
			name: "invalid device",
			cfg: Config{
				Provider:    "whisper",
				Model:       "base",
				ComputeType: "int8",
				Device:      "tpu",
				Language:    "auto",
			},
			wantErr: true,
		},
		{
			name: "explicit language code",
			cfg: Config{
				Provider:    "whisper",
				Model:       "base",
				ComputeType: "int8",
				Device:      "cpu",
				Language:    "ja",
			},
		},
		{
			name: "invalid language code",
			cfg: Config{
				Provider:    "whisper",
				Model:       "base",
				ComputeType: "int8",
				Device:      "cpu",
				Language:    "Japanese",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"auto", true},
		{"en", true},
		{"ja", true},
		{"yue", true},
		{"", false},
		{"e", false},
		{"EN", false},
		{"english", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := IsValidLanguage(tt.lang); got != tt.want {
				t.Errorf("IsValidLanguage(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestResolveDevice(t *testing.T) {
	cfg := Config{Device: "cpu"}
	if got := cfg.ResolveDevice(); got != "cpu" {
		t.Errorf("ResolveDevice() = %q, want cpu", got)
	}

	cfg = Config{Device: "cuda"}
	if got := cfg.ResolveDevice(); got != "cuda" {
		t.Errorf("ResolveDevice() = %q, want cuda", got)
	}

	t.Setenv("WHISPER_APP_FORCE_CPU", "1")
	cfg = Config{Device: "auto"}
	if got := cfg.ResolveDevice(); got != "cpu" {
		t.Errorf("ResolveDevice() with GPU disabled = %q, want cpu", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WHISPER_APP_FORCE_CPU", "1")

	cfg, err := Load(Overrides{EnvFile: "does-not-exist.env"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Model != "large-v3-turbo" {
		t.Errorf("default model = %q, want large-v3-turbo", cfg.Model)
	}
	if cfg.ComputeType != "float32" {
		t.Errorf("cpu default compute type = %q, want float32", cfg.ComputeType)
	}
	if cfg.Language != "auto" {
		t.Errorf("default language = %q, want auto", cfg.Language)
	}
	if cfg.Provider != "whisper" {
		t.Errorf("default provider = %q, want whisper", cfg.Provider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WHISPER_APP_FORCE_CPU", "1")
	t.Setenv("WHISPER_APP_MODEL", "base")

	cfg, err := Load(Overrides{
		EnvFile: "does-not-exist.env",
		Model:   "small",
		Device:  "cpu",
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Model != "small" {
		t.Errorf("override model = %q, want small", cfg.Model)
	}
	if cfg.Device != "cpu" {
		t.Errorf("override device = %q, want cpu", cfg.Device)
	}
}
