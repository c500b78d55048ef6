package transcribe

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

func TestParseWhisperOutput(t *testing.T) {
	data := []byte(`{
		"language": "en",
		"language_probability": 0.98,
		"duration": 10.0,
		"segments": [
			{"start": 0.0, "end": 5.0, "text": " Hello, world!"},
			{"start": 5.0, "end": 10.0, "text": "This is a test."},
			{"start": 10.0, "end": 10.0, "text": "   "}
		]
	}`)

	result, err := parseWhisperOutput(data)
	if err != nil {
		t.Fatalf("parseWhisperOutput failed: %v", err)
	}

	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if result.Duration != 10*time.Second {
		t.Errorf("duration = %v, want 10s", result.Duration)
	}

	// blank segment is dropped
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	if result.Segments[0].Text != "Hello, world!" {
		t.Errorf("segment 0 text = %q, want 'Hello, world!'", result.Segments[0].Text)
	}
	if result.Segments[1].StartTime != 5*time.Second {
		t.Errorf("segment 1 start = %v, want 5s", result.Segments[1].StartTime)
	}
}

func TestParseWhisperOutputInvalid(t *testing.T) {
	if _, err := parseWhisperOutput([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewWhisperTranscriberDefaults(t *testing.T) {
	tr := NewWhisperTranscriber(Options{})
	if tr.options.Model != "large-v3-turbo" {
		t.Errorf("default model = %q, want large-v3-turbo", tr.options.Model)
	}
	if tr.options.Device != "cpu" {
		t.Errorf("default device = %q, want cpu", tr.options.Device)
	}
	if tr.options.ComputeType != "float32" {
		t.Errorf("default compute type = %q, want float32", tr.options.ComputeType)
	}
	if tr.options.BeamSize != 5 {
		t.Errorf("default beam size = %d, want 5", tr.options.BeamSize)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		provider Provider
		apiKey   string
		wantErr  bool
	}{
		{"whisper without key", ProviderWhisper, "", false},
		{"openai with key", ProviderOpenAI, "sk-test", false},
		{"openai without key", ProviderOpenAI, "", true},
		{"gemini without key", ProviderGemini, "", true},
		{"unknown provider", Provider("deepgram"), "key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Factory(ctx, tt.provider, tt.apiKey, Options{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Factory(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			}
		})
	}
}

func TestWriteHelperScriptUniquePaths(t *testing.T) {
	first, err := writeHelperScript()
	if err != nil {
		t.Fatalf("writeHelperScript failed: %v", err)
	}
	defer os.Remove(first)

	second, err := writeHelperScript()
	if err != nil {
		t.Fatalf("writeHelperScript failed: %v", err)
	}
	defer os.Remove(second)

	// concurrent runs each get their own copy
	if first == second {
		t.Errorf("helper script paths collide: %s", first)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("helper script not readable: %v", err)
	}
	if !bytes.Equal(data, whisperScript) {
		t.Error("helper script content does not match embedded source")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	tr := NewWhisperTranscriber(Options{})
	if _, err := tr.Transcribe(context.Background(), "/nonexistent/audio.mp3"); err == nil {
		t.Error("expected error for missing audio file")
	}
}
