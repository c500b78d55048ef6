package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

// transcription result
type Result struct {
	Segments transcript.Document
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// transcription options
type Options struct {
	Model       string
	Language    string // "auto" or an ISO 639 code
	Device      string // cpu or cuda, local backend only
	ComputeType string // int8, float16, float32, local backend only
	BeamSize    int    // 0 = backend default
	Prompt      string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderWhisper:
		return NewWhisperTranscriber(opts), nil
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
