package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/syuuma-ito/whisper-app/internal/audio"
	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := audio.GetDuration(audioPath)

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if t.options.Language != "" && t.options.Language != "auto" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	verbose, err := parseVerboseJSONResponse(resp.RawJSON())
	if err != nil {
		// fall back to the flat text response
		return &Result{
			Segments: transcript.Document{{
				StartTime: 0,
				EndTime:   duration,
				Text:      strings.TrimSpace(resp.Text),
			}},
			Language: t.options.Language,
			Duration: duration,
		}, nil
	}

	if verbose.Duration > 0 {
		duration = time.Duration(verbose.Duration * float64(time.Second))
	}

	return &Result{
		Segments: verboseSegments(verbose, duration),
		Language: verbose.Language,
		Duration: duration,
	}, nil
}

func parseVerboseJSONResponse(rawJSON string) (*whisperVerboseResponse, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verbose whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verbose); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(verbose.Segments) == 0 && verbose.Text == "" {
		return nil, fmt.Errorf("no segments or text in response")
	}

	return &verbose, nil
}

func verboseSegments(
	verbose *whisperVerboseResponse,
	duration time.Duration,
) transcript.Document {
	if len(verbose.Segments) == 0 {
		return transcript.Document{{
			StartTime: 0,
			EndTime:   duration,
			Text:      strings.TrimSpace(verbose.Text),
		}}
	}

	segments := make(transcript.Document, 0, len(verbose.Segments))
	for _, seg := range verbose.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			StartTime: time.Duration(seg.Start * float64(time.Second)),
			EndTime:   time.Duration(seg.End * float64(time.Second)),
			Text:      text,
		})
	}

	return segments
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
