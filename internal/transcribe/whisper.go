package transcribe

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

//go:embed assets/faster_whisper.py
var whisperScript []byte

// implements Transcriber using a local faster-whisper model invoked
// through an embedded python helper
type WhisperTranscriber struct {
	options Options
}

// JSON emitted by the helper script
type whisperOutput struct {
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	Duration            float64 `json:"duration"`
	Segments            []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func NewWhisperTranscriber(opts Options) *WhisperTranscriber {
	if opts.Model == "" {
		opts.Model = "large-v3-turbo"
	}
	if opts.Device == "" {
		opts.Device = "cpu"
	}
	if opts.ComputeType == "" {
		opts.ComputeType = "float32"
	}
	if opts.BeamSize <= 0 {
		opts.BeamSize = 5
	}
	return &WhisperTranscriber{options: opts}
}

// transcribes a single audio file. The first call may download model
// weights, which the library handles itself.
func (t *WhisperTranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	scriptPath, err := writeHelperScript()
	if err != nil {
		return nil, err
	}
	defer os.Remove(scriptPath)

	python := os.Getenv("WHISPER_APP_PYTHON")
	if python == "" {
		python = "python3"
	}

	args := []string{
		scriptPath,
		"--audio", audioPath,
		"--model", t.options.Model,
		"--device", t.options.Device,
		"--compute-type", t.options.ComputeType,
		"--beam-size", strconv.Itoa(t.options.BeamSize),
	}
	if t.options.Language != "" && t.options.Language != "auto" {
		args = append(args, "--language", t.options.Language)
	}

	cmd := exec.CommandContext(ctx, python, args...)
	cmd.Env = os.Environ()

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf(
				"faster-whisper failed: %s",
				strings.TrimSpace(string(ee.Stderr)),
			)
		}
		return nil, fmt.Errorf("failed to run faster-whisper helper: %w", err)
	}

	return parseWhisperOutput(out)
}

// writeHelperScript materializes the embedded helper into a unique
// temp file so concurrent runs never clobber each other.
func writeHelperScript() (string, error) {
	f, err := os.CreateTemp("", "whisper-app-helper-*.py")
	if err != nil {
		return "", fmt.Errorf("failed to create helper script: %w", err)
	}
	if _, err := f.Write(whisperScript); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write helper script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write helper script: %w", err)
	}
	return f.Name(), nil
}

func parseWhisperOutput(data []byte) (*Result, error) {
	var parsed whisperOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse helper output: %w", err)
	}

	result := &Result{
		Language: parsed.Language,
		Duration: time.Duration(parsed.Duration * float64(time.Second)),
	}
	for _, seg := range parsed.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, transcript.Segment{
			StartTime: time.Duration(seg.Start * float64(time.Second)),
			EndTime:   time.Duration(seg.End * float64(time.Second)),
			Text:      text,
		})
	}

	return result, nil
}

func (t *WhisperTranscriber) Close() error {
	return nil
}
