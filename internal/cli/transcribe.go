package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syuuma-ito/whisper-app/internal/audio"
	"github.com/syuuma-ito/whisper-app/internal/transcript"
	"github.com/syuuma-ito/whisper-app/internal/video"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file to a timestamped text file",
	Long: `Transcribe the specified audio or video file without the GUI.

The command accepts audio files (mp3, wav, m4a, etc.) and video files
(mp4, mkv, etc.). For video files the audio track is extracted first.

Examples:
  whisper-app transcribe interview.mp3
  whisper-app transcribe lecture.mp4 --model small --device cpu
  whisper-app transcribe podcast.wav -p openai -k YOUR_KEY
  whisper-app transcribe talk.m4a --format srt -o talk.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	addModelFlags(transcribeCmd)
	transcribeCmd.Flags().
		StringP("format", "f", "txt", "Output format (txt, srt, vtt)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf(
			"unsupported file type: %s (expected audio or video file)",
			filepath.Ext(mediaPath),
		)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = transcript.DefaultOutputPath(mediaPath, cfg.OutputDir, format)
	}

	logger.Infow("starting transcription",
		"input", mediaPath,
		"output", outputPath,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"device", cfg.ResolveDevice(),
	)

	audioPath := mediaPath
	if audio.IsVideoFile(mediaPath) {
		logger.Infow("extracting audio from video")

		tempDir, err := os.MkdirTemp("", "whisper-app-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)

		audioPath = filepath.Join(tempDir, "audio.mp3")
		processor := video.NewProcessor(tempDir)
		if err := processor.ExtractAudio(
			ctx,
			mediaPath,
			audioPath,
			video.DefaultExtractAudioOptions(),
		); err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
	}

	if cfg.Provider != "whisper" && audioPath == mediaPath {
		// hosted providers upload the file, so shrink it first
		logger.Infow("compressing audio for upload")

		tempDir, err := os.MkdirTemp("", "whisper-app-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)

		compressed := filepath.Join(tempDir, "audio.mp3")
		if err := audio.CompressAudio(
			ctx,
			mediaPath,
			compressed,
			audio.DefaultCompressionOptions(),
		); err != nil {
			return fmt.Errorf("failed to compress audio: %w", err)
		}
		audioPath = compressed
	}

	transcriber, err := newTranscriber(cmd, cfg)
	if err != nil {
		return err
	}

	logger.Infow("transcribing audio (the first run may download model weights)")

	result, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("transcription complete",
		"segments", len(result.Segments),
		"language", result.Language,
		"duration", result.Duration.String(),
	)

	writer, err := transcript.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(result.Segments, outputPath); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Transcript saved: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", len(result.Segments))
	if result.Duration > 0 {
		fmt.Printf("  Duration: %s\n", result.Duration.String())
	}

	return nil
}

func parseFormat(s string) (transcript.Format, error) {
	switch strings.ToLower(s) {
	case "txt", "text":
		return transcript.FormatText, nil
	case "srt":
		return transcript.FormatSRT, nil
	case "vtt":
		return transcript.FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use txt, srt, or vtt", s)
	}
}
