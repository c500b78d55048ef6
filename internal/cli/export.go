package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

var exportCmd = &cobra.Command{
	Use:   "export [transcript_file]",
	Short: "Convert a saved transcript to subtitles",
	Long: `Convert a transcript text file produced by this app into SRT or
VTT subtitles.

Examples:
  whisper-app export interview_transcription.txt
  whisper-app export interview_transcription.txt -f vtt -o interview.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt)")
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	if format == transcript.FormatText {
		return fmt.Errorf("export format must be srt or vtt")
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) +
			transcript.GetExtensionForFormat(format)
	}

	parser := &transcript.TextParser{}
	doc, err := parser.Parse(inputPath)
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		return fmt.Errorf("no transcript lines found in %s", inputPath)
	}

	writer, err := transcript.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(doc, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles saved: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(doc))

	return nil
}
