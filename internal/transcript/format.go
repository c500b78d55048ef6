package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// renders one transcript line: [0.00s -> 5.00s] Hello, world!
// Timestamps are seconds with two decimal digits; the text is written
// as given, without validation or escaping.
func FormatSegment(seg Segment) string {
	return fmt.Sprintf(
		"[%.2fs -> %.2fs] %s",
		seg.StartTime.Seconds(),
		seg.EndTime.Seconds(),
		seg.Text,
	)
}

// renders the whole document, one line per segment
func Render(doc Document) string {
	var sb strings.Builder
	for _, seg := range doc {
		sb.WriteString(FormatSegment(seg))
		sb.WriteString("\n")
	}
	return sb.String()
}

// plain text format, one line per segment
type TextWriter struct{}

// writes the document to a UTF-8 text file. An empty document
// produces an empty file. A partial file left by a failed write is
// removed best-effort.
func (w *TextWriter) Write(doc Document, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(Render(doc)), 0644); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatText:
		return &TextWriter{}, nil
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// transcript format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	default:
		return FormatText
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ".txt"
	}
}

// DefaultOutputPath returns <outputDir>/<input stem>_transcription<ext>.
// When outputDir is empty the input file's directory is used.
func DefaultOutputPath(inputPath, outputDir string, format Format) string {
	stem := strings.TrimSuffix(
		filepath.Base(inputPath),
		filepath.Ext(inputPath),
	)
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	return filepath.Join(
		outputDir,
		stem+"_transcription"+GetExtensionForFormat(format),
	)
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
