package cli

import (
	"testing"

	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    transcript.Format
		wantErr bool
	}{
		{"txt", transcript.FormatText, false},
		{"text", transcript.FormatText, false},
		{"TXT", transcript.FormatText, false},
		{"srt", transcript.FormatSRT, false},
		{"SRT", transcript.FormatSRT, false},
		{"vtt", transcript.FormatVTT, false},
		{"ass", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
