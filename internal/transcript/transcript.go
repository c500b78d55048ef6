package transcript

import (
	"time"
)

// represents one timestamped span of recognized speech
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// ordered transcript, in the order the model emitted segments
type Document []Segment

// represents supported output formats
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// interface for writing transcripts to files
type Writer interface {
	Write(doc Document, path string) error
}

// interface for parsing saved transcripts
type Parser interface {
	Parse(path string) (Document, error)
}
