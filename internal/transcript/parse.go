package transcript

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// matches a transcript line: [0.00s -> 5.00s] text
var lineRegex = regexp.MustCompile(`^\[(\d+(?:\.\d+)?)s -> (\d+(?:\.\d+)?)s\] (.*)$`)

// plain text transcript parser
type TextParser struct{}

// parses a saved transcript file back into a document. Lines that do
// not match the transcript format are skipped.
func (p *TextParser) Parse(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer file.Close()

	var doc Document
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		matches := lineRegex.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}

		start, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(matches[2], 64)
		if err != nil {
			continue
		}

		doc = append(doc, Segment{
			StartTime: time.Duration(start * float64(time.Second)),
			EndTime:   time.Duration(end * float64(time.Second)),
			Text:      matches[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return doc, nil
}
