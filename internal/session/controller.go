package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/syuuma-ito/whisper-app/internal/audio"
	"github.com/syuuma-ito/whisper-app/internal/logging"
	"github.com/syuuma-ito/whisper-app/internal/transcribe"
	"github.com/syuuma-ito/whisper-app/internal/transcript"
	"github.com/syuuma-ito/whisper-app/internal/video"
)

var (
	// returned by Start while a run is in flight
	ErrBusy = errors.New("a transcription is already running")
	// returned by Start when no input file has been selected
	ErrNoInput = errors.New("no input file selected")
)

// Config for a session controller.
type Config struct {
	Transcriber transcribe.Transcriber
	Writer      transcript.Writer
	Format      transcript.Format
	OutputDir   string
	TempDir     string
	Logger      *logging.Logger
}

// Controller owns the session state machine. At most one transcription
// run is active; all state is mutated under the controller mutex and
// observers are notified through a buffered event channel.
type Controller struct {
	mu         sync.Mutex
	state      State
	inputPath  string
	outputPath string

	// bumped on cancel so a stale worker result is discarded
	generation int
	cancelRun  context.CancelFunc

	transcriber transcribe.Transcriber
	writer      transcript.Writer
	format      transcript.Format
	outputDir   string
	tempDir     string
	logger      *logging.Logger

	subMu sync.Mutex
	subs  []chan Event
}

func NewController(cfg Config) *Controller {
	writer := cfg.Writer
	if writer == nil {
		writer = &transcript.TextWriter{}
	}
	format := cfg.Format
	if format == "" {
		format = transcript.FormatText
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger(false)
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Controller{
		state:       StateIdle,
		transcriber: cfg.Transcriber,
		writer:      writer,
		format:      format,
		outputDir:   cfg.OutputDir,
		tempDir:     tempDir,
		logger:      logger,
	}
}

// Subscribe returns a channel of session events. Events are dropped for
// slow subscribers rather than blocking the controller.
func (c *Controller) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Controller) publish(ev Event) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current state as an event.
func (c *Controller) Snapshot() Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Event{
		State:      c.state,
		InputPath:  c.inputPath,
		OutputPath: c.outputPath,
	}
}

// SelectFile moves the session to Loading with the given input file.
// Allowed from Idle, Done, and Failed; rejected while a run is active.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle, StateLoading, StateDone, StateFailed:
	default:
		return ErrBusy
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !audio.IsMediaFile(path) {
		return fmt.Errorf(
			"unsupported file type: %s (expected audio or video file)",
			filepath.Ext(path),
		)
	}

	c.state = StateLoading
	c.inputPath = path
	c.outputPath = transcript.DefaultOutputPath(path, c.outputDir, c.format)

	c.publish(Event{
		State:      c.state,
		InputPath:  c.inputPath,
		OutputPath: c.outputPath,
		Message:    "file selected",
	})
	return nil
}

// Start launches the transcription run on a worker goroutine. Only
// valid from Loading; a Start while Transcribing returns ErrBusy and
// leaves the running session untouched.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateTranscribing {
		return ErrBusy
	}
	if c.state != StateLoading {
		return ErrNoInput
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel
	c.generation++
	generation := c.generation
	c.state = StateTranscribing

	c.publish(Event{
		State:     c.state,
		InputPath: c.inputPath,
		Message:   "transcription started",
	})

	go c.run(runCtx, generation, c.inputPath, c.outputPath)
	return nil
}

// Cancel stops waiting for the in-flight run and discards its eventual
// result. The backend call itself may not be interruptible; the context
// is cancelled and the generation bumped so a late result is ignored.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateTranscribing {
		return
	}

	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	c.generation++
	c.state = StateIdle
	c.inputPath = ""
	c.outputPath = ""

	c.publish(Event{State: c.state, Message: "transcription cancelled"})
}

// Dismiss returns the session to Idle after a run has finished.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDone && c.state != StateFailed {
		return
	}

	c.state = StateIdle
	c.inputPath = ""
	c.outputPath = ""

	c.publish(Event{State: c.state})
}

// run executes one transcription on its own goroutine and hands the
// outcome back through fail or complete.
func (c *Controller) run(ctx context.Context, generation int, inputPath, outputPath string) {
	c.progress(generation, 0.1, "preparing audio")

	audioPath := inputPath
	if audio.IsVideoFile(inputPath) {
		tempDir, err := os.MkdirTemp(c.tempDir, "whisper-app-*")
		if err != nil {
			c.fail(generation, StageInput, fmt.Errorf("failed to create temp directory: %w", err))
			return
		}
		defer os.RemoveAll(tempDir)

		audioPath = filepath.Join(tempDir, "audio.mp3")
		processor := video.NewProcessor(tempDir)
		if err := processor.ExtractAudio(
			ctx,
			inputPath,
			audioPath,
			video.DefaultExtractAudioOptions(),
		); err != nil {
			c.fail(generation, StageInput, fmt.Errorf("failed to extract audio: %w", err))
			return
		}
	}

	c.progress(generation, 0.3, "transcribing")

	result, err := c.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		c.fail(generation, StageModel, err)
		return
	}

	c.complete(generation, outputPath, result.Segments)
}

// progress publishes a progress update unless the run is stale.
func (c *Controller) progress(generation int, value float64, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.state != StateTranscribing {
		return
	}
	c.publish(Event{
		State:     c.state,
		InputPath: c.inputPath,
		Progress:  value,
		Message:   message,
	})
}

// fail records a failed run. A result from a cancelled generation is
// discarded.
func (c *Controller) fail(generation int, stage string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.logger.Debugw("discarding result of cancelled run", "stage", stage)
		return
	}
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}

	c.state = StateFailed
	c.logger.Errorw("transcription failed", "stage", stage, "error", err)
	c.publish(Event{
		State:      c.state,
		InputPath:  c.inputPath,
		OutputPath: c.outputPath,
		Stage:      stage,
		Error:      err.Error(),
	})
}

// complete applies a successful result. The staleness check and the
// transcript write happen under the same lock, so a Cancel cannot land
// between them and the output of a cancelled run is never written.
func (c *Controller) complete(generation int, outputPath string, segments transcript.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.logger.Debugw("discarding result of cancelled run")
		return
	}
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}

	c.publish(Event{
		State:     c.state,
		InputPath: c.inputPath,
		Progress:  0.9,
		Message:   "writing transcript",
	})

	if err := c.writer.Write(segments, outputPath); err != nil {
		c.state = StateFailed
		c.logger.Errorw("transcription failed", "stage", StageOutput, "error", err)
		c.publish(Event{
			State:      c.state,
			InputPath:  c.inputPath,
			OutputPath: c.outputPath,
			Stage:      StageOutput,
			Error:      err.Error(),
		})
		return
	}

	c.logger.Infow("transcription complete",
		"output", outputPath,
		"segments", len(segments),
	)
	c.state = StateDone
	c.publish(Event{
		State:      c.state,
		InputPath:  c.inputPath,
		OutputPath: c.outputPath,
		Progress:   1.0,
		Message:    "transcription complete",
	})
}
