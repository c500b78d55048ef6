package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/syuuma-ito/whisper-app/internal/transcribe"
	"github.com/syuuma-ito/whisper-app/internal/transcript"
)

// scripted transcriber for controller tests
type fakeTranscriber struct {
	result *transcribe.Result
	err    error
	block  chan struct{} // when non-nil, Transcribe waits until closed
	calls  atomic.Int32
}

func (f *fakeTranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*transcribe.Result, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-time.After(5 * time.Second):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatalf("failed to write test audio: %v", err)
	}
	return path
}

func waitForState(t *testing.T, events <-chan Event, want State) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.State == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func newTestController(t *testing.T, tr transcribe.Transcriber) (*Controller, string) {
	t.Helper()
	outDir := t.TempDir()
	c := NewController(Config{
		Transcriber: tr,
		OutputDir:   outDir,
	})
	return c, outDir
}

func TestHappyPath(t *testing.T) {
	fake := &fakeTranscriber{
		result: &transcribe.Result{
			Segments: transcript.Document{
				{StartTime: 0, EndTime: 5 * time.Second, Text: "Hello, world!"},
				{StartTime: 5 * time.Second, EndTime: 10 * time.Second, Text: "This is a test."},
			},
		},
	}
	c, outDir := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if c.State() != StateLoading {
		t.Fatalf("state after select = %v, want loading", c.State())
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForState(t, events, StateDone)
	if ev.OutputPath == "" {
		t.Fatal("done event has no output path")
	}

	data, err := os.ReadFile(filepath.Join(outDir, "input_transcription.txt"))
	if err != nil {
		t.Fatalf("output file not readable: %v", err)
	}
	want := "[0.00s -> 5.00s] Hello, world!\n[5.00s -> 10.00s] This is a test.\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", string(data), want)
	}
}

func TestModelFailure(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("backend unavailable")}
	c, outDir := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := waitForState(t, events, StateFailed)
	if ev.Stage != StageModel {
		t.Errorf("failure stage = %q, want %q", ev.Stage, StageModel)
	}
	if ev.Error == "" {
		t.Error("failed event has no error message")
	}

	// no output file in a readable Done state
	if _, err := os.Stat(filepath.Join(outDir, "input_transcription.txt")); err == nil {
		t.Error("output file exists after model failure")
	}
}

func TestStartWhileTranscribingRejected(t *testing.T) {
	fake := &fakeTranscriber{
		result: &transcribe.Result{},
		block:  make(chan struct{}),
	}
	c, _ := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, events, StateTranscribing)

	if err := c.Start(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start error = %v, want ErrBusy", err)
	}
	if c.State() != StateTranscribing {
		t.Errorf("state after rejected start = %v, want transcribing", c.State())
	}

	close(fake.block)
	waitForState(t, events, StateDone)

	if got := fake.calls.Load(); got != 1 {
		t.Errorf("transcriber invoked %d times, want 1", got)
	}
}

func TestCancelDiscardsResult(t *testing.T) {
	fake := &fakeTranscriber{
		result: &transcribe.Result{
			Segments: transcript.Document{
				{StartTime: 0, EndTime: time.Second, Text: "late"},
			},
		},
		block: make(chan struct{}),
	}
	c, outDir := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, events, StateTranscribing)

	c.Cancel()
	if c.State() != StateIdle {
		t.Fatalf("state after cancel = %v, want idle", c.State())
	}

	// let the stale worker finish; its result must be discarded
	close(fake.block)
	time.Sleep(100 * time.Millisecond)

	if c.State() != StateIdle {
		t.Errorf("state after stale result = %v, want idle", c.State())
	}
	if _, err := os.Stat(filepath.Join(outDir, "input_transcription.txt")); err == nil {
		t.Error("output file written by cancelled run")
	}
}

// writer that pauses mid-write so a concurrent Cancel can be observed
type gatedWriter struct {
	inner   transcript.TextWriter
	entered chan struct{}
	release chan struct{}
}

func (w *gatedWriter) Write(doc transcript.Document, path string) error {
	close(w.entered)
	select {
	case <-w.release:
	case <-time.After(5 * time.Second):
	}
	return w.inner.Write(doc, path)
}

func TestCancelDuringWriteIsAtomic(t *testing.T) {
	fake := &fakeTranscriber{
		result: &transcribe.Result{
			Segments: transcript.Document{
				{StartTime: 0, EndTime: time.Second, Text: "kept"},
			},
		},
	}
	writer := &gatedWriter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	outDir := t.TempDir()
	c := NewController(Config{
		Transcriber: fake,
		Writer:      writer,
		OutputDir:   outDir,
	})
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	<-writer.entered

	cancelled := make(chan struct{})
	go func() {
		c.Cancel()
		close(cancelled)
	}()

	// the result is being applied; Cancel must wait rather than
	// interleave with the write
	select {
	case <-cancelled:
		t.Fatal("Cancel returned while the result was being applied")
	case <-time.After(100 * time.Millisecond):
	}

	close(writer.release)
	<-cancelled

	waitForState(t, events, StateDone)
	if c.State() != StateDone {
		t.Errorf("state after late cancel = %v, want done", c.State())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "input_transcription.txt"))
	if err != nil {
		t.Fatalf("output file not readable: %v", err)
	}
	want := "[0.00s -> 1.00s] kept\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", string(data), want)
	}
}

func TestDismissReturnsToIdle(t *testing.T) {
	fake := &fakeTranscriber{result: &transcribe.Result{}}
	c, _ := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, events, StateDone)

	c.Dismiss()
	if c.State() != StateIdle {
		t.Errorf("state after dismiss = %v, want idle", c.State())
	}

	snap := c.Snapshot()
	if snap.InputPath != "" || snap.OutputPath != "" {
		t.Errorf("dismiss did not clear paths: %+v", snap)
	}
}

func TestEmptyTranscript(t *testing.T) {
	fake := &fakeTranscriber{result: &transcribe.Result{}}
	c, outDir := newTestController(t, fake)
	events := c.Subscribe()

	input := writeTempAudio(t)
	if err := c.SelectFile(input); err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForState(t, events, StateDone)

	info, err := os.Stat(filepath.Join(outDir, "input_transcription.txt"))
	if err != nil {
		t.Fatalf("output file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected zero-length file, got %d bytes", info.Size())
	}
}

func TestSelectFileValidation(t *testing.T) {
	fake := &fakeTranscriber{result: &transcribe.Result{}}
	c, _ := newTestController(t, fake)

	if err := c.SelectFile("/nonexistent/audio.mp3"); err == nil {
		t.Error("expected error for missing file")
	}

	textPath := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(textPath, []byte("hi"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := c.SelectFile(textPath); err == nil {
		t.Error("expected error for unsupported file type")
	}

	if c.State() != StateIdle {
		t.Errorf("state after rejected select = %v, want idle", c.State())
	}
}

func TestStartWithoutInput(t *testing.T) {
	fake := &fakeTranscriber{result: &transcribe.Result{}}
	c, _ := newTestController(t, fake)

	if err := c.Start(context.Background()); !errors.Is(err, ErrNoInput) {
		t.Errorf("Start without input error = %v, want ErrNoInput", err)
	}
}
