package sensing

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RecordingHandler appends every event it receives to a JSON Lines stream.
//
// Appends are serialized so the stream order matches arrival order at this
// handler. Each line is flushed before HandleEvent returns.
type RecordingHandler struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	count  int
	closed bool
}

// ErrRecordingClosed is returned when writing to a closed recording.
var ErrRecordingClosed = errors.New("sensing: recording closed")

// OpenRecording creates or truncates the recording file at path, creating
// parent directories as needed.
func OpenRecording(path string) (*RecordingHandler, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating recording directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // Path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}

	h := NewRecordingHandler(f)
	h.closer = f
	return h, nil
}

// NewRecordingHandler records to w. Close flushes w but does not close it.
func NewRecordingHandler(w io.Writer) *RecordingHandler {
	return &RecordingHandler{w: bufio.NewWriter(w)}
}

// HandleEvent appends ev as one line.
func (h *RecordingHandler) HandleEvent(_ context.Context, ev Event) error {
	line, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrRecordingClosed
	}

	if _, err := h.w.Write(line); err != nil {
		return fmt.Errorf("writing recording: %w", err)
	}
	if err := h.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing recording: %w", err)
	}
	if err := h.w.Flush(); err != nil {
		return fmt.Errorf("flushing recording: %w", err)
	}

	h.count++
	eventsRecorded.Inc()
	return nil
}

// Count returns the number of events recorded.
func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Close flushes the stream and closes the underlying file, if any.
// Later calls return nil.
func (h *RecordingHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	err := h.w.Flush()
	if h.closer != nil {
		if cerr := h.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
