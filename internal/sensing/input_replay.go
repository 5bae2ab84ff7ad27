package sensing

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// maxRecordSize bounds one line of a recording.
const maxRecordSize = 1 << 20

// ReplayInput re-emits a recording, one event per line, in file order and
// without the original timing. It runs on its own goroutine and closes the
// channel returned by Done when the recording is exhausted.
type ReplayInput struct {
	open func() (io.ReadCloser, error)
	name string

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	count   int
	logger  Logger
}

// NewReplayInput creates an input replaying the recording at path.
func NewReplayInput(path string) *ReplayInput {
	return newReplayInput(path, func() (io.ReadCloser, error) {
		return os.Open(path) //nolint:gosec // Path comes from operator config
	})
}

// NewReplayInputFromReader replays events read from r.
func NewReplayInputFromReader(name string, r io.Reader) *ReplayInput {
	return newReplayInput(name, func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	})
}

func newReplayInput(name string, open func() (io.ReadCloser, error)) *ReplayInput {
	return &ReplayInput{
		open:   open,
		name:   name,
		done:   make(chan struct{}),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for skipped lines and completion.
func (in *ReplayInput) SetLogger(logger Logger) {
	in.logger = loggerOrNoop(logger)
}

// Name identifies the input in logs and metrics.
func (in *ReplayInput) Name() string {
	return "replay"
}

// Start opens the recording and begins emitting events. The open error, if
// any, is returned synchronously and Done is closed.
func (in *ReplayInput) Start(ctx context.Context, sink Sink) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.started {
		return ErrAlreadyStarted
	}
	in.started = true

	rc, err := in.open()
	if err != nil {
		in.err = fmt.Errorf("opening recording %s: %w", in.name, err)
		close(in.done)
		return in.err
	}

	ctx, cancel := context.WithCancel(ctx)
	in.cancel = cancel

	go in.run(ctx, rc, sink)
	return nil
}

func (in *ReplayInput) run(ctx context.Context, rc io.ReadCloser, sink Sink) {
	defer close(in.done)
	defer rc.Close() //nolint:errcheck // Read-only file

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	var count, line int
	var err error
	for scanner.Scan() {
		line++
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		ev, decErr := DecodeEvent(raw)
		if decErr != nil {
			decodeFailures.WithLabelValues(in.Name()).Inc()
			in.logger.Warn("skipping undecodable record", "file", in.name, "line", line, "error", decErr)
			continue
		}
		ev.Source = in.Name()

		eventsReceived.WithLabelValues(in.Name()).Inc()
		sink(ev)
		count++
	}
	if err == nil {
		err = scanner.Err()
	}

	in.mu.Lock()
	in.count = count
	if err != nil && !errors.Is(err, context.Canceled) {
		in.err = fmt.Errorf("reading recording %s: %w", in.name, err)
	}
	in.mu.Unlock()

	in.logger.Info("replay finished", "file", in.name, "events", count)
}

// Done is closed once every event has been emitted, the replay was
// cancelled, or the recording could not be read.
func (in *ReplayInput) Done() <-chan struct{} {
	return in.done
}

// Wait blocks until the replay finishes or ctx is done.
func (in *ReplayInput) Wait(ctx context.Context) error {
	select {
	case <-in.done:
		return in.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the read error that ended the replay, if any.
func (in *ReplayInput) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

// Count returns the number of events emitted. Valid after Done is closed.
func (in *ReplayInput) Count() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.count
}

// Stop cancels an in-flight replay and waits for it to end.
func (in *ReplayInput) Stop() error {
	in.mu.Lock()
	started, cancel := in.started, in.cancel
	in.mu.Unlock()

	if !started {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	<-in.done
	return nil
}
