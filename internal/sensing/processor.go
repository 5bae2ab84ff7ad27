package sensing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Sink receives events from an input. It may be called concurrently.
type Sink func(Event)

// Input is a source of raw events.
//
// Start begins delivery to sink and returns once the input is running;
// events may arrive on any goroutine. Stop ends delivery and releases
// resources. Stop must be safe to call on an input that never started.
type Input interface {
	Name() string
	Start(ctx context.Context, sink Sink) error
	Stop() error
}

// Handler consumes every event the processor dispatches.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Processor fans events in from its inputs and out to its handlers.
//
// Each event is delivered synchronously, on the goroutine that produced it,
// to every handler in registration order. A handler that fails or panics is
// logged and counted; delivery continues with the next handler. Events from
// one input keep their order; events from different inputs may interleave.
type Processor struct {
	mu       sync.RWMutex
	inputs   []Input
	handlers []Handler
	started  bool
	ctx      context.Context

	stopOnce sync.Once
	logger   Logger
}

// NewProcessor creates a processor with no inputs or handlers.
func NewProcessor() *Processor {
	return &Processor{
		ctx:    context.Background(),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for dispatch failures and lifecycle events.
func (p *Processor) SetLogger(logger Logger) {
	p.logger = loggerOrNoop(logger)
}

// AddInput registers an input. Inputs added after Start are not started.
func (p *Processor) AddInput(in Input) {
	p.mu.Lock()
	p.inputs = append(p.inputs, in)
	p.mu.Unlock()
}

// AddHandler appends a handler to the dispatch list.
func (p *Processor) AddHandler(h Handler) {
	p.mu.Lock()
	p.handlers = append(p.handlers, h)
	p.mu.Unlock()
}

// Inputs returns the registered inputs.
func (p *Processor) Inputs() []Input {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Input, len(p.inputs))
	copy(out, p.inputs)
	return out
}

// Start starts every input.
//
// An input that fails to start is logged and skipped; the rest still start.
// The returned error joins each failure, wrapped with ErrInputStart, so the
// caller can decide whether a partial start is acceptable.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.ctx = ctx
	inputs := make([]Input, len(p.inputs))
	copy(inputs, p.inputs)
	p.mu.Unlock()

	var errs []error
	for _, in := range inputs {
		if err := in.Start(ctx, p.dispatch); err != nil {
			p.logger.Error("input failed to start", "input", in.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInputStart, in.Name(), err))
			continue
		}
		p.logger.Info("input started", "input", in.Name())
	}

	return errors.Join(errs...)
}

// Stop stops every input, then closes handlers that implement io.Closer.
// Only the first call has any effect.
func (p *Processor) Stop() error {
	var errs []error

	p.stopOnce.Do(func() {
		p.mu.RLock()
		inputs := make([]Input, len(p.inputs))
		copy(inputs, p.inputs)
		handlers := make([]Handler, len(p.handlers))
		copy(handlers, p.handlers)
		p.mu.RUnlock()

		for _, in := range inputs {
			if err := in.Stop(); err != nil {
				p.logger.Warn("input failed to stop", "input", in.Name(), "error", err)
				errs = append(errs, fmt.Errorf("stopping input %s: %w", in.Name(), err))
			}
		}

		for _, h := range handlers {
			c, ok := h.(io.Closer)
			if !ok {
				continue
			}
			if err := c.Close(); err != nil {
				p.logger.Warn("handler failed to close", "error", err)
				errs = append(errs, fmt.Errorf("closing handler: %w", err))
			}
		}

		p.logger.Info("processor stopped")
	})

	return errors.Join(errs...)
}

// dispatch delivers ev to every handler in order. It is the sink passed to
// every input.
func (p *Processor) dispatch(ev Event) {
	p.mu.RLock()
	handlers := p.handlers
	ctx := p.ctx
	p.mu.RUnlock()

	eventsDispatched.Inc()

	for _, h := range handlers {
		if err := deliverToHandler(ctx, h, ev); err != nil {
			handlerFailures.Inc()
			p.logger.Error("handler failed",
				"sensor", ev.SensorID,
				"source", ev.Source,
				"error", err,
			)
		}
	}
}

// deliverToHandler calls h, converting a panic into ErrProcessing.
func deliverToHandler(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: handler panic: %v", ErrProcessing, r)
		}
	}()

	return h.HandleEvent(ctx, ev)
}
