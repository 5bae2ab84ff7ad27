package sensing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SessionConfig describes one run of the pipeline.
type SessionConfig struct {
	Mode Mode

	// Subscriber, TopicRoot and QoS configure the broker input in live modes.
	Subscriber Subscriber
	TopicRoot  string
	QoS        byte

	// RecordingFile is written in ModeLiveRecording and read in ModeReplaying.
	RecordingFile string

	// Publisher and RepublishRoot, when both set, publish every event back
	// to the broker after it has been handled. QoS applies to the publishes.
	Publisher     Publisher
	RepublishRoot string

	// Duration ends a live session after the given time. Zero runs until
	// the context is cancelled. Ignored when replaying.
	Duration time.Duration

	Logger Logger
}

// Session wires a processor for one mode and runs it to completion.
type Session struct {
	cfg       SessionConfig
	processor *Processor
	replay    *ReplayInput
	recorder  *RecordingHandler
	logger    Logger
}

// NewSession builds the inputs and handlers for cfg.Mode. The recording
// handler, when present, is registered ahead of handler so every event is
// persisted before it is resolved.
func NewSession(cfg SessionConfig, handler Handler) (*Session, error) {
	s := &Session{
		cfg:       cfg,
		processor: NewProcessor(),
		logger:    loggerOrNoop(cfg.Logger),
	}
	s.processor.SetLogger(s.logger)

	switch cfg.Mode {
	case ModeLiveOnly, ModeLiveRecording:
		if cfg.Subscriber == nil {
			return nil, fmt.Errorf("%s mode requires a broker subscriber", cfg.Mode)
		}
		in := NewMQTTInput(cfg.Subscriber, cfg.TopicRoot, cfg.QoS)
		in.SetLogger(s.logger)
		s.processor.AddInput(in)

		if cfg.Mode == ModeLiveRecording {
			rec, err := OpenRecording(cfg.RecordingFile)
			if err != nil {
				return nil, err
			}
			s.recorder = rec
			s.processor.AddHandler(rec)
		}

	case ModeReplaying:
		s.replay = NewReplayInput(cfg.RecordingFile)
		s.replay.SetLogger(s.logger)
		s.processor.AddInput(s.replay)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(cfg.Mode))
	}

	if handler != nil {
		s.processor.AddHandler(handler)
	}

	if cfg.RepublishRoot != "" {
		if cfg.Publisher == nil {
			return nil, fmt.Errorf("republishing to %s requires a broker publisher", cfg.RepublishRoot)
		}
		s.processor.AddHandler(NewRepublishHandler(cfg.Publisher, cfg.RepublishRoot, cfg.QoS))
	}

	return s, nil
}

// Processor returns the session's processor.
func (s *Session) Processor() *Processor {
	return s.processor
}

// Recorder returns the recording handler, or nil outside ModeLiveRecording.
func (s *Session) Recorder() *RecordingHandler {
	return s.recorder
}

// Run starts the session and blocks until it ends, then stops the processor.
//
// Live sessions end when ctx is cancelled or the configured duration
// elapses. A replay ends when the recording is exhausted or ctx is
// cancelled. Every session has exactly one input, so a start failure ends
// the session with that error.
func (s *Session) Run(ctx context.Context) error {
	inputs := s.processor.Inputs()
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name())
	}
	s.logger.Info("sensing session starting", "mode", s.cfg.Mode.String(), "inputs", names)

	if err := s.processor.Start(ctx); err != nil {
		return errors.Join(err, s.processor.Stop())
	}

	var runErr error
	if s.cfg.Mode == ModeReplaying {
		runErr = s.waitReplay(ctx)
	} else {
		s.waitLive(ctx)
	}

	stopErr := s.processor.Stop()
	s.logger.Info("sensing session ended", "mode", s.cfg.Mode.String())

	return errors.Join(runErr, stopErr)
}

func (s *Session) waitLive(ctx context.Context) {
	if s.cfg.Duration <= 0 {
		<-ctx.Done()
		return
	}

	timer := time.NewTimer(s.cfg.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		s.logger.Info("session duration elapsed", "duration", s.cfg.Duration.String())
	}
}

func (s *Session) waitReplay(ctx context.Context) error {
	select {
	case <-s.replay.Done():
		s.logger.Info("replay complete", "events", s.replay.Count())
		return s.replay.Err()
	case <-ctx.Done():
		return nil
	}
}
