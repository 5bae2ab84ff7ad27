package sensing

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/mqtt"
)

// Subscriber is the subset of the broker client used by MQTTInput.
// *mqtt.Client satisfies it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// MQTTInput subscribes to every topic under a root and emits one event per
// message. Messages are delivered on the broker client's goroutines.
type MQTTInput struct {
	sub   Subscriber
	root  string
	qos   byte
	now   func() time.Time
	topic string

	mu      sync.Mutex
	started bool
	logger  Logger
}

// NewMQTTInput creates an input reading sensor documents under root.
func NewMQTTInput(sub Subscriber, root string, qos byte) *MQTTInput {
	return &MQTTInput{
		sub:    sub,
		root:   root,
		qos:    qos,
		now:    time.Now,
		topic:  mqtt.Topics{}.SensorTree(root),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for undecodable messages.
func (in *MQTTInput) SetLogger(logger Logger) {
	in.logger = loggerOrNoop(logger)
}

// Name identifies the input in logs and metrics.
func (in *MQTTInput) Name() string {
	return "mqtt"
}

// Start subscribes to the sensor topic tree.
func (in *MQTTInput) Start(_ context.Context, sink Sink) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.started {
		return ErrAlreadyStarted
	}

	handler := func(topic string, payload []byte) error {
		ev, ok := in.decode(topic, payload)
		if !ok {
			return nil
		}
		eventsReceived.WithLabelValues(in.Name()).Inc()
		sink(ev)
		return nil
	}

	if err := in.sub.Subscribe(in.topic, in.qos, handler); err != nil {
		return err
	}
	in.started = true
	return nil
}

// Stop unsubscribes. Messages already in flight may still reach the sink.
func (in *MQTTInput) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.started {
		return nil
	}
	in.started = false
	return in.sub.Unsubscribe(in.topic)
}

// decode turns a message into an event. The sensor id falls back to the
// topic suffix and the timestamp to the receipt time.
func (in *MQTTInput) decode(topic string, payload []byte) (Event, bool) {
	ev, err := DecodeEvent(payload)
	if err != nil {
		decodeFailures.WithLabelValues(in.Name()).Inc()
		in.logger.Warn("discarding undecodable message", "topic", topic, "error", err)
		return Event{}, false
	}

	if ev.SensorID == "" {
		id, ok := mqtt.Topics{}.SensorIDFromTopic(in.root, topic)
		if !ok {
			decodeFailures.WithLabelValues(in.Name()).Inc()
			in.logger.Warn("discarding message with no sensor id", "topic", topic)
			return Event{}, false
		}
		ev.SensorID = id
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = in.now().UnixMilli()
	}
	ev.Source = in.Name()

	return ev, true
}
