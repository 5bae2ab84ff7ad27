package sensing

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensing/internal/model"
)

// testRegistry returns a registry with sensor s1 observing entity e1, plus
// an unassociated sensor s2 and an entity e2 with no sensors.
func testRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	reg := entity.NewRegistry()
	steps := []error{
		reg.RegisterSensor(entity.SensorDescription{ID: "s1", Name: "Sensor 1"}),
		reg.RegisterSensor(entity.SensorDescription{ID: "s2", Name: "Sensor 2"}),
		reg.RegisterSensedEntity(entity.SensedEntityDescription{ID: "e1", Name: "Entity 1", Kind: entity.KindPhysicalSpace}),
		reg.RegisterSensedEntity(entity.SensedEntityDescription{ID: "e2", Name: "Entity 2", Kind: entity.KindPhysicalSpace}),
		reg.AssociateSensorWithSensedEntity("s1", "e1"),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building registry: %v", err)
		}
	}
	return reg
}

// testPipeline wires a handler with a model updater over reg's entities.
func testPipeline(reg *entity.Registry) (*SensedEntityHandler, *model.Collection) {
	models := model.NewCollectionFromRegistry(reg)
	h := NewSensedEntityHandlerFromRegistry(reg)
	h.AddListener(NewModelUpdater(models))
	return h, models
}

func num(typ string, v float64) Field {
	return Field{Type: typ, Value: []byte(strconv.FormatFloat(v, 'f', -1, 64))}
}

func reading(sensor string, ts int64, name string, f Field) Event {
	return Event{SensorID: sensor, Timestamp: ts, Payload: Payload{name: f}}
}

// recordingListener captures every resolved event it sees.
type recordingListener struct {
	mu     sync.Mutex
	events []ResolvedEvent
}

func (l *recordingListener) HandleSensorData(_ context.Context, ev ResolvedEvent) error {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	return nil
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// fakeSubscriber stands in for the broker client.
type fakeSubscriber struct {
	mu           sync.Mutex
	handlers     map[string]mqtt.MessageHandler
	subscribeErr error
	unsubscribed []string
	published    []string
	qos          byte
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.handlers[topic] = handler
	f.qos = qos
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	f.unsubscribed = append(f.unsubscribed, topic)
	return nil
}

// publish delivers a message to every subscription, as the broker would for
// a wildcard subscription covering topic.
func (f *fakeSubscriber) publish(topic string, payload []byte) {
	f.mu.Lock()
	handlers := make([]mqtt.MessageHandler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		_ = h(topic, payload)
	}
}

// Publish lets the fake broker stand in for a Publisher. Messages are
// delivered synchronously to current subscriptions.
func (f *fakeSubscriber) Publish(topic string, payload []byte, _ byte, _ bool) error {
	f.mu.Lock()
	f.published = append(f.published, topic)
	f.mu.Unlock()
	f.publish(topic, payload)
	return nil
}

func (f *fakeSubscriber) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// stubInput is an Input whose start result is fixed.
type stubInput struct {
	name     string
	startErr error

	mu      sync.Mutex
	sink    Sink
	stopped int
}

func (s *stubInput) Name() string { return s.name }

func (s *stubInput) Start(_ context.Context, sink Sink) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
	return nil
}

func (s *stubInput) Stop() error {
	s.mu.Lock()
	s.stopped++
	s.mu.Unlock()
	return nil
}

func (s *stubInput) emit(ev Event) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	sink(ev)
}

// logEntry is one call captured by captureLogger.
type logEntry struct {
	level string
	msg   string
	args  map[string]any
}

// captureLogger records every log call with its key/value pairs.
type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) record(level, msg string, args []any) {
	kv := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			kv[key] = args[i+1]
		}
	}
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: kv})
	l.mu.Unlock()
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *captureLogger) at(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}
