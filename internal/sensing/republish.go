package sensing

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/mqtt"
)

// Publisher is the subset of the broker client used by RepublishHandler.
// *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// RepublishHandler publishes every event back to the broker as a wire
// document on <root>/<sensor id>. Pointed at a live topic tree during a
// replay it makes the recording indistinguishable from live sensors.
type RepublishHandler struct {
	pub  Publisher
	root string
	qos  byte
}

// NewRepublishHandler creates a handler publishing under root.
func NewRepublishHandler(pub Publisher, root string, qos byte) *RepublishHandler {
	return &RepublishHandler{pub: pub, root: root, qos: qos}
}

// HandleEvent encodes ev and publishes it. Events without a sensor id have
// no topic and are rejected.
func (h *RepublishHandler) HandleEvent(_ context.Context, ev Event) error {
	if ev.SensorID == "" {
		return errors.New("republishing event: no sensor id")
	}

	payload, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	topic := mqtt.Topics{}.SensorReading(h.root, ev.SensorID)
	if err := h.pub.Publish(topic, payload, h.qos, false); err != nil {
		return fmt.Errorf("republishing event from %s: %w", ev.SensorID, err)
	}
	eventsRepublished.Inc()
	return nil
}
