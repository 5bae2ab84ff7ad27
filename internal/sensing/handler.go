package sensing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

// SensedEntityHandler resolves each event's sensor to the entity it observes
// and broadcasts the resolved event to its listeners.
//
// The resolution table is a snapshot taken at construction. Listeners run in
// registration order on the dispatching goroutine. A listener that fails or
// panics does not stop delivery to the listeners after it.
type SensedEntityHandler struct {
	mu        sync.RWMutex
	sensors   map[string]entity.SensorAssociation
	listeners []Listener
	logger    Logger
}

// NewSensedEntityHandler builds a handler from a set of associations.
// If a sensor id appears more than once the last association wins.
func NewSensedEntityHandler(assocs []entity.SensorAssociation) *SensedEntityHandler {
	h := &SensedEntityHandler{
		sensors: make(map[string]entity.SensorAssociation, len(assocs)),
		logger:  noopLogger{},
	}
	for _, a := range assocs {
		h.sensors[a.Sensor.ID] = a
	}
	return h
}

// NewSensedEntityHandlerFromRegistry builds a handler from the registry's
// current sensor associations.
func NewSensedEntityHandlerFromRegistry(reg *entity.Registry) *SensedEntityHandler {
	return NewSensedEntityHandler(reg.SensorSensedEntityAssociations())
}

// SetLogger sets the logger for unresolved sensors and listener failures.
func (h *SensedEntityHandler) SetLogger(logger Logger) {
	h.logger = loggerOrNoop(logger)
}

// AddListener appends a listener.
func (h *SensedEntityHandler) AddListener(l Listener) {
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// Resolve returns the association for a sensor id.
func (h *SensedEntityHandler) Resolve(sensorID string) (entity.SensorAssociation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.sensors[sensorID]
	return a, ok
}

// HandleEvent resolves ev and delivers it to every listener.
//
// An event from an unassociated sensor is logged and dropped; no listener
// sees it and nil is returned. Listener failures are joined and returned
// wrapped in ErrProcessing after every listener has run.
func (h *SensedEntityHandler) HandleEvent(ctx context.Context, ev Event) error {
	h.mu.RLock()
	assoc, ok := h.sensors[ev.SensorID]
	listeners := h.listeners
	h.mu.RUnlock()

	if !ok {
		unresolvedSensors.Inc()
		h.logger.Warn("dropping event from unassociated sensor",
			"sensor", ev.SensorID,
			"source", ev.Source,
			"error", fmt.Errorf("%w: %s", ErrUnresolvedSensor, ev.SensorID),
		)
		return nil
	}

	resolved := ResolvedEvent{
		Timestamp:    ev.Timestamp,
		Sensor:       assoc.Sensor,
		SensedEntity: assoc.SensedEntity,
		Payload:      ev.Payload,
	}

	var errs []error
	for i, l := range listeners {
		if err := deliverToListener(ctx, l, resolved); err != nil {
			h.logger.Error("listener failed",
				"listener", i,
				"sensor", assoc.Sensor.ID,
				"entity", assoc.SensedEntity.ID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrProcessing, errors.Join(errs...))
	}
	return nil
}

func deliverToListener(ctx context.Context, l Listener, ev ResolvedEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()

	return l.HandleSensorData(ctx, ev)
}
