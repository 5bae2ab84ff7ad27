package sensing

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-sensing/internal/model"
)

// ModelUpdater is the listener that writes resolved readings into entity models.
type ModelUpdater struct {
	models *model.Collection
	logger Logger
}

// NewModelUpdater creates a listener that updates models in c.
func NewModelUpdater(c *model.Collection) *ModelUpdater {
	return &ModelUpdater{models: c, logger: noopLogger{}}
}

// SetLogger sets the logger for missing models and skipped fields.
func (u *ModelUpdater) SetLogger(logger Logger) {
	u.logger = loggerOrNoop(logger)
}

// HandleSensorData applies every numeric field of ev to the entity's model.
//
// A missing model is logged and the event is ignored by this listener only.
// Fields with a non-numeric type tag, or a value that does not parse as a
// number, are skipped.
func (u *ModelUpdater) HandleSensorData(_ context.Context, ev ResolvedEvent) error {
	m, ok := u.models.Model(ev.SensedEntity.ID)
	if !ok {
		unresolvedEntities.Inc()
		u.logger.Warn("no model for sensed entity",
			"entity", ev.SensedEntity.ID,
			"sensor", ev.Sensor.ID,
			"error", fmt.Errorf("%w: %s", ErrUnresolvedEntity, ev.SensedEntity.ID),
		)
		return nil
	}

	for _, name := range ev.Payload.Names() {
		f := ev.Payload[name]
		if !IsNumericType(f.Type) {
			valuesSkipped.Inc()
			u.logger.Debug("skipping field", "entity", ev.SensedEntity.ID, "field", name, "type", f.Type)
			continue
		}

		v, err := f.Float()
		if err != nil {
			valuesSkipped.Inc()
			u.logger.Debug("skipping field", "entity", ev.SensedEntity.ID, "field", name, "error", err)
			continue
		}

		m.Update(model.SensedValue{
			SensorID:  ev.Sensor.ID,
			Name:      name,
			Type:      f.Type,
			Value:     v,
			Timestamp: ev.Timestamp,
		})
		valuesApplied.Inc()
	}

	return nil
}
