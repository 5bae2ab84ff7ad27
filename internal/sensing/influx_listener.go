package sensing

import (
	"context"
	"time"
)

// SensedValueWriter accepts one numeric reading for time-series storage.
// *influxdb.Client satisfies it.
type SensedValueWriter interface {
	WriteSensedValue(entityID, sensorID, attribute, valueType string, value float64, ts time.Time)
}

// InfluxListener mirrors every numeric field of a resolved event into
// a time-series writer.
type InfluxListener struct {
	writer SensedValueWriter
}

// NewInfluxListener creates a listener writing to w.
func NewInfluxListener(w SensedValueWriter) *InfluxListener {
	return &InfluxListener{writer: w}
}

// HandleSensorData writes the numeric fields of ev. Writes are asynchronous
// and failures surface through the writer's own error callback.
func (l *InfluxListener) HandleSensorData(_ context.Context, ev ResolvedEvent) error {
	ts := time.UnixMilli(ev.Timestamp)
	for _, name := range ev.Payload.Names() {
		f := ev.Payload[name]
		if !IsNumericType(f.Type) {
			continue
		}
		v, err := f.Float()
		if err != nil {
			continue
		}
		l.writer.WriteSensedValue(ev.SensedEntity.ID, ev.Sensor.ID, name, f.Type, v, ts)
	}
	return nil
}
