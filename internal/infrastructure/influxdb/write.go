package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementSensedValues is the measurement every sensed value is written to.
const MeasurementSensedValues = "sensed_values"

// SensedValuePoint builds the point for one sensed attribute reading.
//
// Tags: entity_id, sensor_id, attribute, type. Field: value.
func SensedValuePoint(entityID, sensorID, attribute, valueType string, value float64, timestamp time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSensedValues,
		map[string]string{
			"entity_id": entityID,
			"sensor_id": sensorID,
			"attribute": attribute,
			"type":      valueType,
		},
		map[string]interface{}{
			"value": value,
		},
		timestamp,
	)
}

// WriteSensedValue queues one sensed attribute reading at the event's own
// timestamp. The write is non-blocking.
//
// Example:
//
//	client.WriteSensedValue("/home/kitchen", "/sensornode/nodemcu9054793",
//	    "temperature", "temperature", 21.5, time.UnixMilli(ts))
func (c *Client) WriteSensedValue(entityID, sensorID, attribute, valueType string, value float64, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(SensedValuePoint(entityID, sensorID, attribute, valueType, value, timestamp))
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
