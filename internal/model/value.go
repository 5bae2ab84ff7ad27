package model

import (
	"fmt"
	"time"
)

// SensedValue is one numeric attribute reading attributed to the sensor
// that produced it.
type SensedValue struct {
	// SensorID is the sensor that produced the reading.
	SensorID string `json:"sensor_id"`

	// Name is the attribute name within the sensor payload (e.g. "temperature").
	Name string `json:"name"`

	// Type is the payload value type tag (e.g. "temperature", "double").
	Type string `json:"type"`

	Value float64 `json:"value"`

	// Timestamp is the reading time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// Time returns Timestamp as a time.Time.
func (v SensedValue) Time() time.Time {
	return time.UnixMilli(v.Timestamp)
}

func (v SensedValue) String() string {
	return fmt.Sprintf("%s=%g (%s) from %s at %d", v.Name, v.Value, v.Type, v.SensorID, v.Timestamp)
}
