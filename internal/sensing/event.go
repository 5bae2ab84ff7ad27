package sensing

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

// Value type tags carried by numeric payload fields.
const (
	TypeDouble      = "double"
	TypeTemperature = "temperature"
	TypeHumidity    = "humidity"
	TypePressure    = "pressure"
	TypeIlluminance = "illuminance"
	TypeDistance    = "distance"
	TypeRSSI        = "rssi"
	TypeBattery     = "battery"
)

var numericTypes = map[string]struct{}{
	TypeDouble:      {},
	TypeTemperature: {},
	TypeHumidity:    {},
	TypePressure:    {},
	TypeIlluminance: {},
	TypeDistance:    {},
	TypeRSSI:        {},
	TypeBattery:     {},
}

// IsNumericType reports whether values tagged t are double-valued.
func IsNumericType(t string) bool {
	_, ok := numericTypes[t]
	return ok
}

// Field is one named sub-value of a payload: a declared type tag and the raw
// value, left undecoded until a consumer asks for it.
type Field struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Float decodes the value as a finite number. JSON strings holding a number
// are accepted since some sensor firmware quotes its readings. A null or
// missing value is an error, never zero.
func (f Field) Float() (float64, error) {
	raw := bytes.TrimSpace(f.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: value is null", ErrUnrecognizedValueType)
	}

	n, ok := decodeNumber(raw)
	if !ok {
		return 0, fmt.Errorf("%w: value %s is not numeric", ErrUnrecognizedValueType, string(raw))
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: value %s is not finite", ErrUnrecognizedValueType, string(raw))
	}
	return n, nil
}

func decodeNumber(raw []byte) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// Payload maps attribute names to their fields.
type Payload map[string]Field

// Names returns the attribute names in sorted order.
func (p Payload) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Float returns the numeric value of a named field.
func (p Payload) Float(name string) (float64, error) {
	f, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: no field %q", ErrUnrecognizedValueType, name)
	}
	return f.Float()
}

// AsMap decodes every field value for logging.
func (p Payload) AsMap() map[string]any {
	out := make(map[string]any, len(p))
	for name, f := range p {
		var v any
		if err := json.Unmarshal(f.Value, &v); err != nil {
			v = string(f.Value)
		}
		out[name] = v
	}
	return out
}

// Event is one raw reading as produced by an input source.
type Event struct {
	// SensorID identifies the sensor that produced the reading.
	SensorID string

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64

	Payload Payload

	// Source names the input that produced the event. Not persisted.
	Source string
}

// ResolvedEvent is an event after its sensor has been mapped to an entity.
type ResolvedEvent struct {
	Timestamp    int64
	Sensor       entity.SensorDescription
	SensedEntity entity.SensedEntityDescription
	Payload      Payload
}
