package sensing

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// wireEvent is the document carried on the broker and in recordings:
//
//	{"sensor": "/sensornode/n1", "timestamp": 1000,
//	 "data": {"temperature": {"type": "temperature", "value": 21.5}}}
type wireEvent struct {
	Sensor    string  `json:"sensor,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Data      Payload `json:"data"`
}

// DecodeEvent parses an event document.
//
// The sensor id and timestamp may be absent; live inputs fill them from the
// topic and receipt time. A missing or non-object data member is an error.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if w.Data == nil {
		return Event{}, fmt.Errorf("%w: missing data object", ErrDecode)
	}
	return Event{
		SensorID:  w.Sensor,
		Timestamp: w.Timestamp,
		Payload:   w.Data,
	}, nil
}

// EncodeEvent renders an event as a single-line document.
func EncodeEvent(e Event) ([]byte, error) {
	data := e.Payload
	if data == nil {
		data = Payload{}
	}
	b, err := json.Marshal(wireEvent{
		Sensor:    e.SensorID,
		Timestamp: e.Timestamp,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding event from %s: %w", e.SensorID, err)
	}
	if bytes.IndexByte(b, '\n') >= 0 {
		// Raw values are compacted so the document stays on one line.
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return nil, fmt.Errorf("encoding event from %s: %w", e.SensorID, err)
		}
		b = buf.Bytes()
	}
	return b, nil
}
