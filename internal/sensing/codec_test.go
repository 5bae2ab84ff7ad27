package sensing

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantID    string
		wantTS    int64
		wantField string
		wantValue float64
	}{
		{
			name:      "full document",
			input:     `{"sensor":"/sensornode/n1","timestamp":1000,"data":{"temperature":{"type":"temperature","value":21.5}}}`,
			wantID:    "/sensornode/n1",
			wantTS:    1000,
			wantField: "temperature",
			wantValue: 21.5,
		},
		{
			name:      "sensor and timestamp omitted",
			input:     `{"data":{"humidity":{"type":"humidity","value":"55"}}}`,
			wantField: "humidity",
			wantValue: 55,
		},
		{name: "not json", input: `temperature=21.5`, wantErr: true},
		{name: "missing data", input: `{"sensor":"s1","timestamp":1}`, wantErr: true},
		{name: "data not an object", input: `{"sensor":"s1","data":[1,2]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrDecode) {
					t.Errorf("DecodeEvent() error = %v, want ErrDecode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if ev.SensorID != tt.wantID || ev.Timestamp != tt.wantTS {
				t.Errorf("event = %+v, want sensor %q at %d", ev, tt.wantID, tt.wantTS)
			}
			v, err := ev.Payload.Float(tt.wantField)
			if err != nil || v != tt.wantValue {
				t.Errorf("Float(%s) = %v, %v; want %v", tt.wantField, v, err, tt.wantValue)
			}
		})
	}
}

func TestEncodeEvent_SingleLine(t *testing.T) {
	ev := Event{
		SensorID:  "s1",
		Timestamp: 42,
		Payload: Payload{
			"temperature": {Type: TypeTemperature, Value: []byte("{\n  \"c\": 21.5\n}")},
		},
		Source: "mqtt",
	}

	b, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	if bytes.IndexByte(b, '\n') >= 0 {
		t.Errorf("encoded event spans lines: %s", b)
	}

	back, err := DecodeEvent(b)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if back.SensorID != "s1" || back.Timestamp != 42 || back.Source != "" {
		t.Errorf("decoded = %+v", back)
	}
}

func TestField_Float(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "3", want: 3},
		{raw: "-0.5", want: -0.5},
		{raw: `"7.25"`, want: 7.25},
		{raw: `"warm"`, wantErr: true},
		{raw: "true", wantErr: true},
		{raw: "null", wantErr: true},
		{raw: " null ", wantErr: true},
		{raw: "", wantErr: true},
		{raw: `"NaN"`, wantErr: true},
		{raw: `"Inf"`, wantErr: true},
		{raw: `"-Inf"`, wantErr: true},
		{raw: `" 12.5 "`, want: 12.5},
	}

	for _, tt := range tests {
		got, err := Field{Type: TypeDouble, Value: []byte(tt.raw)}.Float()
		if tt.wantErr {
			if !errors.Is(err, ErrUnrecognizedValueType) {
				t.Errorf("Float(%s) error = %v, want ErrUnrecognizedValueType", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Float(%s) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestIsNumericType(t *testing.T) {
	for _, typ := range []string{TypeDouble, TypeTemperature, TypeHumidity, TypeRSSI} {
		if !IsNumericType(typ) {
			t.Errorf("IsNumericType(%q) = false", typ)
		}
	}
	for _, typ := range []string{"", "boolean", "string", "Temperature"} {
		if IsNumericType(typ) {
			t.Errorf("IsNumericType(%q) = true", typ)
		}
	}
}
