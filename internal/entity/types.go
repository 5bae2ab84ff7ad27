package entity

import "fmt"

// Kind classifies a sensed entity.
type Kind string

// Sensed entity kinds.
const (
	KindPerson        Kind = "person"
	KindPhysicalSpace Kind = "physical_space"
	KindMarker        Kind = "marker"
)

// AllKinds returns every recognised sensed entity kind.
func AllKinds() []Kind {
	return []Kind{KindPerson, KindPhysicalSpace, KindMarker}
}

// Valid reports whether k is a recognised kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPerson, KindPhysicalSpace, KindMarker:
		return true
	}
	return false
}

// SensorDescription describes a physical or virtual source of readings.
// Descriptions are values; once registered they are never modified.
type SensorDescription struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

func (d SensorDescription) String() string {
	return fmt.Sprintf("sensor %s (%s)", d.ID, d.Name)
}

// SensedEntityDescription describes a logical thing whose state is inferred
// from one or more sensors.
type SensedEntityDescription struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Kind        Kind   `json:"kind" yaml:"kind"`
}

func (d SensedEntityDescription) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Kind, d.ID, d.Name)
}

// MarkerDescription describes an identifying token, such as a BLE beacon,
// that indirectly identifies a sensed entity.
type MarkerDescription struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// MarkerID is the token the marker broadcasts (e.g. "ble:fc0d12fe7e5c").
	MarkerID string `json:"marker_id" yaml:"marker_id"`
}

func (d MarkerDescription) String() string {
	return fmt.Sprintf("marker %s (%s)", d.ID, d.MarkerID)
}

// SensorAssociation is a directed edge from a sensor to the sensed entity it observes.
type SensorAssociation struct {
	Sensor       SensorDescription
	SensedEntity SensedEntityDescription
}

// MarkerAssociation is a directed edge from a marker to the entity it identifies.
type MarkerAssociation struct {
	Marker       MarkerDescription
	SensedEntity SensedEntityDescription
}
