package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the startup topology of a site: descriptions plus association
// edges. It is usually loaded from configs/seed.yaml.
type Seed struct {
	Sensors            []SensorDescription       `yaml:"sensors"`
	SensedEntities     []SensedEntityDescription `yaml:"sensed_entities"`
	Markers            []MarkerDescription       `yaml:"markers"`
	SensorAssociations []SeedAssociation         `yaml:"sensor_associations"`
	MarkerAssociations []SeedAssociation         `yaml:"marker_associations"`
}

// SeedAssociation is an association edge by id.
// For sensor associations From is a sensor id; for marker associations a marker id.
type SeedAssociation struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadSeed reads a seed document from a YAML file.
//
// Parameters:
//   - path: Path to the seed file
//
// Returns:
//   - *Seed: Parsed seed, not yet applied to a registry
//   - error: If the file cannot be read or parsed
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	return ParseSeed(data)
}

// ParseSeed parses a seed document from YAML bytes.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%w: parsing seed: %w", ErrInvalidSeed, err)
	}
	return &seed, nil
}

// Apply registers every description and association in the seed.
//
// Descriptions are registered before associations, so the order of sections
// in the file does not matter. The first failure stops population and is
// returned with the offending record named.
func (s *Seed) Apply(reg *Registry) error {
	for _, d := range s.Sensors {
		if err := reg.RegisterSensor(d); err != nil {
			return fmt.Errorf("seeding sensors: %w", err)
		}
	}
	for _, d := range s.SensedEntities {
		if err := reg.RegisterSensedEntity(d); err != nil {
			return fmt.Errorf("seeding sensed entities: %w", err)
		}
	}
	for _, d := range s.Markers {
		if err := reg.RegisterMarker(d); err != nil {
			return fmt.Errorf("seeding markers: %w", err)
		}
	}
	for _, a := range s.SensorAssociations {
		if err := reg.AssociateSensorWithSensedEntity(a.From, a.To); err != nil {
			return fmt.Errorf("seeding sensor associations: %w", err)
		}
	}
	for _, a := range s.MarkerAssociations {
		if err := reg.AssociateMarkerWithMarkedEntity(a.From, a.To); err != nil {
			return fmt.Errorf("seeding marker associations: %w", err)
		}
	}
	return nil
}

// SeedFromRegistry captures a registry's contents as a Seed, the inverse of Apply.
func SeedFromRegistry(reg *Registry) *Seed {
	seed := &Seed{
		Sensors:        reg.Sensors(),
		SensedEntities: reg.SensedEntities(),
		Markers:        reg.Markers(),
	}
	for _, a := range reg.SensorSensedEntityAssociations() {
		seed.SensorAssociations = append(seed.SensorAssociations, SeedAssociation{From: a.Sensor.ID, To: a.SensedEntity.ID})
	}
	for _, a := range reg.MarkerAssociations() {
		seed.MarkerAssociations = append(seed.MarkerAssociations, SeedAssociation{From: a.Marker.ID, To: a.SensedEntity.ID})
	}
	return seed
}
