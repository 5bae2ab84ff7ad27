package docstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

// Collections used to persist a registry.
const (
	CollectionSensors            = "sensors"
	CollectionSensedEntities     = "sensed_entities"
	CollectionMarkers            = "markers"
	CollectionSensorAssociations = "sensor_associations"
	CollectionMarkerAssociations = "marker_associations"
)

// association is the stored form of a registry edge.
type association struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Sequence int    `json:"sequence"`
}

// SaveRegistry writes every description and association in reg.
//
// Descriptions are keyed by id and overwrite earlier versions. Associations
// are keyed by their source id, which a registry never associates twice.
func SaveRegistry(ctx context.Context, s *Store, reg *entity.Registry) error {
	for _, d := range reg.Sensors() {
		if err := s.Put(ctx, CollectionSensors, d.ID, d); err != nil {
			return fmt.Errorf("saving registry: %w", err)
		}
	}
	for _, d := range reg.SensedEntities() {
		if err := s.Put(ctx, CollectionSensedEntities, d.ID, d); err != nil {
			return fmt.Errorf("saving registry: %w", err)
		}
	}
	for _, d := range reg.Markers() {
		if err := s.Put(ctx, CollectionMarkers, d.ID, d); err != nil {
			return fmt.Errorf("saving registry: %w", err)
		}
	}
	for i, a := range reg.SensorSensedEntityAssociations() {
		doc := association{From: a.Sensor.ID, To: a.SensedEntity.ID, Sequence: i}
		if err := s.Put(ctx, CollectionSensorAssociations, doc.From, doc); err != nil {
			return fmt.Errorf("saving registry: %w", err)
		}
	}
	for i, a := range reg.MarkerAssociations() {
		doc := association{From: a.Marker.ID, To: a.SensedEntity.ID, Sequence: i}
		if err := s.Put(ctx, CollectionMarkerAssociations, doc.From, doc); err != nil {
			return fmt.Errorf("saving registry: %w", err)
		}
	}
	return nil
}

// LoadRegistry reads a stored registry into reg, descriptions first.
// Associations are replayed in their saved order.
func LoadRegistry(ctx context.Context, s *Store, reg *entity.Registry) error {
	var seed entity.Seed

	if err := loadCollection(ctx, s, CollectionSensors, func(doc Document) error {
		var d entity.SensorDescription
		if err := doc.Decode(&d); err != nil {
			return err
		}
		seed.Sensors = append(seed.Sensors, d)
		return nil
	}); err != nil {
		return err
	}

	if err := loadCollection(ctx, s, CollectionSensedEntities, func(doc Document) error {
		var d entity.SensedEntityDescription
		if err := doc.Decode(&d); err != nil {
			return err
		}
		seed.SensedEntities = append(seed.SensedEntities, d)
		return nil
	}); err != nil {
		return err
	}

	if err := loadCollection(ctx, s, CollectionMarkers, func(doc Document) error {
		var d entity.MarkerDescription
		if err := doc.Decode(&d); err != nil {
			return err
		}
		seed.Markers = append(seed.Markers, d)
		return nil
	}); err != nil {
		return err
	}

	sensorEdges, err := loadAssociations(ctx, s, CollectionSensorAssociations)
	if err != nil {
		return err
	}
	markerEdges, err := loadAssociations(ctx, s, CollectionMarkerAssociations)
	if err != nil {
		return err
	}
	seed.SensorAssociations = sensorEdges
	seed.MarkerAssociations = markerEdges

	if err := seed.Apply(reg); err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	return nil
}

func loadCollection(ctx context.Context, s *Store, collection string, fn func(Document) error) error {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	for _, doc := range docs {
		if err := fn(doc); err != nil {
			return fmt.Errorf("loading registry: %w", err)
		}
	}
	return nil
}

func loadAssociations(ctx context.Context, s *Store, collection string) ([]entity.SeedAssociation, error) {
	var edges []association
	if err := loadCollection(ctx, s, collection, func(doc Document) error {
		var a association
		if err := doc.Decode(&a); err != nil {
			return err
		}
		edges = append(edges, a)
		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Sequence < edges[j].Sequence })

	out := make([]entity.SeedAssociation, len(edges))
	for i, e := range edges {
		out[i] = entity.SeedAssociation{From: e.From, To: e.To}
	}
	return out, nil
}
