package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds sensor, sensed entity and marker descriptions and the
// associations between them.
//
// A Registry is populated once during startup and read-only afterwards.
// Sensor ids, sensed entity ids and marker ids are separate namespaces.
// Every association references descriptions already present, and a failed
// registration or association leaves the registry unchanged.
//
// All public methods are thread-safe.
type Registry struct {
	mu sync.RWMutex

	sensors        map[string]SensorDescription
	sensedEntities map[string]SensedEntityDescription
	markers        map[string]MarkerDescription

	// Edges in registration order, plus indexes for the one-edge-per-source rule.
	sensorAssociations []SensorAssociation
	markerAssociations []MarkerAssociation
	sensorToEntity     map[string]string
	markerToEntity     map[string]string
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		sensors:        make(map[string]SensorDescription),
		sensedEntities: make(map[string]SensedEntityDescription),
		markers:        make(map[string]MarkerDescription),
		sensorToEntity: make(map[string]string),
		markerToEntity: make(map[string]string),
	}
}

// RegisterSensor adds a sensor description.
// Returns ErrDuplicateID if the sensor id is already registered.
func (r *Registry) RegisterSensor(desc SensorDescription) error {
	if desc.ID == "" {
		return fmt.Errorf("%w: sensor id is required", ErrInvalidDescription)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sensors[desc.ID]; exists {
		return fmt.Errorf("%w: sensor %s", ErrDuplicateID, desc.ID)
	}
	r.sensors[desc.ID] = desc
	return nil
}

// RegisterSensedEntity adds a sensed entity description.
// Returns ErrDuplicateID if the entity id is already registered.
func (r *Registry) RegisterSensedEntity(desc SensedEntityDescription) error {
	if desc.ID == "" {
		return fmt.Errorf("%w: sensed entity id is required", ErrInvalidDescription)
	}
	if !desc.Kind.Valid() {
		return fmt.Errorf("%w: sensed entity %s has kind %q", ErrInvalidDescription, desc.ID, desc.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sensedEntities[desc.ID]; exists {
		return fmt.Errorf("%w: sensed entity %s", ErrDuplicateID, desc.ID)
	}
	r.sensedEntities[desc.ID] = desc
	return nil
}

// RegisterMarker adds a marker description.
// Returns ErrDuplicateID if the marker id is already registered.
func (r *Registry) RegisterMarker(desc MarkerDescription) error {
	if desc.ID == "" {
		return fmt.Errorf("%w: marker id is required", ErrInvalidDescription)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markers[desc.ID]; exists {
		return fmt.Errorf("%w: marker %s", ErrDuplicateID, desc.ID)
	}
	r.markers[desc.ID] = desc
	return nil
}

// AssociateSensorWithSensedEntity records that a sensor observes an entity.
//
// Returns ErrUnknownID if either id is unregistered and ErrAlreadyAssociated
// if the sensor already observes an entity. Many sensors may share one entity.
func (r *Registry) AssociateSensorWithSensedEntity(sensorID, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sensor, ok := r.sensors[sensorID]
	if !ok {
		return fmt.Errorf("%w: sensor %s", ErrUnknownID, sensorID)
	}
	sensed, ok := r.sensedEntities[entityID]
	if !ok {
		return fmt.Errorf("%w: sensed entity %s", ErrUnknownID, entityID)
	}
	if current, exists := r.sensorToEntity[sensorID]; exists {
		return fmt.Errorf("%w: sensor %s already observes %s", ErrAlreadyAssociated, sensorID, current)
	}

	r.sensorToEntity[sensorID] = entityID
	r.sensorAssociations = append(r.sensorAssociations, SensorAssociation{
		Sensor:       sensor,
		SensedEntity: sensed,
	})
	return nil
}

// AssociateMarkerWithMarkedEntity records that a marker identifies an entity.
//
// Returns ErrUnknownID if either id is unregistered and ErrAlreadyAssociated
// if the marker already identifies an entity.
func (r *Registry) AssociateMarkerWithMarkedEntity(markerID, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marker, ok := r.markers[markerID]
	if !ok {
		return fmt.Errorf("%w: marker %s", ErrUnknownID, markerID)
	}
	sensed, ok := r.sensedEntities[entityID]
	if !ok {
		return fmt.Errorf("%w: sensed entity %s", ErrUnknownID, entityID)
	}
	if current, exists := r.markerToEntity[markerID]; exists {
		return fmt.Errorf("%w: marker %s already identifies %s", ErrAlreadyAssociated, markerID, current)
	}

	r.markerToEntity[markerID] = entityID
	r.markerAssociations = append(r.markerAssociations, MarkerAssociation{
		Marker:       marker,
		SensedEntity: sensed,
	})
	return nil
}

// Sensor looks up a sensor description.
func (r *Registry) Sensor(id string) (SensorDescription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.sensors[id]
	return d, ok
}

// SensedEntity looks up a sensed entity description.
func (r *Registry) SensedEntity(id string) (SensedEntityDescription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.sensedEntities[id]
	return d, ok
}

// Marker looks up a marker description.
func (r *Registry) Marker(id string) (MarkerDescription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.markers[id]
	return d, ok
}

// MarkedEntity resolves a marker id to the entity it identifies.
func (r *Registry) MarkedEntity(markerID string) (SensedEntityDescription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entityID, ok := r.markerToEntity[markerID]
	if !ok {
		return SensedEntityDescription{}, false
	}
	d, ok := r.sensedEntities[entityID]
	return d, ok
}

// Sensors returns all sensor descriptions sorted by id.
func (r *Registry) Sensors() []SensorDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SensorDescription, 0, len(r.sensors))
	for _, d := range r.sensors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SensedEntities returns all sensed entity descriptions sorted by id.
func (r *Registry) SensedEntities() []SensedEntityDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SensedEntityDescription, 0, len(r.sensedEntities))
	for _, d := range r.sensedEntities {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Markers returns all marker descriptions sorted by id.
func (r *Registry) Markers() []MarkerDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MarkerDescription, 0, len(r.markers))
	for _, d := range r.markers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SensorSensedEntityAssociations returns every sensor→entity edge in
// registration order. The slice is a copy.
func (r *Registry) SensorSensedEntityAssociations() []SensorAssociation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SensorAssociation, len(r.sensorAssociations))
	copy(out, r.sensorAssociations)
	return out
}

// MarkerAssociations returns every marker→entity edge in registration order.
func (r *Registry) MarkerAssociations() []MarkerAssociation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MarkerAssociation, len(r.markerAssociations))
	copy(out, r.markerAssociations)
	return out
}

// Counts returns the number of sensors, sensed entities and markers.
func (r *Registry) Counts() (sensors, sensedEntities, markers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sensors), len(r.sensedEntities), len(r.markers)
}
