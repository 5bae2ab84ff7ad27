package model

import (
	"sync"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

// SensedEntityModel holds the latest value of each attribute of one sensed
// entity. Reads and writes may come from different goroutines; each model
// carries its own lock so unrelated entities never contend.
type SensedEntityModel struct {
	desc entity.SensedEntityDescription

	mu      sync.RWMutex
	values  map[string]SensedValue
	updates uint64
}

// NewSensedEntityModel creates an empty model for desc.
func NewSensedEntityModel(desc entity.SensedEntityDescription) *SensedEntityModel {
	return &SensedEntityModel{
		desc:   desc,
		values: make(map[string]SensedValue),
	}
}

// Description returns the entity this model tracks.
func (m *SensedEntityModel) Description() entity.SensedEntityDescription {
	return m.desc
}

// Update stores v as the latest value for v.Name.
//
// The write is unconditional: a reading with an earlier timestamp than the
// stored one still replaces it.
func (m *SensedEntityModel) Update(v SensedValue) {
	m.mu.Lock()
	m.values[v.Name] = v
	m.updates++
	m.mu.Unlock()
}

// Value returns the latest value for an attribute.
func (m *SensedEntityModel) Value(name string) (SensedValue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok
}

// Snapshot returns a copy of every attribute's latest value.
func (m *SensedEntityModel) Snapshot() map[string]SensedValue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]SensedValue, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// UpdateCount returns the number of updates applied since creation.
func (m *SensedEntityModel) UpdateCount() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updates
}
