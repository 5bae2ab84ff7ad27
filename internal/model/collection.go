package model

import (
	"sort"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

// Collection maps sensed entity ids to their models.
//
// The key set is fixed at construction, so lookups need no lock. Each
// model guards its own values.
type Collection struct {
	models map[string]*SensedEntityModel
}

// NewCollection creates one empty model per description.
// A repeated id keeps the first description.
func NewCollection(descs []entity.SensedEntityDescription) *Collection {
	c := &Collection{models: make(map[string]*SensedEntityModel, len(descs))}
	for _, d := range descs {
		if _, exists := c.models[d.ID]; exists {
			continue
		}
		c.models[d.ID] = NewSensedEntityModel(d)
	}
	return c
}

// NewCollectionFromRegistry creates a model for every sensed entity in reg.
func NewCollectionFromRegistry(reg *entity.Registry) *Collection {
	return NewCollection(reg.SensedEntities())
}

// Model returns the model for an entity id. A miss is not an error.
func (c *Collection) Model(id string) (*SensedEntityModel, bool) {
	m, ok := c.models[id]
	return m, ok
}

// Len returns the number of models.
func (c *Collection) Len() int {
	return len(c.models)
}

// IDs returns every entity id, sorted.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot copies every model's values, keyed by entity id then attribute.
// Entities with no values yet are included with an empty map.
func (c *Collection) Snapshot() map[string]map[string]SensedValue {
	out := make(map[string]map[string]SensedValue, len(c.models))
	for id, m := range c.models {
		out[id] = m.Snapshot()
	}
	return out
}
