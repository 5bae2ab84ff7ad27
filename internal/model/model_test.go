package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-sensing/internal/entity"
)

func testDescs() []entity.SensedEntityDescription {
	return []entity.SensedEntityDescription{
		{ID: "e1", Name: "Entity 1", Kind: entity.KindPhysicalSpace},
		{ID: "e2", Name: "Entity 2", Kind: entity.KindPerson},
	}
}

func TestNewCollection(t *testing.T) {
	descs := append(testDescs(), entity.SensedEntityDescription{ID: "e1", Name: "Duplicate"})
	c := NewCollection(descs)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	m, ok := c.Model("e1")
	if !ok {
		t.Fatal("Model(e1) missing")
	}
	if m.Description().Name != "Entity 1" {
		t.Errorf("duplicate id replaced first description: %+v", m.Description())
	}
	if _, ok := c.Model("unknown"); ok {
		t.Error("Model(unknown) found")
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != "e1" || ids[1] != "e2" {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestNewCollectionFromRegistry(t *testing.T) {
	reg := entity.NewRegistry()
	for _, d := range testDescs() {
		if err := reg.RegisterSensedEntity(d); err != nil {
			t.Fatalf("RegisterSensedEntity() error = %v", err)
		}
	}

	c := NewCollectionFromRegistry(reg)
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestSensedEntityModel_UpdateOverwritesRegardlessOfTimestamp(t *testing.T) {
	m := NewSensedEntityModel(testDescs()[0])

	m.Update(SensedValue{SensorID: "s1", Name: "temperature", Type: "temperature", Value: 21.5, Timestamp: 1000})
	m.Update(SensedValue{SensorID: "s1", Name: "temperature", Type: "temperature", Value: 22.0, Timestamp: 900})

	got, ok := m.Value("temperature")
	if !ok {
		t.Fatal("Value(temperature) missing")
	}
	if got.Value != 22.0 || got.Timestamp != 900 {
		t.Errorf("Value() = %+v, want 22.0 at 900", got)
	}
	if m.UpdateCount() != 2 {
		t.Errorf("UpdateCount() = %d, want 2", m.UpdateCount())
	}
}

func TestSensedEntityModel_AttributesIndependent(t *testing.T) {
	m := NewSensedEntityModel(testDescs()[0])

	m.Update(SensedValue{Name: "temperature", Value: 20})
	m.Update(SensedValue{Name: "humidity", Value: 45})

	snap := m.Snapshot()
	if len(snap) != 2 || snap["temperature"].Value != 20 || snap["humidity"].Value != 45 {
		t.Errorf("Snapshot() = %+v", snap)
	}

	// Snapshot is a copy
	snap["temperature"] = SensedValue{Name: "temperature", Value: -1}
	if v, _ := m.Value("temperature"); v.Value != 20 {
		t.Error("mutating snapshot changed the model")
	}

	if _, ok := m.Value("pressure"); ok {
		t.Error("Value(pressure) found before any update")
	}
}

func TestCollection_Snapshot(t *testing.T) {
	c := NewCollection(testDescs())
	m, _ := c.Model("e1")
	m.Update(SensedValue{Name: "temperature", Value: 19})

	snap := c.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entities, want 2", len(snap))
	}
	if snap["e1"]["temperature"].Value != 19 {
		t.Errorf("e1 temperature = %+v", snap["e1"]["temperature"])
	}
	if len(snap["e2"]) != 0 {
		t.Errorf("e2 should be empty, got %+v", snap["e2"])
	}
}

func TestSensedEntityModel_ConcurrentWriters(t *testing.T) {
	m := NewSensedEntityModel(testDescs()[0])

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				m.Update(SensedValue{
					SensorID:  fmt.Sprintf("s%d", w),
					Name:      fmt.Sprintf("attr%d", i%4),
					Value:     float64(i),
					Timestamp: int64(i),
				})
				_ = m.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	if got := m.UpdateCount(); got != writers*perWriter {
		t.Errorf("UpdateCount() = %d, want %d", got, writers*perWriter)
	}
	if n := len(m.Snapshot()); n != 4 {
		t.Errorf("attributes = %d, want 4", n)
	}
}

func TestSensedValue_Time(t *testing.T) {
	v := SensedValue{Timestamp: 1500}
	if v.Time().UnixMilli() != 1500 {
		t.Errorf("Time() = %v", v.Time())
	}
}
