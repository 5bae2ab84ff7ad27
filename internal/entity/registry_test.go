package entity

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func livingRoom() SensedEntityDescription {
	return SensedEntityDescription{
		ID:          "/home/livingroom",
		Name:        "Living Room",
		Description: "The living room on the first floor",
		Kind:        KindPhysicalSpace,
	}
}

func nodeSensor(id string) SensorDescription {
	return SensorDescription{
		ID:          id,
		Name:        "Sensor " + id,
		Description: "ESP8266-based temperature/humidity sensor",
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	sensor := nodeSensor("/sensornode/nodemcu9107700")
	sensed := livingRoom()
	marker := MarkerDescription{ID: "/marker/ble/fc0d12fe7e5c", Name: "BLE Beacon", MarkerID: "ble:fc0d12fe7e5c"}

	if err := reg.RegisterSensor(sensor); err != nil {
		t.Fatalf("RegisterSensor() error = %v", err)
	}
	if err := reg.RegisterSensedEntity(sensed); err != nil {
		t.Fatalf("RegisterSensedEntity() error = %v", err)
	}
	if err := reg.RegisterMarker(marker); err != nil {
		t.Fatalf("RegisterMarker() error = %v", err)
	}

	if got, ok := reg.Sensor(sensor.ID); !ok || got != sensor {
		t.Errorf("Sensor() = %+v, %v; want %+v", got, ok, sensor)
	}
	if got, ok := reg.SensedEntity(sensed.ID); !ok || got != sensed {
		t.Errorf("SensedEntity() = %+v, %v; want %+v", got, ok, sensed)
	}
	if got, ok := reg.Marker(marker.ID); !ok || got != marker {
		t.Errorf("Marker() = %+v, %v; want %+v", got, ok, marker)
	}
}

func TestRegistry_LookupMiss(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Sensor("nope"); ok {
		t.Error("Sensor() found unregistered id")
	}
	if _, ok := reg.SensedEntity("nope"); ok {
		t.Error("SensedEntity() found unregistered id")
	}
	if _, ok := reg.Marker("nope"); ok {
		t.Error("Marker() found unregistered id")
	}
	if _, ok := reg.MarkedEntity("nope"); ok {
		t.Error("MarkedEntity() resolved unregistered marker")
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	reg := NewRegistry()

	first := nodeSensor("/sensornode/a")
	if err := reg.RegisterSensor(first); err != nil {
		t.Fatalf("RegisterSensor() error = %v", err)
	}

	second := first
	second.Name = "Replacement"
	if err := reg.RegisterSensor(second); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("RegisterSensor() duplicate error = %v, want ErrDuplicateID", err)
	}

	// Original description is kept
	if got, _ := reg.Sensor(first.ID); got.Name != first.Name {
		t.Errorf("duplicate registration replaced description: %+v", got)
	}

	if err := reg.RegisterSensedEntity(livingRoom()); err != nil {
		t.Fatalf("RegisterSensedEntity() error = %v", err)
	}
	if err := reg.RegisterSensedEntity(livingRoom()); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("RegisterSensedEntity() duplicate error = %v, want ErrDuplicateID", err)
	}

	m := MarkerDescription{ID: "/marker/1"}
	if err := reg.RegisterMarker(m); err != nil {
		t.Fatalf("RegisterMarker() error = %v", err)
	}
	if err := reg.RegisterMarker(m); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("RegisterMarker() duplicate error = %v, want ErrDuplicateID", err)
	}
}

func TestRegistry_NamespacesAreDisjoint(t *testing.T) {
	reg := NewRegistry()
	const shared = "/home/livingroom"

	if err := reg.RegisterSensor(nodeSensor(shared)); err != nil {
		t.Fatalf("RegisterSensor() error = %v", err)
	}
	if err := reg.RegisterSensedEntity(livingRoom()); err != nil {
		t.Errorf("same id in entity namespace should be allowed: %v", err)
	}
	if err := reg.RegisterMarker(MarkerDescription{ID: shared}); err != nil {
		t.Errorf("same id in marker namespace should be allowed: %v", err)
	}
}

func TestRegistry_InvalidDescription(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"empty sensor id", func() error { return reg.RegisterSensor(SensorDescription{}) }},
		{"empty entity id", func() error { return reg.RegisterSensedEntity(SensedEntityDescription{Kind: KindPerson}) }},
		{"unknown kind", func() error {
			return reg.RegisterSensedEntity(SensedEntityDescription{ID: "/x", Kind: "robot"})
		}},
		{"empty marker id", func() error { return reg.RegisterMarker(MarkerDescription{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidDescription) {
				t.Errorf("error = %v, want ErrInvalidDescription", err)
			}
		})
	}
}

func TestRegistry_AssociateSensor(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterSensor(nodeSensor("/sensornode/a"))
	_ = reg.RegisterSensor(nodeSensor("/sensornode/b"))
	_ = reg.RegisterSensedEntity(livingRoom())

	if err := reg.AssociateSensorWithSensedEntity("/sensornode/a", "/home/livingroom"); err != nil {
		t.Fatalf("Associate a error = %v", err)
	}
	if err := reg.AssociateSensorWithSensedEntity("/sensornode/b", "/home/livingroom"); err != nil {
		t.Fatalf("Associate b error = %v", err)
	}

	assocs := reg.SensorSensedEntityAssociations()
	if len(assocs) != 2 {
		t.Fatalf("associations = %d, want 2", len(assocs))
	}
	if assocs[0].Sensor.ID != "/sensornode/a" || assocs[1].Sensor.ID != "/sensornode/b" {
		t.Errorf("associations out of registration order: %+v", assocs)
	}
	for _, a := range assocs {
		if a.SensedEntity != livingRoom() {
			t.Errorf("association entity = %+v", a.SensedEntity)
		}
	}

	// The returned slice is a copy
	assocs[0].Sensor.ID = "mutated"
	if reg.SensorSensedEntityAssociations()[0].Sensor.ID != "/sensornode/a" {
		t.Error("mutating returned associations changed the registry")
	}
}

func TestRegistry_AssociateUnknownLeavesRegistryUnchanged(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterSensor(nodeSensor("/sensornode/a"))
	_ = reg.RegisterSensedEntity(livingRoom())
	_ = reg.RegisterMarker(MarkerDescription{ID: "/marker/1"})

	tests := []struct {
		name string
		fn   func() error
	}{
		{"sensor to unknown entity", func() error { return reg.AssociateSensorWithSensedEntity("/sensornode/a", "/home/attic") }},
		{"unknown sensor", func() error { return reg.AssociateSensorWithSensedEntity("/sensornode/zz", "/home/livingroom") }},
		{"marker to unknown entity", func() error { return reg.AssociateMarkerWithMarkedEntity("/marker/1", "/person/nobody") }},
		{"unknown marker", func() error { return reg.AssociateMarkerWithMarkedEntity("/marker/zz", "/home/livingroom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrUnknownID) {
				t.Errorf("error = %v, want ErrUnknownID", err)
			}
		})
	}

	if n := len(reg.SensorSensedEntityAssociations()); n != 0 {
		t.Errorf("sensor associations = %d after failures, want 0", n)
	}
	if n := len(reg.MarkerAssociations()); n != 0 {
		t.Errorf("marker associations = %d after failures, want 0", n)
	}
	// A later valid association still succeeds
	if err := reg.AssociateSensorWithSensedEntity("/sensornode/a", "/home/livingroom"); err != nil {
		t.Errorf("valid association after failures error = %v", err)
	}
}

func TestRegistry_ReassociationRejected(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterSensor(nodeSensor("/sensornode/a"))
	_ = reg.RegisterSensedEntity(livingRoom())
	_ = reg.RegisterSensedEntity(SensedEntityDescription{ID: "/home/kitchen", Kind: KindPhysicalSpace})

	if err := reg.AssociateSensorWithSensedEntity("/sensornode/a", "/home/livingroom"); err != nil {
		t.Fatalf("first association error = %v", err)
	}
	err := reg.AssociateSensorWithSensedEntity("/sensornode/a", "/home/kitchen")
	if !errors.Is(err, ErrAlreadyAssociated) {
		t.Fatalf("second association error = %v, want ErrAlreadyAssociated", err)
	}

	assocs := reg.SensorSensedEntityAssociations()
	if len(assocs) != 1 || assocs[0].SensedEntity.ID != "/home/livingroom" {
		t.Errorf("associations after rejected re-association = %+v", assocs)
	}
}

func TestRegistry_MarkerResolution(t *testing.T) {
	reg := NewRegistry()
	person := SensedEntityDescription{ID: "/person/keith.hughes", Name: "Keith Hughes", Kind: KindPerson}
	_ = reg.RegisterSensedEntity(person)
	_ = reg.RegisterMarker(MarkerDescription{ID: "/marker/ble/fc0d12fe7e5c", MarkerID: "ble:fc0d12fe7e5c"})

	if err := reg.AssociateMarkerWithMarkedEntity("/marker/ble/fc0d12fe7e5c", person.ID); err != nil {
		t.Fatalf("AssociateMarkerWithMarkedEntity() error = %v", err)
	}

	got, ok := reg.MarkedEntity("/marker/ble/fc0d12fe7e5c")
	if !ok || got != person {
		t.Errorf("MarkedEntity() = %+v, %v; want %+v", got, ok, person)
	}

	if err := reg.AssociateMarkerWithMarkedEntity("/marker/ble/fc0d12fe7e5c", person.ID); !errors.Is(err, ErrAlreadyAssociated) {
		t.Errorf("repeat marker association error = %v, want ErrAlreadyAssociated", err)
	}
}

func TestRegistry_ListingsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"/home/c", "/home/a", "/home/b"} {
		_ = reg.RegisterSensedEntity(SensedEntityDescription{ID: id, Kind: KindPhysicalSpace})
		_ = reg.RegisterSensor(nodeSensor(id))
	}

	entities := reg.SensedEntities()
	sensors := reg.Sensors()
	for i, want := range []string{"/home/a", "/home/b", "/home/c"} {
		if entities[i].ID != want {
			t.Errorf("SensedEntities()[%d] = %s, want %s", i, entities[i].ID, want)
		}
		if sensors[i].ID != want {
			t.Errorf("Sensors()[%d] = %s, want %s", i, sensors[i].ID, want)
		}
	}

	s, e, m := reg.Counts()
	if s != 3 || e != 3 || m != 0 {
		t.Errorf("Counts() = %d, %d, %d", s, e, m)
	}
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 20; i++ {
		_ = reg.RegisterSensor(nodeSensor(fmt.Sprintf("/sensornode/%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := reg.Sensor(fmt.Sprintf("/sensornode/%d", (i+j)%20)); !ok {
					t.Error("lookup of registered sensor failed")
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
