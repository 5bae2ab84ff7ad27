// Package entity provides the sensor registry for Gray Logic Sensing.
//
// The registry is the catalogue of sensors, the sensed entities they observe
// (people, physical spaces, marker-identified objects) and the markers that
// identify entities indirectly, together with the association edges between
// them.
//
// # Lifecycle
//
// A Registry is populated once at startup, typically from a YAML seed file,
// and then handed by reference to the model store and the sensed-entity
// handler. Nothing registers or associates after that point.
//
//	reg := entity.NewRegistry()
//	seed, err := entity.LoadSeed("configs/seed.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := seed.Apply(reg); err != nil {
//	    return err
//	}
//
// # Identity
//
// Sensor ids, sensed entity ids and marker ids are separate namespaces; the
// same string may appear in more than one. A sensor or marker is associated
// with at most one entity, and a second association for the same source is
// rejected with ErrAlreadyAssociated.
package entity
