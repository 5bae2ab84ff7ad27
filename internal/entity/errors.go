package entity

import "errors"

// Domain errors for the entity package.
//
//	if errors.Is(err, entity.ErrUnknownID) {
//	    // an association referenced something never registered
//	}
var (
	// ErrDuplicateID is returned when registering an id that already exists in its namespace.
	ErrDuplicateID = errors.New("entity: duplicate id")

	// ErrUnknownID is returned when an association references an unregistered id.
	ErrUnknownID = errors.New("entity: unknown id")

	// ErrAlreadyAssociated is returned when a sensor or marker already has an entity.
	ErrAlreadyAssociated = errors.New("entity: already associated")

	// ErrInvalidDescription is returned when a description fails validation.
	ErrInvalidDescription = errors.New("entity: invalid description")

	// ErrInvalidSeed is returned when a seed file cannot be applied.
	ErrInvalidSeed = errors.New("entity: invalid seed")
)
