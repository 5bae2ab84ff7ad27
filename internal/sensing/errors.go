package sensing

import "errors"

// Sentinel errors for the sensing pipeline.
//
//	if errors.Is(err, sensing.ErrInputStart) {
//	    // one input failed to start; the others are running
//	}
var (
	// ErrUnresolvedSensor marks an event whose sensor has no associated entity.
	// The event is dropped before any listener sees it.
	ErrUnresolvedSensor = errors.New("sensing: sensor not associated with any entity")

	// ErrUnresolvedEntity marks a resolved event whose entity has no model.
	ErrUnresolvedEntity = errors.New("sensing: no model for sensed entity")

	// ErrUnrecognizedValueType marks a payload field whose type tag is not numeric.
	ErrUnrecognizedValueType = errors.New("sensing: unrecognized value type")

	// ErrProcessing wraps a handler or listener failure caught during dispatch.
	ErrProcessing = errors.New("sensing: processing failed")

	// ErrDecode is returned when an event document cannot be decoded.
	ErrDecode = errors.New("sensing: cannot decode event")

	// ErrInputStart is returned when an input source fails to start.
	ErrInputStart = errors.New("sensing: input failed to start")

	// ErrAlreadyStarted is returned when starting a processor or input twice.
	ErrAlreadyStarted = errors.New("sensing: already started")

	// ErrUnknownMode is returned when parsing an unrecognised mode name.
	ErrUnknownMode = errors.New("sensing: unknown mode")
)
