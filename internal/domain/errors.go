package domain

import "errors"

var (
	// ErrNotFound is returned when a location, route, spike event or other
	// record referenced by id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEventCycle is returned when a parent link would make the spike
	// event graph cyclic.
	ErrEventCycle = errors.New("spike event parent would create a cycle")

	// ErrUnknownSpikeType is returned when no handler is registered for a spike type.
	ErrUnknownSpikeType = errors.New("unknown spike type")

	// ErrDuplicateEvent is returned when an event id is already tracked.
	ErrDuplicateEvent = errors.New("duplicate spike event")

	// ErrInvalidSpike is returned for a spike event with an inverted day
	// window or a magnitude that would make costs negative.
	ErrInvalidSpike = errors.New("invalid spike event")
)
