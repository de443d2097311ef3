package errors

import "errors"

var (
	ErrNotFound = errors.New("billboard not found")

	ErrInvalidID = errors.New("invalid billboard ID format")

	// ErrVersionConflict means the document changed between read and write.
	ErrVersionConflict = errors.New("billboard was modified concurrently")

	ErrCapacityExceeded = errors.New("billboard has no available slots")

	ErrInvalidSaleUnit = errors.New("billboard does not sell this unit")

	ErrResourceUnavailable = errors.New("billboard is not accepting reservations")

	ErrInvalidOccupancy = errors.New("occupancy fields do not match the sale unit")

	ErrClientNotFound = errors.New("client is not an occupant of this billboard")

	ErrWrongKind = errors.New("operation does not apply to this billboard kind")

	ErrInvalidStatus = errors.New("status cannot be set manually")
)
