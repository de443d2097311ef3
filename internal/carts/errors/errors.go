package errors

import "errors"

var (
	ErrNotFound = errors.New("cart not found")

	ErrInvalidID = errors.New("invalid cart ID format")

	ErrItemNotFound = errors.New("cart item not found")

	ErrUnsupportedModality = errors.New("modality is not sold for this billboard")

	ErrInvalidConfig = errors.New("item config does not match modality")

	ErrDateRangeInvalid = errors.New("invalid date range")

	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrCheckedOut is returned when mutating a cart that already produced a booking.
	ErrCheckedOut = errors.New("cart has already been checked out")
)
