package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrStatusChanged means the stored status moved between read and write.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrEmptyCart = errors.New("cart has no items")

	ErrIncompleteContact = errors.New("contact name, email and phone are required")

	ErrDateRangeInvalid = errors.New("date range start is after end")

	ErrNotOwner = errors.New("owner has no resource in this booking")
)
