package store

import "errors"

var (
	ErrDuplicateKey       = errors.New("item code already exists")
	ErrInvalidValue       = errors.New("invalid item value")
	ErrNotFound           = errors.New("item not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCorruptRecord is returned when the data file is not a whole number of records.
	ErrCorruptRecord = errors.New("corrupt record")
)

// ErrFieldTooLong wraps ErrInvalidValue so errors.Is(err, ErrInvalidValue) holds.
var ErrFieldTooLong = fieldTooLongError{}

type fieldTooLongError struct{}

func (fieldTooLongError) Error() string { return "field exceeds maximum length" }

func (fieldTooLongError) Unwrap() error { return ErrInvalidValue }
