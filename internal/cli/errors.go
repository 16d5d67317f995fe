package cli

import (
	"context"
	"errors"

	"stockroom/internal/store"
)

// ErrorMessage maps an error from the inventory to the text shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return "Item code already exists!"
	case errors.Is(err, store.ErrFieldTooLong):
		return "Input is too long: codes take at most 11 characters, names at most 49."
	case errors.Is(err, store.ErrInvalidValue):
		return "Invalid input values!"
	case errors.Is(err, store.ErrNotFound):
		return "Item not found."
	case errors.Is(err, store.ErrInsufficientStock):
		return "Insufficient stock!"
	case errors.Is(err, store.ErrCorruptRecord):
		return "Inventory file is damaged; restore it from a backup."
	case errors.Is(err, store.ErrStorageUnavailable):
		return "File error!"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Operation cancelled."
	}

	return "Something went wrong: " + err.Error()
}
