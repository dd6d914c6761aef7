package order

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("order not found")
	ErrServiceNotFound    = errors.New("service not found or inactive")
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrForbidden          = errors.New("permission denied")

	// ErrConflict is returned when a guarded transition affected zero rows:
	// the order moved under the caller's feet and the caller must refresh.
	ErrConflict = errors.New("order state changed concurrently")
)
