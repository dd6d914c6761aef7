package catalog

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("service not found")

	// ErrServiceInUse blocks deletion of services referenced by orders.
	ErrServiceInUse = errors.New("service has orders and cannot be deleted")
)
