package user

import "errors"

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("user not found")
	ErrPhoneExists = errors.New("phone number already registered")
	ErrForbidden   = errors.New("permission denied")

	// Deletion guards: admins cannot remove themselves, and accounts with
	// order history are kept for the audit trail.
	ErrSelfDelete = errors.New("cannot delete your own account")
	ErrUserInUse  = errors.New("user has orders and cannot be deleted")
)
