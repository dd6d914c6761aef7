package auth

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrPhoneExists        = errors.New("phone number already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")

	// ErrAmbiguousRole means the phone matches several accounts and the login
	// request did not say which role to sign in as.
	ErrAmbiguousRole = errors.New("multiple accounts for this phone, role required")
)
