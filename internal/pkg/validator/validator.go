package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Details maps a validation error (including gin binding failures) to
// field → failed rule. Returns nil for non-validation errors.
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string)
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
