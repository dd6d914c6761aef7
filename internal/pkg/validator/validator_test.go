package validator

import (
	"errors"
	"testing"

	validatorlib "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestDetails(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Phone string `validate:"required"`
	}

	err := validatorlib.New().Struct(payload{})
	details := Details(err)

	assert.Equal(t, map[string]string{
		"Name":  "required",
		"Phone": "required",
	}, details)
}

func TestDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, Details(errors.New("connection refused")))
	assert.Nil(t, Details(nil))
}
