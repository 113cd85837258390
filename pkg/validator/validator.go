// Package validator plugs go-playground/validator into echo so request DTOs
// are checked against their struct tags before a handler touches them.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator satisfies echo.Validator. Handlers call c.Validate on a
// bound DTO and map any failure to a VALIDATION error response.
type CustomValidator struct {
	v *validator.Validate
}

// New builds the validator the server installs on its echo instance
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate checks the struct tags of a bound request DTO
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
