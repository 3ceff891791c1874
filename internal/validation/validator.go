// Package validation wraps go-playground/validator for the record
// types produced by plan ingestion.
package validation

import (
	"github.com/go-playground/validator/v10"
)

// Validator validates domain records against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with struct-tag validation enabled.
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Struct validates a record. The returned error is a
// validator.ValidationErrors when validation fails.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}
