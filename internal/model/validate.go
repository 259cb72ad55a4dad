package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field rules on a record.
func Validate(rec Record) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if err := validate.Struct(rec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, rec.Kind(), err)
	}
	return nil
}
