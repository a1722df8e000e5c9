package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns the configured request validator. Request schemas carry their
// rules as struct tags; everything that cannot be expressed as a tag (the
// category/subcategory whitelist, image merging) lives with the component
// that owns the data.
func New() *validatorv10.Validate {
	return validatorv10.New()
}
