package binder

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const nonblank = "nonblank"

// nonblankValidator rejects strings that are empty or only whitespace. Unlike
// `required`, it doesn't depend on a trim modifier running first.
func nonblankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
