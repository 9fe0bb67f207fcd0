package httputil

import (
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// RespondValidation writes the result of an ozzo validation.
// It returns true when err was non-nil and a response was written.
func RespondValidation(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		RespondErrorWithCode(w, err.Error(), CodeValidationFailed, http.StatusBadRequest)
		return true
	}

	RespondValidationError(w, FieldErrors(errs))
	return true
}

// FieldErrors flattens ozzo validation errors sorted by field name
func FieldErrors(errs validation.Errors) []FieldError {
	fields := make([]FieldError, 0, len(errs))
	for field, err := range errs {
		fields = append(fields, FieldError{Field: field, Message: err.Error()})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return fields
}
