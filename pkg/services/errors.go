package services

import (
	"fmt"

	"gamemarket-api-io/api/pkg/hierarchy"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

// ValidationError is returned for input the caller can fix. Field is empty
// for errors spanning several fields.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// hierarchyError converts path encoder failures into validation errors.
func hierarchyError(err error) error {
	switch {
	case errors.Is(err, hierarchy.ErrIdentifierNotInteger),
		errors.Is(err, hierarchy.ErrIdentifierWithParent),
		errors.Is(err, hierarchy.ErrPathTooLong):
		return NewValidationError("hierarchy_identifier", "%s", err.Error())
	case errors.Is(err, hierarchy.ErrCycle):
		return NewValidationError("parent_category", "%s", err.Error())
	}
	return err
}

// duplicateError turns a unique index violation into a validation error on
// field. Other errors are wrapped with msg.
func duplicateError(err error, field, msg string) error {
	if mongo.IsDuplicateKeyError(err) {
		return NewValidationError(field, "%s", msg)
	}
	return errors.Wrap(err, "write "+field)
}

// notFound maps mongo.ErrNoDocuments to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return errors.Wrap(err, "find "+what)
}

// structError validates s with v and reports the first failing field.
func structError(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(fe.Field(), "failed on the '%s' rule", fe.Tag())
	}
	return err
}
