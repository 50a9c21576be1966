package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrTemplateNotFound = fmt.Errorf("%w: template", ErrNotFound)
	ErrProjectNotFound  = fmt.Errorf("%w: project", ErrNotFound)
	ErrTableNotFound    = fmt.Errorf("%w: table", ErrNotFound)

	// Validation errors
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidRange      = errors.New("invalid row range")
	ErrUnsupportedOp     = errors.New("unsupported predicate operator")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewIdentifierError(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrUnsupportedOp)
}
