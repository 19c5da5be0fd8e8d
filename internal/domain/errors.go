package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("application not found")
	ErrNoPendingDeletion = errors.New("no pending deletion for token")
)

// ValidationError lists the fields that are missing or invalid
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid application: " + strings.Join(e.Fields, ", ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
