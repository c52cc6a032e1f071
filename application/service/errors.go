package service

import (
	"errors"
	"fmt"
)

// ErrValidation indicates invalid caller input.
var ErrValidation = errors.New("validation failed")

// ErrNoFile indicates an artifact has no file to read, either because it
// records a failure or because the file was removed from disk.
var ErrNoFile = errors.New("artifact file not found")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
