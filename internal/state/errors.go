package state

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = fmt.Errorf("canvas dimensions must be between %dx%d and %dx%d",
		MinDimension, MinDimension, MaxDimension, MaxDimension)
	ErrNotFound      = errors.New("session not found")
	ErrValidation    = errors.New("invalid operation")
	ErrRenderFailure = errors.New("render failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
