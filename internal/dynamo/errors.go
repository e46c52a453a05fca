package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine construction and configuration.
var (
	// ErrInvalidBounds indicates a simulation volume with min >= max on some axis.
	ErrInvalidBounds = errors.New("dynamo: invalid bounds (min must be below max on every axis)")

	// ErrUnknownEffect indicates an effect tag outside the closed effect set.
	ErrUnknownEffect = errors.New("dynamo: unknown effect type")

	// ErrUnknownParam indicates a tunable name the engine does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

var axisNames = [3]string{"x", "y", "z"}

// BoundsError reports the axis that failed bounds validation.
type BoundsError struct {
	Axis     int
	Min, Max float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: axis %s has min %g, max %g", ErrInvalidBounds, axisNames[e.Axis], e.Min, e.Max)
}

func (e *BoundsError) Unwrap() error {
	return ErrInvalidBounds
}

// ParamError wraps an error with the offending parameter name and value.
type ParamError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s=%g: %v", e.Name, e.Value, e.Wrapped)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}
