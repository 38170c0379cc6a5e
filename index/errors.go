package index

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks, every concrete error below matches one of
// them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrMeasurement = errors.New("malformed measurement")
)

// ValidationError is returned when a mutation would break an invariant of the
// bundle sequence. Operations returning it never partially apply.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErr(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError references an id absent from the store.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if len(kind) == 0 {
		kind = "entry"
	}
	return fmt.Sprintf("%s %q not found", kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MeasurementError describes external height or page count signal which
// cannot be used. It is not fatal, last known good value stays in effect.
type MeasurementError struct {
	ID     string
	Value  float64
	Reason string
}

func (e *MeasurementError) Error() string {
	if len(e.ID) == 0 {
		return fmt.Sprintf("measurement %v: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("measurement %v for %q: %s", e.Value, e.ID, e.Reason)
}

func (e *MeasurementError) Is(target error) bool {
	return target == ErrMeasurement
}
