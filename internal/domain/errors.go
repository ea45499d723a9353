package domain

import (
	"errors"
	"fmt"
)

// Tour computation failures. Match with errors.Is.
var (
	ErrNoWarehouse          = errors.New("road map has no warehouse")
	ErrUnreachableStop      = errors.New("delivery cannot be reached from or return to the warehouse")
	ErrInfeasibleTimeWindow = errors.New("no delivery order satisfies every time window")
	ErrDeliveriesNotOnRoute = errors.New("computed route does not deliver every request")
)

// ComputingError carries one of the sentinel kinds above plus detail.
type ComputingError struct {
	Kind   error
	Detail string
}

func NewComputingError(kind error, format string, args ...any) *ComputingError {
	return &ComputingError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *ComputingError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *ComputingError) Unwrap() error { return e.Kind }

// IsComputingError reports whether err is a tour computation failure, as
// opposed to an infrastructure error.
func IsComputingError(err error) bool {
	var ce *ComputingError
	return errors.As(err, &ce) || errors.Is(err, ErrNoWarehouse)
}
