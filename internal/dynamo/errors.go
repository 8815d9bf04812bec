package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrUnreachable indicates forward stepping hit the step guard before
	// reaching the requested point.
	ErrUnreachable = errors.New("dynamo: point unreachable within step limit")

	// ErrNonFinite indicates a step produced a NaN or Inf sample.
	ErrNonFinite = errors.New("dynamo: non-finite sample (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidQuery indicates a query point that cannot be ordered (NaN).
	ErrInvalidQuery = errors.New("dynamo: invalid query point")

	// ErrNilFunc indicates a missing right-hand side function.
	ErrNilFunc = errors.New("dynamo: nil right-hand side function")
)

// QueryError wraps an error with the context of a point query.
type QueryError struct {
	T        float64
	Frontier Sample
	Steps    int
	Wrapped  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query t=%g (frontier t=%g, %d steps): %v", e.T, e.Frontier.T, e.Steps, e.Wrapped)
}

func (e *QueryError) Unwrap() error {
	return e.Wrapped
}
