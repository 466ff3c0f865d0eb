package ebisu

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ebisu package.
// Use errors.Is to check: errors.Is(err, ebisu.ErrNonConvergence)
var (
	ErrInvalidArgument    = errors.New("ebisu: invalid argument")
	ErrNumericalBreakdown = errors.New("ebisu: numerical breakdown")
	ErrNonConvergence     = errors.New("ebisu: non-convergent")
)

// ConvergenceError reports a search that failed to bracket or refine a root.
// Low and High are the last bracket in log-time units (log(t / model.Time)).
type ConvergenceError struct {
	Op         string
	Low, High  float64
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: %s after %d iterations, bracket [%g, %g]",
		ErrNonConvergence, e.Op, e.Iterations, e.Low, e.High)
}

// Unwrap makes errors.Is(err, ErrNonConvergence) hold.
func (e *ConvergenceError) Unwrap() error { return ErrNonConvergence }

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func breakdownf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNumericalBreakdown}, args...)...)
}
