package ebisu

import (
	"errors"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	for _, err := range []error{ErrInvalidArgument, ErrNumericalBreakdown, ErrNonConvergence} {
		if !strings.HasPrefix(err.Error(), "ebisu: ") {
			t.Errorf("%q lacks package prefix", err)
		}
	}
}

func TestWrappedErrors(t *testing.T) {
	err := invalidArgf("percentile = %g", 1.5)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("%v does not wrap ErrInvalidArgument", err)
	}
	if got := err.Error(); got != "ebisu: invalid argument: percentile = 1.5" {
		t.Errorf("Error() = %q", got)
	}
	if err := breakdownf("variance %g", -1.0); !errors.Is(err, ErrNumericalBreakdown) {
		t.Errorf("%v does not wrap ErrNumericalBreakdown", err)
	}
}

func TestConvergenceError(t *testing.T) {
	var err error = &ConvergenceError{Op: "refine", Low: -0.5, High: 0.25, Iterations: 12}
	if !errors.Is(err, ErrNonConvergence) {
		t.Error("ConvergenceError does not unwrap to ErrNonConvergence")
	}
	want := "ebisu: non-convergent: refine after 12 iterations, bracket [-0.5, 0.25]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
