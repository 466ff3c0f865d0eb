package ebisu

import (
	"encoding"
	"errors"
	"fmt"
)

// Kind classifies an error returned by this package so callers can branch
// on recoverability without matching each sentinel.
type Kind int

const (
	KindUnknown            Kind = iota // Not produced by this package.
	KindInvalidArgument                // Caller passed a bad input; fix the call.
	KindNumericalBreakdown             // Update was attempted over an ill-posed regime.
	KindNonConvergence                 // Root finder failed to bracket or refine.
)

var (
	kindNames  = [...]string{KindUnknown: "Unknown", KindInvalidArgument: "InvalidArgument", KindNumericalBreakdown: "NumericalBreakdown", KindNonConvergence: "NonConvergence"}
	kindByName = map[string]Kind{
		"Unknown":            KindUnknown,
		"InvalidArgument":    KindInvalidArgument,
		"NumericalBreakdown": KindNumericalBreakdown,
		"NonConvergence":     KindNonConvergence,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Kind(0)
	_ encoding.TextMarshaler   = Kind(0)
	_ encoding.TextUnmarshaler = (*Kind)(nil)
)

// KindOf returns the Kind of err, or KindUnknown if err does not wrap one of
// the package sentinels. KindOf(nil) is KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNumericalBreakdown):
		return KindNumericalBreakdown
	case errors.Is(err, ErrNonConvergence):
		return KindNonConvergence
	default:
		return KindUnknown
	}
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	return k >= KindUnknown && k <= KindNonConvergence
}

// String returns the kind name. For invalid values it returns "Kind(n)".
func (k Kind) String() string {
	if k.IsValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("ebisu: invalid kind: %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := kindByName[string(text)]
	if !ok {
		return fmt.Errorf("ebisu: invalid kind: %q", text)
	}
	*k = v
	return nil
}
