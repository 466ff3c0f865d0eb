package ebisu

import (
	"fmt"
	"math"
)

// Default shape parameters for a fresh model.
const (
	DefaultAlpha = 4.0
	DefaultBeta  = 4.0
)

// Model is the memory state of one fact: a Beta(Alpha, Beta) distribution
// over recall probability after Time has elapsed since the last review.
// Time units are the caller's (hours, days, ...). Models are plain values;
// every update returns a new one.
type Model struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Time  float64 `json:"time"`
}

// NewModel returns a model anchored at time t with the default shape
// alpha = beta = 4. With equal shapes, t is close to the halflife.
func NewModel(t float64) Model {
	return Model{Alpha: DefaultAlpha, Beta: DefaultBeta, Time: t}
}

// NewModelShape returns a model with alpha = beta = ab.
func NewModelShape(t, ab float64) Model {
	return Model{Alpha: ab, Beta: ab, Time: t}
}

// NewModelParams returns a model with explicit alpha and beta.
func NewModelParams(t, alpha, beta float64) Model {
	return Model{Alpha: alpha, Beta: beta, Time: t}
}

// Validate reports ErrInvalidArgument unless all three fields are finite and positive.
func (m Model) Validate() error {
	for _, f := range [...]struct {
		name string
		v    float64
	}{{"alpha", m.Alpha}, {"beta", m.Beta}, {"time", m.Time}} {
		if !(f.v > 0) || math.IsInf(f.v, 1) {
			return invalidArgf("model %s = %g, must be positive and finite", f.name, f.v)
		}
	}
	return nil
}

// String renders the model as Model(alpha, beta, time).
func (m Model) String() string {
	return fmt.Sprintf("Model(%g, %g, %g)", m.Alpha, m.Beta, m.Time)
}
