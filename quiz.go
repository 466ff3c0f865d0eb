package ebisu

import "math"

// Quiz is one review outcome: Successes out of Total independent trials,
// observed Elapsed time units after the previous review.
//
// A Bernoulli quiz (Total == 1 and Binomial unset) goes through the
// closed-form pass/fail update. Set Binomial to force the binomial
// expansion for any Total.
type Quiz struct {
	Successes int     `json:"successes" yaml:"successes"`
	Total     int     `json:"total" yaml:"total"`
	Elapsed   float64 `json:"elapsed" yaml:"elapsed"`
	Binomial  bool    `json:"binomial,omitempty" yaml:"binomial,omitempty"`
}

// Passed returns a successful single-trial quiz at elapsed time t.
func Passed(t float64) Quiz { return Quiz{Successes: 1, Total: 1, Elapsed: t} }

// Failed returns a failed single-trial quiz at elapsed time t.
func Failed(t float64) Quiz { return Quiz{Successes: 0, Total: 1, Elapsed: t} }

// Binomial returns a quiz of successes out of total trials at elapsed time t.
func Binomial(successes, total int, t float64) Quiz {
	return Quiz{Successes: successes, Total: total, Elapsed: t, Binomial: true}
}

// Validate checks 0 <= Successes <= Total, Total >= 1 and Elapsed > 0.
func (q Quiz) Validate() error {
	if q.Total < 1 {
		return invalidArgf("total = %d, must be at least 1", q.Total)
	}
	if q.Successes < 0 || q.Successes > q.Total {
		return invalidArgf("successes = %d, must be in [0, %d]", q.Successes, q.Total)
	}
	if !(q.Elapsed > 0) || math.IsInf(q.Elapsed, 1) {
		return invalidArgf("elapsed = %g, must be positive and finite", q.Elapsed)
	}
	return nil
}

// bernoulli reports whether q takes the closed-form pass/fail path.
func (q Quiz) bernoulli() bool { return q.Total == 1 && !q.Binomial }
