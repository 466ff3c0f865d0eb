package calibrate

import (
	"fmt"
	"math"

	"github.com/sky-flux/ebisu"
)

const bceClamp = 1e-7

// bceLoss computes the binary cross-entropy loss: -[y*ln(p) + (1-y)*ln(1-p)].
// p is clamped to [bceClamp, 1-bceClamp] to avoid log(0). y may be fractional
// for binomial quizzes.
func bceLoss(p, y float64) float64 {
	p = math.Max(bceClamp, math.Min(p, 1-bceClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// Loss replays each history from prior through e and returns the average
// binary cross-entropy of the predicted recall at every quiz against the
// observed success fraction. It returns 0 when there are no quizzes and the
// first update error otherwise encountered.
func Loss(e *ebisu.Engine, prior ebisu.Model, histories []History) (float64, error) {
	if err := prior.Validate(); err != nil {
		return 0, err
	}

	var total float64
	var count int
	for i, h := range histories {
		m := prior
		for j, q := range h {
			p := e.PredictRecall(m, q.Elapsed, true)
			total += bceLoss(p, float64(q.Successes)/float64(q.Total))
			count++

			next, err := e.UpdateRecallWith(m, q, ebisu.UpdateOptions{})
			if err != nil {
				return 0, fmt.Errorf("history %d quiz %d: %w", i, j, err)
			}
			m = next
		}
	}

	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

const gradEps = 1e-3

// candidate maps log-space parameters to a prior: x[0] is log halflife,
// x[1] is log shape.
func candidate(x [2]float64) ebisu.Model {
	return ebisu.NewModelShape(math.Exp(x[0]), math.Exp(x[1]))
}

// numericalGradient computes the gradient of Loss w.r.t. x using central
// differences: dL/dx[i] ≈ (L(x[i]+ε) - L(x[i]-ε)) / (2ε).
func numericalGradient(e *ebisu.Engine, x [2]float64, histories []History) ([2]float64, error) {
	var grad [2]float64
	for i := range grad {
		xPlus := x
		xPlus[i] += gradEps
		xMinus := x
		xMinus[i] -= gradEps

		lPlus, err := Loss(e, candidate(xPlus), histories)
		if err != nil {
			return grad, err
		}
		lMinus, err := Loss(e, candidate(xMinus), histories)
		if err != nil {
			return grad, err
		}
		grad[i] = (lPlus - lMinus) / (2 * gradEps)
	}
	return grad, nil
}
