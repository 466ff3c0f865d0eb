package ebisu

import "math"

// percentileDecay finds t > 0 with predict(m, t, exact) == percentile.
//
// It searches over lndelta = log(t / m.Time), where
//
//	f(lndelta) = log(B(alpha+exp(lndelta), beta) / B(alpha, beta)) - log(percentile)
//
// is monotonically decreasing. A fixed-width bracket centred at zero slides by
// one width per step until f(low) > 0 > f(high). In coarse mode the midpoint
// of exp(low) and exp(high) is returned as an order-of-magnitude estimate;
// otherwise the bracket is bisected until narrower than tolerance.
// tolerance <= 0 selects the engine default.
func (a *algo) percentileDecay(m Model, percentile float64, coarse bool, tolerance float64) (float64, error) {
	if !(percentile > 0 && percentile < 1) {
		return 0, invalidArgf("percentile = %g, must be in (0, 1)", percentile)
	}
	if tolerance <= 0 {
		tolerance = a.tolerance
	}

	alpha, beta := m.Alpha, m.Beta
	norm := a.logNormalizer(alpha, beta)
	logP := math.Log(percentile)
	f := func(lndelta float64) float64 {
		x := alpha + math.Exp(lndelta)
		return a.lgamma(x) - a.lgamma(x+beta) + norm - logP
	}

	width := a.width
	if coarse {
		width = a.coarseWidth
	}
	low, high := -width/2, width/2
	flow, fhigh := f(low), f(high)

	steps := 0
slide:
	for ; steps < a.maxBracket; steps++ {
		switch {
		case flow > 0 && fhigh > 0:
			low, flow = high, fhigh
			high += width
			fhigh = f(high)
		case flow < 0 && fhigh < 0:
			high, fhigh = low, flow
			low -= width
			flow = f(low)
		default:
			break slide
		}
	}

	switch {
	case flow > 0 && fhigh < 0:
	case flow == 0:
		return math.Exp(low) * m.Time, nil
	case fhigh == 0:
		return math.Exp(high) * m.Time, nil
	default:
		return 0, &ConvergenceError{Op: "bracket", Low: low, High: high, Iterations: steps}
	}

	if coarse {
		return (math.Exp(low) + math.Exp(high)) / 2 * m.Time, nil
	}

	for i := 0; ; i++ {
		if high-low <= tolerance {
			return math.Exp(low+(high-low)/2) * m.Time, nil
		}
		if i == a.maxIter {
			return 0, &ConvergenceError{Op: "refine", Low: low, High: high, Iterations: i}
		}
		mid := low + (high-low)/2
		if f(mid) > 0 {
			low = mid
		} else {
			high = mid
		}
	}
}
