package ebisu

import "math"

// LogSumExp stably evaluates log(Σ signs[i]·exp(logs[i])) by factoring out
// max(logs). Missing signs default to 1.
//
// Because signs may be negative the sum itself may be negative, so the
// result is split into the log of its absolute value and its sign
// (-1, 0 or 1). A sum of exactly zero yields (-Inf, 0).
func LogSumExp(logs, signs []float64) (magnitude, sign float64) {
	if len(logs) == 0 {
		return math.Inf(-1), 0
	}
	amax := logs[0]
	for _, l := range logs[1:] {
		amax = math.Max(amax, l)
	}
	if math.IsInf(amax, -1) {
		return math.Inf(-1), 0
	}

	var sum float64
	for i, l := range logs {
		b := 1.0
		if i < len(signs) {
			b = signs[i]
		}
		sum += math.Exp(l-amax) * b
	}
	if sum == 0 {
		return math.Inf(-1), 0
	}
	sign = 1
	if sum < 0 {
		sign = -1
		sum = -sum
	}
	return math.Log(sum) + amax, sign
}

// SubtractExp stably evaluates exp(x) - exp(y) as exp(m)·(exp(x-m) - exp(y-m))
// with m = max(x, y).
func SubtractExp(x, y float64) float64 {
	m := math.Max(x, y)
	if math.IsInf(m, -1) {
		return 0
	}
	return math.Exp(m) * (math.Exp(x-m) - math.Exp(y-m))
}

// LogSubExp evaluates log(exp(a) - exp(b)). The caller must ensure
// exp(a) >= exp(b); otherwise the result is the log of |exp(a) - exp(b)|
// and meaningless as a difference.
func LogSubExp(a, b float64) float64 {
	m, _ := LogSumExp([]float64{a, b}, []float64{1, -1})
	return m
}

// MeanVarToBeta converts the mean and variance of a Beta distribution to its
// shape parameters:
//
//	k = mean·(1-mean)/variance - 1
//	alpha = mean·k, beta = (1-mean)·k
//
// It returns ErrNumericalBreakdown unless 0 < mean < 1 and
// 0 < variance < mean·(1-mean), i.e. unless both shapes come out positive.
func MeanVarToBeta(mean, variance float64) (alpha, beta float64, err error) {
	k := mean*(1-mean)/variance - 1
	alpha = mean * k
	beta = (1 - mean) * k
	if !positive(alpha) || !positive(beta) {
		return 0, 0, breakdownf("mean %g and variance %g give beta shape (%g, %g)", mean, variance, alpha, beta)
	}
	return alpha, beta, nil
}

// positive reports whether x is finite and > 0. NaN is not positive.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}
