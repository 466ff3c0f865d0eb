package ebisu

import "math"

// algo holds the tuned constants of an Engine and its log-gamma source.
type algo struct {
	gamma *LogGammaCache

	skew        float64 // rebalance when one shape exceeds skew × the other
	coarseWidth float64 // bracket width for coarse percentile search
	width       float64 // bracket width for precise percentile search
	tolerance   float64 // default refinement tolerance, log-time units
	maxIter     int     // refinement iteration cap
	maxBracket  int     // bracket slide cap
}

// lgamma evaluates log Gamma without caching. Used for arguments shifted by
// elapsed time, which rarely repeat.
func (a *algo) lgamma(x float64) float64 {
	return a.gamma.Provider().LogGamma(x)
}

// lgammaCached evaluates log Gamma through the shared cache.
func (a *algo) lgammaCached(x float64) float64 {
	return a.gamma.LogGamma(x)
}

// logBeta computes log B(x, y) = logΓ(x) + logΓ(y) - logΓ(x+y).
func (a *algo) logBeta(x, y float64) float64 {
	return a.lgammaCached(x) + a.lgammaCached(y) - a.lgammaCached(x+y)
}

// logNormalizer is logΓ(alpha+beta) - logΓ(alpha), the model-only half of
// every beta ratio. Both terms recur across facts sharing a shape, so they
// are always served from the cache.
func (a *algo) logNormalizer(alpha, beta float64) float64 {
	return a.lgammaCached(alpha+beta) - a.lgammaCached(alpha)
}

// logBetaRatio computes log(B(a1, b) / B(alpha, b)).
func (a *algo) logBetaRatio(a1, alpha, b float64) float64 {
	return a.lgamma(a1) - a.lgamma(a1+b) + a.logNormalizer(alpha, b)
}

// logBinom computes log C(n, k) = -log B(1+n-k, 1+k) - log(n+1).
func (a *algo) logBinom(n, k int) float64 {
	return -a.logBeta(1+float64(n-k), 1+float64(k)) - math.Log(float64(n)+1)
}

// predict returns log P(recall) after tnow:
//
//	dt = tnow / t
//	log P = log(B(alpha+dt, beta) / B(alpha, beta))
//
// With exact it returns the linear probability instead.
func (a *algo) predict(m Model, tnow float64, exact bool) float64 {
	dt := tnow / m.Time
	ret := a.logBetaRatio(m.Alpha+dt, m.Alpha, m.Beta)
	if exact {
		return math.Exp(ret)
	}
	return ret
}

// skewed reports whether one shape parameter dwarfs the other.
func (a *algo) skewed(m Model) bool {
	return m.Alpha > a.skew*m.Beta || m.Beta > a.skew*m.Alpha
}
