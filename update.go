package ebisu

import "math"

// posterior moment-matches the exact posterior of prior given q back to a
// Beta distribution anchored at tback. It never rebalances.
func (a *algo) posterior(prior Model, q Quiz, tback float64) (Model, error) {
	if q.bernoulli() {
		return a.updateBernoulli(prior, q.Successes == 1, q.Elapsed, tback)
	}
	return a.updateBinomial(prior, q.Successes, q.Total, q.Elapsed, tback)
}

// updateBernoulli handles a single pass/fail quiz.
//
// A pass evaluated at the prior's own time is conjugate: (alpha+dt, beta, t).
// Otherwise the posterior is a GB1 distribution whose first two moments at
// tback are computed in the log domain and fitted with MeanVarToBeta.
func (a *algo) updateBernoulli(prior Model, passed bool, tnow, tback float64) (Model, error) {
	alpha, beta, t := prior.Alpha, prior.Beta, prior.Time
	dt := tnow / t
	et := tnow / tback

	var mean, variance float64
	if passed {
		if tback == t {
			return Model{Alpha: alpha + dt, Beta: beta, Time: t}, nil
		}
		fixed := a.lgamma(alpha+dt+beta) - a.lgamma(alpha+dt)
		s1 := dt / et * (1 + et)
		s2 := dt / et * (2 + et)
		logMean := a.lgamma(alpha+s1) - a.lgamma(alpha+beta+s1) + fixed
		logM2 := a.lgamma(alpha+s2) - a.lgamma(alpha+beta+s2) + fixed
		mean = math.Exp(logMean)
		variance = SubtractExp(logM2, 2*logMean)
	} else {
		shift := dt / et // tback / t
		logDen := LogSubExp(a.logBeta(alpha, beta), a.logBeta(alpha+dt, beta))
		mean = SubtractExp(
			a.logBeta(alpha+shift, beta)-logDen,
			a.logBeta(alpha+shift+dt, beta)-logDen,
		)
		m2 := SubtractExp(
			a.logBeta(alpha+2*shift, beta)-logDen,
			a.logBeta(alpha+2*shift+dt, beta)-logDen,
		)
		if !positive(m2) {
			return Model{}, breakdownf("invalid second moment %g (prior %v, fail at tnow=%g, tback=%g)", m2, prior, tnow, tback)
		}
		variance = m2 - mean*mean
	}

	if !positive(mean) {
		return Model{}, breakdownf("invalid mean %g (prior %v, passed=%t, tnow=%g, tback=%g)", mean, prior, passed, tnow, tback)
	}
	if !positive(variance) {
		return Model{}, breakdownf("invalid variance %g (prior %v, passed=%t, tnow=%g, tback=%g, mean=%g)",
			variance, prior, passed, tnow, tback, mean)
	}
	return a.fit(mean, variance, tback)
}

// updateBinomial handles successes out of total independent trials. With
// k = total - successes failures, each moment m ∈ {0, 1, 2} is
//
//	Σ_{i=0..k} (-1)^i C(k, i) B(beta, alpha + dt·(successes+i) + m·tback/t)
//
// evaluated with LogSumExp; moments 1 and 2 are normalized by moment 0.
func (a *algo) updateBinomial(prior Model, successes, total int, tnow, tback float64) (Model, error) {
	alpha, beta, t := prior.Alpha, prior.Beta, prior.Time
	dt := tnow / t
	shift := tback / t
	k := total - successes

	binoms := make([]float64, k+1)
	signs := make([]float64, k+1)
	for i := range binoms {
		binoms[i] = a.logBinom(k, i)
		signs[i] = 1
		if i%2 == 1 {
			signs[i] = -1
		}
	}

	var logs, sgn [3]float64
	terms := make([]float64, k+1)
	for m := range logs {
		for i := range terms {
			terms[i] = binoms[i] + a.logBeta(beta, alpha+dt*float64(successes+i)+float64(m)*shift)
		}
		logs[m], sgn[m] = LogSumExp(terms, signs)
	}

	mean := sgn[1] * sgn[0] * math.Exp(logs[1]-logs[0])
	m2 := sgn[2] * sgn[0] * math.Exp(logs[2]-logs[0])
	variance := m2 - mean*mean

	if !positive(mean) {
		return Model{}, breakdownf("invalid mean %g (prior %v, k=%d, n=%d, tnow=%g, tback=%g)",
			mean, prior, successes, total, tnow, tback)
	}
	if !positive(m2) {
		return Model{}, breakdownf("invalid second moment %g (prior %v, k=%d, n=%d, tnow=%g, tback=%g)",
			m2, prior, successes, total, tnow, tback)
	}
	if !positive(variance) {
		return Model{}, breakdownf("invalid variance %g (prior %v, k=%d, n=%d, tnow=%g, tback=%g, mean=%g, m2=%g)",
			variance, prior, successes, total, tnow, tback, mean, m2)
	}
	return a.fit(mean, variance, tback)
}

// fit converts matched moments to a model anchored at tback.
func (a *algo) fit(mean, variance, tback float64) (Model, error) {
	newAlpha, newBeta, err := MeanVarToBeta(mean, variance)
	if err != nil {
		return Model{}, err
	}
	return Model{Alpha: newAlpha, Beta: newBeta, Time: tback}, nil
}

// rebalance re-anchors a skewed posterior near its own halflife so alpha and
// beta stay comparable. It runs at most once and returns proposed untouched
// when the shapes are balanced.
func (a *algo) rebalance(prior Model, q Quiz, proposed Model) (Model, bool, error) {
	if !a.skewed(proposed) {
		return proposed, false, nil
	}
	halflife, err := a.percentileDecay(proposed, 0.5, true, 0)
	if err != nil {
		return Model{}, false, err
	}
	m, err := a.posterior(prior, q, halflife)
	return m, true, err
}
