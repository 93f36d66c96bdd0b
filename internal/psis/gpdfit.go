// Package psis implements Pareto-smoothed importance sampling: a
// generalized Pareto tail fit over the largest raw importance weights, and
// replacement of those weights with expected order statistics of the fitted
// distribution. It is the stabilizing kernel behind the leave-one-out
// predictive scores.
package psis

import (
	"math"
	"sort"

	"gopsis/domain/core"
)

// MinTail is the smallest exceedance count the profile fit accepts.
const MinTail = 5

// khat regularization: shrink the estimate toward 0.5 with a prior weight
// of 10 pseudo-observations (Zhang-Stephens weakly informative adjustment).
const (
	khatPriorWeight = 10.0
	khatPriorValue  = 0.5
)

// GPDFit estimates the generalized Pareto shape khat and scale sigma from
// exceedances over a threshold, using the Zhang-Stephens (2009) profile
// posterior method: a grid of quadrature points over the transformed scale
// parameter, weighted by profile likelihood.
func GPDFit(exceedances []float64) (khat, sigma float64, err error) {
	n := len(exceedances)
	if n < MinTail {
		return 0, 0, core.ErrDegenerateTail
	}

	x := make([]float64, n)
	copy(x, exceedances)
	sort.Float64s(x)

	if x[n-1] <= 0 {
		return 0, 0, core.ErrDegenerateTail
	}

	// First quartile of the sorted exceedances anchors the prior scale.
	quartIdx := int(math.Floor(float64(n)/4.0+0.5)) - 1
	if quartIdx < 0 {
		quartIdx = 0
	}
	xstar := x[quartIdx]
	if xstar <= 0 {
		// All-zero lower tail; fall back to the smallest positive value.
		for _, v := range x {
			if v > 0 {
				xstar = v
				break
			}
		}
		if xstar <= 0 {
			return 0, 0, core.ErrDegenerateTail
		}
	}

	const prior = 3.0
	m := 30 + int(math.Floor(math.Sqrt(float64(n))))

	thetas := make([]float64, m)
	profile := make([]float64, m)
	for j := 0; j < m; j++ {
		thetas[j] = 1/x[n-1] + (1-math.Sqrt(float64(m)/(float64(j)+0.5)))/(prior*xstar)
		k := meanLog1pNegProd(thetas[j], x)
		profile[j] = float64(n) * (math.Log(-thetas[j]/k) - k - 1)
	}

	// Normalize the profile weights with the usual log-sum-exp shift.
	weights := make([]float64, m)
	thetaHat := 0.0
	for j := 0; j < m; j++ {
		denom := 0.0
		for i := 0; i < m; i++ {
			denom += math.Exp(profile[i] - profile[j])
		}
		weights[j] = 1 / denom
		thetaHat += weights[j] * thetas[j]
	}

	khat = meanLog1pNegProd(thetaHat, x)
	sigma = -khat / thetaHat

	khat = (float64(n)*khat + khatPriorWeight*khatPriorValue) / (float64(n) + khatPriorWeight)

	if math.IsNaN(khat) || math.IsNaN(sigma) || sigma <= 0 {
		return 0, 0, core.ErrDegenerateTail
	}
	return khat, sigma, nil
}

// meanLog1pNegProd computes mean(log1p(-theta*x_i))
func meanLog1pNegProd(theta float64, x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += math.Log1p(-theta * v)
	}
	return sum / float64(len(x))
}

// GPDQuantile inverts the generalized Pareto CDF with location 0.
func GPDQuantile(p, khat, sigma float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	if math.Abs(khat) < 1e-12 {
		return -sigma * math.Log(1-p)
	}
	return sigma * (math.Pow(1-p, -khat) - 1) / khat
}
