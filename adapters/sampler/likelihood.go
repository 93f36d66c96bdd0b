package sampler

import (
	"math"

	"gopsis/domain/core"
	"gopsis/domain/dataset"
	"gopsis/domain/model"
)

// problem is the prepared sampling target for one (spec, table) pair:
// response vector, design matrix with intercept column, log-exposure
// offset, and the prior layout.
type problem struct {
	spec    model.Spec
	y       []float64
	x       [][]float64 // [observation][coefficient], column 0 is the intercept
	offset  []float64
	nCoef   int
	hasDisp bool
}

// newProblem builds the design matrix and validates the offset. A zero or
// negative exposure makes log(exposure2) undefined and is a configuration
// error surfaced before any sampling starts.
func newProblem(spec model.Spec, table *dataset.Table) (*problem, error) {
	n := table.Len()
	covs := spec.Covariates()

	p := &problem{
		spec:    spec,
		y:       make([]float64, n),
		x:       make([][]float64, n),
		offset:  make([]float64, n),
		nCoef:   1 + len(covs),
		hasDisp: spec.Family() == model.NegBinomial,
	}

	cols := make([][]float64, len(covs))
	for j, c := range covs {
		col, err := table.Column(string(c))
		if err != nil {
			return nil, core.NewSpecError(err.Error())
		}
		cols[j] = col
	}

	for i := 0; i < n; i++ {
		row := table.Row(i)
		if row.Exposure2 <= 0 {
			return nil, core.NewExposureError(i, row.Exposure2)
		}
		p.y[i] = float64(row.Y)
		p.offset[i] = math.Log(row.Exposure2)
		xi := make([]float64, p.nCoef)
		xi[0] = 1
		for j := range covs {
			xi[j+1] = cols[j][i]
		}
		p.x[i] = xi
	}
	return p, nil
}

// numParams is the sampled parameter count: coefficients plus, for the NB
// family, the log reciprocal dispersion.
func (p *problem) numParams() int {
	if p.hasDisp {
		return p.nCoef + 1
	}
	return p.nCoef
}

// eta computes the linear predictor for observation i
func (p *problem) eta(z []float64, i int) float64 {
	e := p.offset[i]
	for j := 0; j < p.nCoef; j++ {
		e += z[j] * p.x[i][j]
	}
	return e
}

// obsLogLik computes the log-likelihood of observation i at state z. For
// the NB family z[nCoef] holds log(reciprocal_dispersion).
func (p *problem) obsLogLik(z []float64, i int) float64 {
	eta := p.eta(z, i)
	if p.hasDisp {
		phi := 1 / math.Exp(z[p.nCoef])
		return negBinomLogLik(p.y[i], eta, phi)
	}
	return poissonLogLik(p.y[i], eta)
}

// logPosterior computes the unnormalized log posterior density at state z.
// Returns -Inf for numerically unusable states so proposals there are
// always rejected.
func (p *problem) logPosterior(z []float64) float64 {
	lp := 0.0
	for i := range p.y {
		lp += p.obsLogLik(z, i)
	}

	icept := p.spec.InterceptPrior()
	slope := p.spec.SlopePrior()
	lp += normalLogPDF(z[0], icept.Mean, icept.Scale)
	for j := 1; j < p.nCoef; j++ {
		lp += normalLogPDF(z[j], slope.Mean, slope.Scale)
	}

	if p.hasDisp {
		// Exponential(rate) prior on the reciprocal dispersion r, sampled
		// as theta = log(r); the Jacobian contributes theta.
		theta := z[p.nCoef]
		r := math.Exp(theta)
		lp += -model.DefaultDispersionRate*r + theta
	}

	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

// pointwiseLogLik fills dst with the per-observation log-likelihood at z
func (p *problem) pointwiseLogLik(z []float64, dst []float64) {
	for i := range p.y {
		dst[i] = p.obsLogLik(z, i)
	}
}

// poissonLogLik is log Poisson(y | exp(eta))
func poissonLogLik(y, eta float64) float64 {
	lg, _ := math.Lgamma(y + 1)
	return y*eta - math.Exp(eta) - lg
}

// negBinomLogLik is log NB2(y | mean exp(eta), dispersion phi)
func negBinomLogLik(y, eta, phi float64) float64 {
	if phi <= 0 {
		return math.Inf(-1)
	}
	mu := math.Exp(eta)
	lgYPhi, _ := math.Lgamma(y + phi)
	lgPhi, _ := math.Lgamma(phi)
	lgY1, _ := math.Lgamma(y + 1)
	logDenom := math.Log(phi + mu)
	return lgYPhi - lgPhi - lgY1 +
		phi*(math.Log(phi)-logDenom) +
		y*(eta-logDenom)
}

// normalLogPDF is the log density of Normal(mean, scale)
func normalLogPDF(x, mean, scale float64) float64 {
	d := (x - mean) / scale
	return -0.5*d*d - math.Log(scale) - 0.5*math.Log(2*math.Pi)
}
