package sampler

import (
	"context"
	"math"

	"golang.org/x/exp/rand"
)

const (
	adaptWindow  = 50
	targetAccept = 0.44 // optimal for one-dimensional updates
	minScale     = 1e-3
	maxScale     = 50.0
)

// chainResult holds one chain's retained output
type chainResult struct {
	draws     [][]float64 // [iteration][param], transformed to reporting scale
	logLik    [][]float64 // [iteration][observation]
	accepted  int
	proposed  int
	nonFinite int
}

// runChain runs one adaptive Metropolis-within-Gibbs chain: per-coordinate
// Gaussian proposals whose scales adapt toward the target acceptance rate
// during warmup and are frozen afterwards.
func runChain(ctx context.Context, p *problem, warmup, keep int, rng *rand.Rand) (*chainResult, error) {
	nPar := p.numParams()

	z := initialState(p, rng)
	scales := make([]float64, nPar)
	for j := range scales {
		scales[j] = 0.5
	}

	res := &chainResult{
		draws:  make([][]float64, 0, keep),
		logLik: make([][]float64, 0, keep),
	}

	lp := p.logPosterior(z)
	windowAccepts := make([]int, nPar)
	windowCount := 0

	total := warmup + keep
	for iter := 0; iter < total; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for j := 0; j < nPar; j++ {
			old := z[j]
			z[j] = old + scales[j]*rng.NormFloat64()
			proposedLP := p.logPosterior(z)
			res.proposed++

			if math.IsInf(proposedLP, -1) || math.IsNaN(proposedLP) {
				res.nonFinite++
				z[j] = old
				continue
			}
			if math.Log(rng.Float64()) < proposedLP-lp {
				lp = proposedLP
				res.accepted++
				windowAccepts[j]++
			} else {
				z[j] = old
			}
		}
		windowCount++

		if iter < warmup && windowCount == adaptWindow {
			for j := range scales {
				rate := float64(windowAccepts[j]) / float64(adaptWindow)
				scales[j] *= math.Exp(rate - targetAccept)
				scales[j] = math.Min(math.Max(scales[j], minScale), maxScale)
				windowAccepts[j] = 0
			}
			windowCount = 0
		}

		if iter >= warmup {
			draw := make([]float64, nPar)
			copy(draw, z)
			if p.hasDisp {
				// Report the reciprocal dispersion on its natural scale.
				draw[p.nCoef] = math.Exp(z[p.nCoef])
			}
			ll := make([]float64, len(p.y))
			p.pointwiseLogLik(z, ll)
			res.draws = append(res.draws, draw)
			res.logLik = append(res.logLik, ll)
		}
	}
	return res, nil
}

// initialState centers the intercept on the crude log rate and jitters
// every coordinate so chains start overdispersed.
func initialState(p *problem, rng *rand.Rand) []float64 {
	z := make([]float64, p.numParams())

	meanY := 0.0
	for _, y := range p.y {
		meanY += y
	}
	meanY /= float64(len(p.y))
	z[0] = math.Log(meanY + 0.1)

	for j := range z {
		z[j] += 0.5 * rng.NormFloat64()
	}
	return z
}
