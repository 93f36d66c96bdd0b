// Package ppc runs posterior predictive checks: one simulated replicate
// dataset per posterior draw, a summary statistic over each replicate, and
// the observed statistic placed against the replicate distribution.
package ppc

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"gopsis/domain/core"
	"gopsis/domain/dataset"
	"gopsis/domain/model"
	"gopsis/internal"
	"gopsis/ports"
)

// Statistic reduces one dataset (observed or replicated) to a scalar
type Statistic func(counts []int) float64

// ZeroProportion is the workbench's default check statistic: the fraction
// of zero counts, the quantity a misspecified Poisson model underpredicts
// on overdispersed data.
func ZeroProportion(counts []int) float64 {
	zeros := 0
	for _, y := range counts {
		if y == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(counts))
}

// Result is the outcome of one predictive check. TailProb is a two-sided
// tail probability of the observed value under the replicate distribution;
// it reaches exactly 0 or 1 only for zero-variance replicate sets. The
// comparison stays qualitative: no pass/fail verdict is attached.
type Result struct {
	Label      string    `json:"label"`
	Statistic  string    `json:"statistic"`
	Observed   float64   `json:"observed"`
	Replicates []float64 `json:"replicates"`
	TailProb   float64   `json:"tail_prob"`
}

// Checker simulates replicate datasets from fitted models
type Checker struct {
	rng ports.RNG
	log *internal.Logger
}

// NewChecker creates a predictive checker
func NewChecker(rng ports.RNG) *Checker {
	return &Checker{rng: rng, log: internal.DefaultLogger}
}

// Check simulates one replicate dataset per posterior draw using that
// draw's parameters and evaluates stat on each.
func (c *Checker) Check(fit *model.Fit, table *dataset.Table, statName string, stat Statistic) (*Result, error) {
	if fit.NumDraws() == 0 {
		return nil, core.NewDrawFloorError(0, 1)
	}

	covs := fit.Spec.Covariates()
	cols := make([][]float64, len(covs))
	for j, cov := range covs {
		col, err := table.Column(string(cov))
		if err != nil {
			return nil, core.NewSpecError(err.Error())
		}
		cols[j] = col
	}
	n := table.Len()
	offset := make([]float64, n)
	for i := 0; i < n; i++ {
		row := table.Row(i)
		if row.Exposure2 <= 0 {
			return nil, core.NewExposureError(i, row.Exposure2)
		}
		offset[i] = math.Log(row.Exposure2)
	}

	dispIdx := -1
	if fit.Spec.Family() == model.NegBinomial {
		idx, err := fit.ParamIndex(model.DispersionParam)
		if err != nil {
			return nil, err
		}
		dispIdx = idx
	}

	src := c.rng.Stream("ppc/"+fit.Spec.Label(), 0, fit.Seed)
	replicate := make([]int, n)
	result := &Result{
		Label:      fit.Spec.Label(),
		Statistic:  statName,
		Observed:   stat(table.Responses()),
		Replicates: make([]float64, 0, fit.NumDraws()),
	}

	for _, draw := range fit.Draws {
		for i := 0; i < n; i++ {
			eta := draw[0] + offset[i]
			for j := range covs {
				eta += draw[j+1] * cols[j][i]
			}
			mu := math.Exp(eta)

			if dispIdx >= 0 {
				phi := 1 / draw[dispIdx]
				replicate[i] = sampleNegBinom(mu, phi, src)
			} else {
				replicate[i] = samplePoisson(mu, src)
			}
		}
		result.Replicates = append(result.Replicates, stat(replicate))
	}

	result.TailProb = twoSidedTailProb(result.Observed, result.Replicates)
	c.log.Info("[PPC] %s: observed %s %.3f, replicate tail probability %.3f",
		result.Label, result.Statistic, result.Observed, result.TailProb)
	return result, nil
}

// twoSidedTailProb is min(P(rep<=obs), P(rep>=obs))*2 clamped to [0,1]
func twoSidedTailProb(observed float64, replicates []float64) float64 {
	low, high := 0, 0
	for _, r := range replicates {
		if r <= observed {
			low++
		}
		if r >= observed {
			high++
		}
	}
	n := float64(len(replicates))
	p := 2 * math.Min(float64(low)/n, float64(high)/n)
	return math.Min(p, 1)
}

func samplePoisson(mu float64, src *rand.Rand) int {
	if mu <= 0 || math.IsNaN(mu) {
		return 0
	}
	if math.IsInf(mu, 1) {
		return math.MaxInt32
	}
	p := distuv.Poisson{Lambda: mu, Src: src}
	return int(p.Rand())
}

// sampleNegBinom draws NB2(mu, phi) via the gamma-Poisson mixture
func sampleNegBinom(mu, phi float64, src *rand.Rand) int {
	if mu <= 0 || phi <= 0 || math.IsNaN(mu) || math.IsNaN(phi) {
		return 0
	}
	g := distuv.Gamma{Alpha: phi, Beta: phi / mu, Src: src}
	lam := g.Rand()
	if lam <= 0 || math.IsNaN(lam) {
		return 0
	}
	return samplePoisson(lam, src)
}

// String renders a short report line
func (r *Result) String() string {
	return fmt.Sprintf("%s: observed %s = %.3f, tail probability %.3f over %d replicates",
		r.Label, r.Statistic, r.Observed, r.TailProb, len(r.Replicates))
}
