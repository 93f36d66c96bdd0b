// Package sampler fits count-regression models by MCMC: an adaptive
// Metropolis-within-Gibbs sampler over the regression coefficients (and,
// for the negative binomial family, the dispersion), with parallel chains
// pooled into one exchangeable draw sequence.
package sampler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gopsis/domain/core"
	"gopsis/domain/dataset"
	"gopsis/domain/model"
	"gopsis/internal"
	"gopsis/ports"
)

// shortChainFloor is the kept-iteration count per chain below which the
// convergence diagnostics are not trustworthy.
const shortChainFloor = 100

// lowAcceptanceFloor flags a collapsed proposal process.
const lowAcceptanceFloor = 0.1

// Sampler implements ports.Fitter
type Sampler struct {
	rng ports.RNG
	log *internal.Logger
}

// New creates a sampler drawing chain streams from the given RNG factory
func New(rng ports.RNG) *Sampler {
	return &Sampler{rng: rng, log: internal.DefaultLogger}
}

var _ ports.Fitter = (*Sampler)(nil)

// Fit draws from the posterior of spec against table. Chains run in
// parallel up to cfg.Parallelism; their outputs are pooled chain-major, so
// completion order has no effect on the result. Reliability problems
// (poor mixing, collapsed acceptance, non-finite density evaluations)
// come back as structured warnings on the fit, never as errors.
func (s *Sampler) Fit(ctx context.Context, spec model.Spec, table *dataset.Table, cfg ports.FitConfig) (*model.Fit, error) {
	p, err := newProblem(spec, table)
	if err != nil {
		return nil, err
	}
	if cfg.Chains < 1 || cfg.Iterations < 1 {
		return nil, core.NewSpecError("fit requires at least one chain and one kept iteration")
	}

	s.log.Info("[Sampler] Fitting %s: %d chains x %d kept (+%d warmup), seed %d",
		spec.Label(), cfg.Chains, cfg.Iterations, cfg.Warmup, cfg.Seed)

	results := make([]*chainResult, cfg.Chains)
	g, gctx := errgroup.WithContext(ctx)
	parallelism := cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	g.SetLimit(parallelism)

	for c := 0; c < cfg.Chains; c++ {
		c := c
		g.Go(func() error {
			stream := s.rng.Stream("chain/"+spec.Label(), c, cfg.Seed)
			res, err := runChain(gctx, p, cfg.Warmup, cfg.Iterations, stream)
			if err != nil {
				return err
			}
			results[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fit := s.pool(spec, p, results, cfg)
	for _, w := range fit.Warnings {
		s.log.Warn("[Sampler] %s: %s (%s)", spec.Label(), w.Message, w.Code)
	}
	return fit, nil
}

// pool concatenates chain outputs chain-major and attaches diagnostics
func (s *Sampler) pool(spec model.Spec, p *problem, results []*chainResult, cfg ports.FitConfig) *model.Fit {
	fit := &model.Fit{
		ID:           core.NewFitID(),
		Spec:         spec,
		ParamNames:   spec.ParamNames(),
		Chains:       cfg.Chains,
		KeptPerChain: cfg.Iterations,
		Seed:         cfg.Seed,
		CreatedAt:    core.Now(),
	}

	accepted, proposed, nonFinite := 0, 0, 0
	for _, res := range results {
		fit.Draws = append(fit.Draws, res.draws...)
		fit.LogLik = append(fit.LogLik, res.logLik...)
		accepted += res.accepted
		proposed += res.proposed
		nonFinite += res.nonFinite
	}
	if proposed > 0 {
		fit.Acceptance = float64(accepted) / float64(proposed)
	}

	nPar := p.numParams()
	fit.Rhat = make([]float64, nPar)
	for j := 0; j < nPar; j++ {
		perChain := make([][]float64, len(results))
		for c, res := range results {
			col := make([]float64, len(res.draws))
			for i, d := range res.draws {
				col[i] = d[j]
			}
			perChain[c] = col
		}
		fit.Rhat[j] = splitRhat(perChain)
	}

	if cfg.Iterations < shortChainFloor {
		fit.AddWarning(model.WarnShortChain,
			"only %d kept iterations per chain; convergence diagnostics are unreliable", cfg.Iterations)
	}
	for j, r := range fit.Rhat {
		if r > RhatThreshold {
			fit.AddWarning(model.WarnHighRhat,
				"split-Rhat %.3f for %s exceeds %.2f", r, fit.ParamNames[j], RhatThreshold)
		}
	}
	if fit.Acceptance < lowAcceptanceFloor {
		fit.AddWarning(model.WarnLowAcceptance,
			"mean acceptance rate %.3f below %.2f", fit.Acceptance, lowAcceptanceFloor)
	}
	if nonFinite > 0 {
		fit.AddWarning(model.WarnNonFinite,
			"%d proposals hit non-finite posterior density", nonFinite)
	}
	return fit
}
