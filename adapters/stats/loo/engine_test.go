package loo

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"gopsis/domain/core"
	domloo "gopsis/domain/loo"
	"gopsis/domain/model"
)

// syntheticFit builds a fit whose pointwise log-likelihoods are Gaussian
// noise around a per-observation level, without running the sampler.
func syntheticFit(draws, obs int, seed uint64) *model.Fit {
	rng := rand.New(rand.NewSource(seed))
	spec := model.FullSpec(model.Poisson)

	fit := &model.Fit{
		ID:           core.NewFitID(),
		Spec:         spec,
		ParamNames:   spec.ParamNames(),
		Chains:       1,
		KeptPerChain: draws,
		CreatedAt:    core.Now(),
	}

	levels := make([]float64, obs)
	for i := range levels {
		levels[i] = -2 - 3*rng.Float64()
	}
	for d := 0; d < draws; d++ {
		row := make([]float64, obs)
		for i := 0; i < obs; i++ {
			row[i] = levels[i] + 0.3*rng.NormFloat64()
		}
		fit.LogLik = append(fit.LogLik, row)
		fit.Draws = append(fit.Draws, make([]float64, len(fit.ParamNames)))
	}
	return fit
}

func TestScoreShape(t *testing.T) {
	fit := syntheticFit(500, 12, 3)
	engine := NewEngine()

	score, err := engine.Score(fit)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if score.NumObs() != 12 {
		t.Errorf("Expected 12 pointwise diagnostics, got %d", score.NumObs())
	}
	if math.IsNaN(score.ELPD) || math.IsInf(score.ELPD, 0) {
		t.Errorf("elpd should be finite, got %g", score.ELPD)
	}
	if score.SE < 0 || math.IsNaN(score.SE) {
		t.Errorf("Standard error should be non-negative, got %g", score.SE)
	}

	sum := 0.0
	for i, p := range score.Pointwise {
		if math.IsNaN(p.Khat) {
			t.Errorf("khat for observation %d is NaN", i)
		}
		sum += p.ELPD
	}
	if math.Abs(sum-score.ELPD) > 1e-9 {
		t.Errorf("Total elpd %.6f does not match pointwise sum %.6f", score.ELPD, sum)
	}
}

func TestScoreDrawFloor(t *testing.T) {
	fit := syntheticFit(50, 5, 4)
	engine := NewEngine()

	if _, err := engine.Score(fit); !errors.Is(err, core.ErrInsufficientDraws) {
		t.Errorf("Expected ErrInsufficientDraws for 50 draws, got %v", err)
	}
}

func TestScoreCarriesFitWarnings(t *testing.T) {
	fit := syntheticFit(300, 6, 5)
	fit.AddWarning(model.WarnHighRhat, "split-Rhat 1.2 for treatment")

	score, err := NewEngine().Score(fit)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !score.HasWarning(domloo.WarnFitDiagnostics) {
		t.Error("Sampler warnings on the fit should surface on the score")
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	a, err := NewEngine().Score(syntheticFit(400, 20, 6))
	if err != nil {
		t.Fatalf("Score A failed: %v", err)
	}
	b, err := NewEngine().Score(syntheticFit(400, 20, 7))
	if err != nil {
		t.Fatalf("Score B failed: %v", err)
	}

	ab, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare(a,b) failed: %v", err)
	}
	ba, err := Compare(b, a)
	if err != nil {
		t.Fatalf("Compare(b,a) failed: %v", err)
	}

	if math.Abs(ab.ELPDDiff+ba.ELPDDiff) > 1e-9 {
		t.Errorf("Comparison should be antisymmetric: %.6f vs %.6f", ab.ELPDDiff, ba.ELPDDiff)
	}
	if math.Abs(ab.SE-ba.SE) > 1e-9 {
		t.Errorf("Paired SE should not depend on order: %.6f vs %.6f", ab.SE, ba.SE)
	}
}

func TestCompareMismatchedObservations(t *testing.T) {
	a, _ := NewEngine().Score(syntheticFit(400, 10, 8))
	b, _ := NewEngine().Score(syntheticFit(400, 11, 9))

	if _, err := Compare(a, b); !errors.Is(err, core.ErrMismatchedScores) {
		t.Errorf("Expected ErrMismatchedScores, got %v", err)
	}
}

func TestCompareFlagsUnreliableInputs(t *testing.T) {
	mk := func(khat float64) *domloo.Score {
		s := &domloo.Score{Label: "m"}
		for i := 0; i < 5; i++ {
			s.Pointwise = append(s.Pointwise, domloo.PointwiseDiagnostic{ELPD: -1, Khat: khat})
		}
		return s
	}

	good := mk(0.2)
	bad := mk(0.9)
	bad.Warnings = append(bad.Warnings, domloo.Warning{Code: domloo.WarnHighParetoK, Message: "5 of 5"})

	cmp, err := Compare(good, bad)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !cmp.HasWarning(domloo.WarnUnreliableComparison) {
		t.Error("Comparison with khat failures should carry UNRELIABLE_COMPARISON")
	}

	clean, err := Compare(good, mk(0.1))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if clean.HasWarning(domloo.WarnUnreliableComparison) {
		t.Error("Clean comparison should not be flagged")
	}
}
