package sampler

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/goleak"

	"gopsis/adapters/rng"
	"gopsis/domain/core"
	"gopsis/domain/dataset"
	"gopsis/domain/model"
	"gopsis/ports"
)

func testConfig() ports.FitConfig {
	return ports.FitConfig{
		Chains:      2,
		Iterations:  300,
		Warmup:      400,
		Seed:        123,
		Parallelism: 2,
	}
}

func TestFitDrawShape(t *testing.T) {
	defer goleak.VerifyNone(t)

	table, err := dataset.Load(dataset.Roaches)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := New(rng.New())
	cfg := testConfig()
	fit, err := s.Fit(context.Background(), model.FullSpec(model.Poisson), table, cfg)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	wantDraws := cfg.Chains * cfg.Iterations
	if fit.NumDraws() != wantDraws {
		t.Errorf("Expected %d draws, got %d", wantDraws, fit.NumDraws())
	}
	if fit.NumDraws() <= 0 {
		t.Fatal("Draw count must be strictly positive")
	}
	if fit.NumObs() != table.Len() {
		t.Errorf("Expected log-likelihood for %d observations, got %d", table.Len(), fit.NumObs())
	}
	if len(fit.ParamNames) != 4 {
		t.Errorf("Full Poisson fit should have 4 parameters, got %d", len(fit.ParamNames))
	}
	for _, d := range fit.Draws {
		if len(d) != len(fit.ParamNames) {
			t.Fatalf("Draw width %d does not match %d parameters", len(d), len(fit.ParamNames))
		}
	}
	for _, ll := range fit.LogLik {
		for i, v := range ll {
			if math.IsNaN(v) || math.IsInf(v, 1) {
				t.Fatalf("Log-likelihood for observation %d is %g", i, v)
			}
		}
	}
	if len(fit.Rhat) != 4 {
		t.Errorf("Expected 4 Rhat values, got %d", len(fit.Rhat))
	}
}

func TestFitNegBinomialHasDispersion(t *testing.T) {
	table, err := dataset.Load(dataset.Roaches)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := New(rng.New())
	fit, err := s.Fit(context.Background(), model.FullSpec(model.NegBinomial), table, testConfig())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	col, err := fit.ParamColumn(model.DispersionParam)
	if err != nil {
		t.Fatalf("NB fit should expose the dispersion parameter: %v", err)
	}
	for i, v := range col {
		if v <= 0 {
			t.Fatalf("Reciprocal dispersion draw %d is %g, want positive", i, v)
		}
	}
}

// TestFitInterceptRecovery checks the sampler finds the crude log rate on
// intercept-only data with no overdispersion.
func TestFitInterceptRecovery(t *testing.T) {
	rows := make([]dataset.Observation, 200)
	for i := range rows {
		// Deterministic counts with mean ~7.4: alternate around exp(2).
		y := 7
		if i%2 == 0 {
			y = 8
		}
		rows[i] = dataset.Observation{Y: y, Exposure2: 1}
	}
	table, err := dataset.NewTable("synthetic", rows)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	spec := model.MustNewSpec(model.Poisson, nil)
	s := New(rng.New())
	fit, err := s.Fit(context.Background(), spec, table, testConfig())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	col, err := fit.ParamColumn(model.InterceptParam)
	if err != nil {
		t.Fatalf("ParamColumn failed: %v", err)
	}
	mean := 0.0
	for _, v := range col {
		mean += v
	}
	mean /= float64(len(col))

	want := math.Log(7.5)
	if math.Abs(mean-want) > 0.15 {
		t.Errorf("Posterior intercept mean %.3f far from %.3f", mean, want)
	}
}

func TestFitRejectsNonPositiveExposure(t *testing.T) {
	rows := []dataset.Observation{
		{Y: 3, Exposure2: 1},
		{Y: 0, Exposure2: 0},
	}
	table, err := dataset.NewTable("bad", rows)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	s := New(rng.New())
	_, err = s.Fit(context.Background(), model.FullSpec(model.Poisson), table, testConfig())
	if !errors.Is(err, core.ErrNonPositiveExposure) {
		t.Errorf("Expected ErrNonPositiveExposure, got %v", err)
	}
}

func TestFitShortChainWarning(t *testing.T) {
	table, err := dataset.Load(dataset.Roaches)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := testConfig()
	cfg.Iterations = 20
	cfg.Warmup = 20

	s := New(rng.New())
	fit, err := s.Fit(context.Background(), model.FullSpec(model.Poisson), table, cfg)
	if err != nil {
		t.Fatalf("Short fits must still return a result: %v", err)
	}
	if !fit.HasWarning(model.WarnShortChain) {
		t.Error("Expected SHORT_CHAIN warning for 20 kept iterations")
	}
}

func TestFitDeterministicForSeed(t *testing.T) {
	table, err := dataset.Load(dataset.Roaches)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := testConfig()
	cfg.Iterations = 50
	cfg.Warmup = 50

	s := New(rng.New())
	spec := model.FullSpec(model.Poisson)
	a, err := s.Fit(context.Background(), spec, table, cfg)
	if err != nil {
		t.Fatalf("First fit failed: %v", err)
	}
	b, err := s.Fit(context.Background(), spec, table, cfg)
	if err != nil {
		t.Fatalf("Second fit failed: %v", err)
	}

	for i := range a.Draws {
		for j := range a.Draws[i] {
			if a.Draws[i][j] != b.Draws[i][j] {
				t.Fatalf("Draw [%d][%d] differs across same-seed fits", i, j)
			}
		}
	}
}

func TestSplitRhatDetectsDisagreement(t *testing.T) {
	agree := [][]float64{
		{1.0, 1.1, 0.9, 1.05, 0.95, 1.0, 1.02, 0.98},
		{1.01, 0.99, 1.1, 0.9, 1.0, 1.05, 0.96, 1.04},
	}
	if r := splitRhat(agree); r > 1.5 {
		t.Errorf("Agreeing chains should have modest Rhat, got %.3f", r)
	}

	disagree := [][]float64{
		{1.0, 1.1, 0.9, 1.05, 0.95, 1.0, 1.02, 0.98},
		{9.0, 9.1, 8.9, 9.05, 8.95, 9.0, 9.02, 8.98},
	}
	if r := splitRhat(disagree); r < 2 {
		t.Errorf("Disagreeing chains should have large Rhat, got %.3f", r)
	}
}
