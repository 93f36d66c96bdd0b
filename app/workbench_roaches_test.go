package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gopsis/adapters/builtin"
	"gopsis/domain/dataset"
	domloo "gopsis/domain/loo"
	"gopsis/domain/model"
	"gopsis/ports"
)

// TestWorkbenchRoaches runs the whole pipeline on the bundled reference
// dataset and checks the diagnostic story it exists to tell: the Poisson
// fit fails the Pareto-k reliability check and badly underpredicts zeros,
// the negative binomial does neither, and LOO prefers the negative
// binomial decisively.
func TestWorkbenchRoaches(t *testing.T) {
	defer goleak.VerifyNone(t)
	if testing.Short() {
		t.Skip("full pipeline run")
	}

	w := newTestWorkbench(builtin.NewSource())
	cfg := ports.FitConfig{
		Chains:      2,
		Iterations:  300,
		Warmup:      400,
		Seed:        1776,
		Parallelism: 4,
	}

	report, err := w.Run(context.Background(), dataset.Roaches, cfg)
	require.NoError(t, err)
	require.Len(t, report.Records, 8)

	pois := report.Record(model.FullSpec(model.Poisson).Label())
	nb := report.Record(model.FullSpec(model.NegBinomial).Label())
	require.NotNil(t, pois)
	require.NotNil(t, nb)

	// Misspecified Poisson: heavy-tailed importance ratios show up as
	// khat failures.
	assert.Greater(t, pois.Score.CountAbove(domloo.KhatThreshold), 0,
		"poisson full fit should trip the khat diagnostic")
	assert.True(t, pois.Score.HasWarning(domloo.WarnHighParetoK))

	// The correctly specified family stays essentially clean.
	nbHigh := nb.Score.CountAbove(domloo.KhatThreshold)
	assert.LessOrEqual(t, nbHigh, nb.Score.NumObs()/20,
		"negative binomial khat failures: %d of %d", nbHigh, nb.Score.NumObs())

	// Cross-family comparison favors the negative binomial by more than
	// its paired standard error.
	cross := report.Comparisons[len(report.Comparisons)-1]
	assert.Equal(t, nb.Label, cross.LabelA)
	assert.Equal(t, pois.Label, cross.LabelB)
	assert.Greater(t, cross.ELPDDiff, cross.SE,
		"elpd difference %.1f vs se %.1f", cross.ELPDDiff, cross.SE)
	assert.True(t, cross.HasWarning(domloo.WarnUnreliableComparison),
		"poisson khat failures should flag the comparison")

	// Predictive check on the zero share: Poisson replicates cannot reach
	// the observed zero proportion, negative binomial replicates can.
	require.Len(t, report.Checks, 2)
	var poisCheck, nbCheck float64
	for _, check := range report.Checks {
		switch check.Label {
		case pois.Label:
			poisCheck = check.TailProb
		case nb.Label:
			nbCheck = check.TailProb
		}
	}
	assert.Less(t, poisCheck, 0.05, "poisson zero-share tail probability")
	assert.Greater(t, nbCheck, poisCheck)
}
