package loo

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"gopsis/domain/core"
	domloo "gopsis/domain/loo"
)

// Compare computes the paired elpd difference a minus b with a standard
// error from the per-observation differences, which accounts for the
// correlation between the two models' pointwise scores on the same data.
// No significance verdict is attached; the caller weighs the difference
// against its error. When either input carried khat failures the result is
// flagged as unreliable rather than passed through silently.
func Compare(a, b *domloo.Score) (*domloo.Comparison, error) {
	if a.NumObs() != b.NumObs() {
		return nil, fmt.Errorf("%w: %d vs %d observations", core.ErrMismatchedScores, a.NumObs(), b.NumObs())
	}
	n := a.NumObs()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations to compare", core.ErrInsufficientData)
	}

	diffs := make([]float64, n)
	for i := 0; i < n; i++ {
		diffs[i] = a.Pointwise[i].ELPD - b.Pointwise[i].ELPD
	}

	cmp := &domloo.Comparison{
		LabelA:   a.Label,
		LabelB:   b.Label,
		ELPDDiff: a.ELPD - b.ELPD,
	}

	variance, err := mstats.SampleVariance(diffs)
	if err != nil {
		return nil, err
	}
	cmp.SE = math.Sqrt(float64(n) * variance)

	if a.HasWarning(domloo.WarnHighParetoK) || b.HasWarning(domloo.WarnHighParetoK) {
		cmp.Warnings = append(cmp.Warnings, domloo.Warning{
			Code: domloo.WarnUnreliableComparison,
			Message: fmt.Sprintf("khat diagnostics failed for %q (%d) or %q (%d); treat this comparison as a rough check only",
				a.Label, a.CountAbove(domloo.KhatThreshold), b.Label, b.CountAbove(domloo.KhatThreshold)),
		})
	}
	return cmp, nil
}
