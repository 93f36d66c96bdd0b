package psis

import (
	"errors"
	"math"
	"sort"

	"gopsis/domain/core"
)

// MinDraws is the floor below which no khat is estimated at all; the
// caller gets an error instead of a bogus diagnostic.
const MinDraws = 100

// Smoothed is the result of smoothing one observation's importance weights
type Smoothed struct {
	// LogWeights are normalized: logsumexp(LogWeights) == 0.
	LogWeights []float64
	Khat       float64
}

// Smooth stabilizes one vector of raw log importance ratios. The largest
// ~20% of weights form the tail; a generalized Pareto distribution fitted
// to the tail replaces those weights with its expected order statistics,
// truncated at the raw maximum. The fitted shape khat is returned as the
// reliability diagnostic for this observation.
func Smooth(logRatios []float64) (*Smoothed, error) {
	s := len(logRatios)
	if s < MinDraws {
		return nil, core.NewDrawFloorError(s, MinDraws)
	}

	lw := make([]float64, s)
	copy(lw, logRatios)

	// Shift so the largest raw log weight is 0.
	maxLW := lw[0]
	for _, v := range lw[1:] {
		if v > maxLW {
			maxLW = v
		}
	}
	for i := range lw {
		lw[i] -= maxLW
	}

	tailLen := int(math.Ceil(math.Min(0.2*float64(s), 3*math.Sqrt(float64(s)))))
	if tailLen < MinTail {
		tailLen = MinTail
	}

	// Indices ordered by weight; the top tailLen are smoothed.
	order := make([]int, s)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return lw[order[a]] < lw[order[b]] })

	cutoff := lw[order[s-tailLen-1]]
	expCutoff := math.Exp(cutoff)

	exceedances := make([]float64, tailLen)
	for j := 0; j < tailLen; j++ {
		exceedances[j] = math.Exp(lw[order[s-tailLen+j]]) - expCutoff
	}

	khat, sigma, err := GPDFit(exceedances)
	switch {
	case err == nil:
		// Replace tail weights with expected order statistics of the fit,
		// never exceeding the raw maximum (0 on the shifted scale).
		for j := 0; j < tailLen; j++ {
			p := (float64(j) + 0.5) / float64(tailLen)
			smoothed := math.Log(GPDQuantile(p, khat, sigma) + expCutoff)
			if smoothed > 0 {
				smoothed = 0
			}
			lw[order[s-tailLen+j]] = smoothed
		}
	case errors.Is(err, core.ErrDegenerateTail):
		// A flat tail (e.g. constant weights) needs no smoothing and its
		// importance sampling estimate is reliable.
		khat = math.Inf(-1)
	default:
		return nil, err
	}

	norm := LogSumExp(lw)
	for i := range lw {
		lw[i] -= norm
	}

	return &Smoothed{LogWeights: lw, Khat: khat}, nil
}

// LogSumExp computes log(sum(exp(v))) with the usual max shift.
func LogSumExp(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}
	max := v[0]
	for _, x := range v[1:] {
		if x > max {
			max = x
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 0.0
	for _, x := range v {
		sum += math.Exp(x - max)
	}
	return max + math.Log(sum)
}
