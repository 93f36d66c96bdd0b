package sampler

import (
	"math"
)

// RhatThreshold flags parameters whose split-Rhat suggests the chains have
// not mixed.
const RhatThreshold = 1.05

// splitRhat computes the split-Rhat convergence diagnostic for one
// parameter from per-chain draw sequences. Each chain is split in half so
// within-chain drift also inflates the statistic.
func splitRhat(chains [][]float64) float64 {
	var seqs [][]float64
	for _, c := range chains {
		if len(c) < 4 {
			return math.NaN()
		}
		half := len(c) / 2
		seqs = append(seqs, c[:half], c[half:half*2])
	}

	m := len(seqs)
	n := len(seqs[0])

	means := make([]float64, m)
	vars := make([]float64, m)
	grand := 0.0
	for j, s := range seqs {
		for _, v := range s {
			means[j] += v
		}
		means[j] /= float64(n)
		grand += means[j]
		for _, v := range s {
			d := v - means[j]
			vars[j] += d * d
		}
		vars[j] /= float64(n - 1)
	}
	grand /= float64(m)

	b := 0.0
	for _, mu := range means {
		d := mu - grand
		b += d * d
	}
	b *= float64(n) / float64(m-1)

	w := 0.0
	for _, v := range vars {
		w += v
	}
	w /= float64(m)

	if w == 0 {
		// Identical constant sequences: treated as converged.
		return 1
	}

	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}
