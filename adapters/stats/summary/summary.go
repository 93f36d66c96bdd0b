// Package summary reduces posterior sample sets to marginal and joint
// diagnostics for inspection: moments, central intervals, histogram
// density estimates, and pairwise draw summaries. It only ever reads the
// fit it is given.
package summary

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"gopsis/domain/model"
)

// HistogramBins is the fixed bin count for marginal density estimates
const HistogramBins = 40

// Bin is one histogram bar of a marginal density estimate
type Bin struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Density float64 `json:"density"`
}

// Marginal summarizes one parameter's posterior
type Marginal struct {
	Name    string  `json:"name"`
	Mean    float64 `json:"mean"`
	SD      float64 `json:"sd"`
	Median  float64 `json:"median"`
	Lower10 float64 `json:"lower_10"`
	Upper90 float64 `json:"upper_90"`
	Bins    []Bin   `json:"bins"`
}

// PairPoint is one thinned joint draw for scatter rendering
type PairPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Joint summarizes one parameter pair
type Joint struct {
	NameX       string      `json:"name_x"`
	NameY       string      `json:"name_y"`
	Correlation float64     `json:"correlation"`
	Points      []PairPoint `json:"points"`
}

// thinTo bounds the number of scatter points handed to the plotting surface
const thinTo = 500

// Marginals computes per-parameter posterior summaries for every parameter
func Marginals(fit *model.Fit) ([]Marginal, error) {
	out := make([]Marginal, 0, len(fit.ParamNames))
	for _, name := range fit.ParamNames {
		m, err := MarginalOf(fit, name)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// MarginalOf computes the posterior summary for one parameter
func MarginalOf(fit *model.Fit, name string) (*Marginal, error) {
	col, err := fit.ParamColumn(name)
	if err != nil {
		return nil, err
	}

	mean, err := mstats.Mean(col)
	if err != nil {
		return nil, err
	}
	sd, _ := mstats.StandardDeviationSample(col)
	median, _ := mstats.Median(col)
	lower, _ := mstats.Percentile(col, 10)
	upper, _ := mstats.Percentile(col, 90)

	return &Marginal{
		Name:    name,
		Mean:    mean,
		SD:      sd,
		Median:  median,
		Lower10: lower,
		Upper90: upper,
		Bins:    histogram(col),
	}, nil
}

// Pairs computes joint summaries for every unordered pair in the requested
// parameter subset.
func Pairs(fit *model.Fit, names []string) ([]Joint, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		col, err := fit.ParamColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	var out []Joint
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			out = append(out, Joint{
				NameX:       names[i],
				NameY:       names[j],
				Correlation: stat.Correlation(cols[i], cols[j], nil),
				Points:      thinPoints(cols[i], cols[j]),
			})
		}
	}
	return out, nil
}

func histogram(col []float64) []Bin {
	min, _ := mstats.Min(col)
	max, _ := mstats.Max(col)
	if max == min {
		// Degenerate column: one bin carrying all mass.
		return []Bin{{Lower: min, Upper: max, Density: 1}}
	}

	width := (max - min) / HistogramBins
	counts := make([]int, HistogramBins)
	for _, v := range col {
		idx := int((v - min) / width)
		if idx >= HistogramBins {
			idx = HistogramBins - 1
		}
		counts[idx]++
	}

	total := float64(len(col))
	bins := make([]Bin, HistogramBins)
	for i := range bins {
		bins[i] = Bin{
			Lower:   min + float64(i)*width,
			Upper:   min + float64(i+1)*width,
			Density: float64(counts[i]) / (total * width),
		}
	}
	return bins
}

func thinPoints(x, y []float64) []PairPoint {
	stride := len(x) / thinTo
	if stride < 1 {
		stride = 1
	}
	var pts []PairPoint
	for i := 0; i < len(x); i += stride {
		pts = append(pts, PairPoint{X: x[i], Y: y[i]})
	}
	return pts
}

// String renders a one-line marginal summary for logs and the runner
func (m *Marginal) String() string {
	return fmt.Sprintf("%-24s mean %8.3f  sd %7.3f  80%% CI [%8.3f, %8.3f]",
		m.Name, m.Mean, m.SD, m.Lower10, m.Upper90)
}
